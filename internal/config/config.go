// Package config loads and validates sitesmith configuration (YAML).
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "sitesmith.yaml"

// Config represents the application configuration.
type Config struct {
	Site        SiteConfig              `yaml:"site"`
	ContentPath string                  `yaml:"content_path,omitempty"`
	OutputPath  string                  `yaml:"output_path,omitempty"`
	Recipes     map[string]RecipeConfig `yaml:"recipes,omitempty"`
	History     HistoryConfig           `yaml:"history,omitempty"`
	Events      EventsConfig            `yaml:"events,omitempty"`
	Metrics     MetricsConfig           `yaml:"metrics,omitempty"`
	Schedule    ScheduleConfig          `yaml:"schedule,omitempty"`
}

// SiteConfig holds information concerning the generated site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// RecipeConfig declares a recipe in configuration; it overrides a built-in
// recipe with the same name.
type RecipeConfig struct {
	Description string       `yaml:"description,omitempty"`
	Steps       []StepConfig `yaml:"steps"`
}

// StepConfig is a single external tool invocation.
type StepConfig struct {
	Name    string            `yaml:"name,omitempty"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Dir     string            `yaml:"dir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// HistoryConfig controls the SQLite run history.
type HistoryConfig struct {
	Path     string `yaml:"path,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// EventsConfig controls run event publishing over NATS. An empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	// ConnectRetries is the number of extra connection attempts (0: connect once).
	ConnectRetries int `yaml:"connect_retries,omitempty"`
	// Backoff is fixed, linear or exponential.
	Backoff string `yaml:"backoff,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint used by long-running commands.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// ScheduleConfig controls periodic recipe runs. Every takes precedence over Cron.
type ScheduleConfig struct {
	Recipe string `yaml:"recipe,omitempty"`
	Every  string `yaml:"every,omitempty"`
	Cron   string `yaml:"cron,omitempty"`
}

// Load loads configuration from the specified file, applies defaults and validates it.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
				WithContext("path", configPath).
				Fatal().
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "reading config file failed").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	return Parse(data, configPath)
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if ferrors.HasCategory(err, ferrors.CategoryNotFound) {
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		return Default(), nil
	}
	return nil, err
}

// Parse decodes raw YAML (after ${VAR} expansion), applies defaults and validates.
// The source is only used for error context.
func Parse(data []byte, source string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", source).
			Fatal().
			Build()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Site",
			Description: "Notes, pages and posts",
		},
		ContentPath: ".",
		OutputPath:  "_site",
		Recipes: map[string]RecipeConfig{
			"lint": {
				Description: "Formatting and static analysis only",
				Steps: []StepConfig{
					{Name: "fmt", Command: "go", Args: []string{"fmt", "./..."}},
					{Name: "vet", Command: "go", Args: []string{"vet", "./..."}},
				},
			},
		},
		History: HistoryConfig{Path: DefaultHistoryPath},
		Events:  EventsConfig{Subject: DefaultEventSubject},
		Schedule: ScheduleConfig{
			Recipe: "check",
			Every:  "24h",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}

	return nil
}

// loadEnvFiles loads .env and .env.local; existing process variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
	}
}
