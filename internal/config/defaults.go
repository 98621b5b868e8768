package config

import "fmt"

const (
	DefaultContentPath  = "."
	DefaultOutputPath   = "_site"
	DefaultSiteTitle    = "Untitled Site"
	DefaultHistoryPath  = ".sitesmith/history.db"
	DefaultEventSubject = "sitesmith.runs"
	DefaultMetricsPath  = "/metrics"
	DefaultRecipe       = "check"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier fills in content/output locations and the site title.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.ContentPath == "" {
		cfg.ContentPath = DefaultContentPath
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultSiteTitle
	}
	return nil
}

// RunDefaultApplier fills in history, events, metrics and schedule defaults.
type RunDefaultApplier struct{}

func (RunDefaultApplier) Domain() string { return "run" }

func (RunDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventSubject
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Schedule.Recipe == "" {
		cfg.Schedule.Recipe = DefaultRecipe
	}
	for name, rc := range cfg.Recipes {
		for i := range rc.Steps {
			if rc.Steps[i].Name == "" {
				rc.Steps[i].Name = rc.Steps[i].Command
			}
		}
		cfg.Recipes[name] = rc
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{SiteDefaultApplier{}, RunDefaultApplier{}}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("apply %s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}
