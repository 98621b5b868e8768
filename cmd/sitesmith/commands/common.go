package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitesmith/internal/config"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Logger *slog.Logger
	Ctx    context.Context
	// Out and Err default to the process streams.
	Out io.Writer
	Err io.Writer
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitesmith.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check    CheckCmd    `cmd:"" help:"Run a build recipe (default: check)"`
	Recipes  RecipesCmd  `cmd:"" help:"List available recipes and their steps"`
	Build    BuildCmd    `cmd:"" help:"Generate the static site"`
	Watch    WatchCmd    `cmd:"" help:"Build, serve the output and rebuild on change"`
	Schedule ScheduleCmd `cmd:"" help:"Run a recipe periodically"`
	History  HistoryCmd  `cmd:"" help:"List recent recipe runs"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours SITESMITH_LOG_LEVEL, then the verbose flag.
func parseLogLevel(verbose bool) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SITESMITH_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultPath
	}
	return config.LoadOrDefault(path)
}
