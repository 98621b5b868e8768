package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/git"
	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Recipe    string `arg:"" optional:"" help:"Recipe to run (default: check)"`
	DryRun    bool   `name:"dry-run" help:"Print the steps without running them"`
	NoHistory bool   `name:"no-history" help:"Do not record the run in the history database"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	rec, err := lookupRecipe(cfg, c.Recipe, config.DefaultRecipe)
	if err != nil {
		return err
	}
	if c.DryRun {
		return recipe.DryRun(rec, g.stdout())
	}

	observer, closeObservers, err := runObserver(g, cfg, !c.NoHistory, nil)
	if err != nil {
		return err
	}
	defer closeObservers()

	runner := recipe.NewRunner(nil).
		WithObserver(observer).
		WithOutput(g.stdout(), g.stderr()).
		WithCommit(git.Describe("."))

	report, runErr := runner.Run(g.context(), rec)
	if report != nil {
		_, _ = fmt.Fprintln(g.stdout(), report.Summary())
	}
	return runErr
}

func lookupRecipe(cfg *config.Config, name, fallback string) (recipe.Recipe, error) {
	reg, err := recipe.NewRegistry(cfg.Recipes)
	if err != nil {
		return recipe.Recipe{}, err
	}
	if name == "" {
		name = fallback
	}
	return reg.Lookup(name)
}
