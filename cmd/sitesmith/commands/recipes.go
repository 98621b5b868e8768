package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

// RecipesCmd implements the 'recipes' command.
type RecipesCmd struct{}

func (r *RecipesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	reg, err := recipe.NewRegistry(cfg.Recipes)
	if err != nil {
		return err
	}

	out := g.stdout()
	for _, rec := range reg.All() {
		if rec.Description != "" {
			_, _ = fmt.Fprintf(out, "%s - %s\n", rec.Name, rec.Description)
		} else {
			_, _ = fmt.Fprintln(out, rec.Name)
		}
		for i, s := range rec.Steps {
			_, _ = fmt.Fprintf(out, "  %d. %-12s %s\n", i+1, s.DisplayName(), s.CommandLine())
		}
	}
	return nil
}
