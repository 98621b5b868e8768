package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Content     string `help:"Content root containing pages/, posts/ and templates/ (overrides content_path)"`
	Output      string `short:"o" help:"Output directory (overrides output_path)"`
	Force       bool   `help:"Rewrite every output even when unchanged"`
	StrictLinks bool   `name:"strict-links" help:"Fail the build on broken internal links"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	gen := site.NewGenerator(b.options(cfg))

	_, _ = fmt.Fprintln(g.stdout(), "Generating site...")
	report, err := gen.Build(g.context())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.stdout(), report.Summary())
	_, _ = fmt.Fprintf(g.stdout(), "Elapsed time: %.2fs\n", report.Duration().Seconds())
	return nil
}

func (b *BuildCmd) options(cfg *config.Config) site.Options {
	opts := site.OptionsFromConfig(cfg)
	if b.Content != "" {
		opts.ContentPath = b.Content
	}
	if b.Output != "" {
		opts.OutputPath = b.Output
	}
	opts.Force = b.Force
	opts.StrictLinks = b.StrictLinks
	return opts
}
