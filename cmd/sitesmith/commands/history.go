package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	RunID string `arg:"" optional:"" name:"run-id" help:"Show the steps of a single run"`
	Limit int    `short:"n" help:"Number of runs to list" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tw := tabwriter.NewWriter(g.stdout(), 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	if h.RunID != "" {
		run, err := store.Get(g.context(), h.RunID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(tw, "Run %s\trecipe=%s\ttrigger=%s\tcommit=%s\toutcome=%s\texit=%d\n",
			run.RunID, run.Recipe, run.Trigger, orDash(run.Commit), run.Outcome, run.ExitCode)
		_, _ = fmt.Fprintln(tw, "#\tSTEP\tSTATUS\tEXIT\tDURATION\tCOMMAND")
		for _, s := range run.Steps {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
				s.Position+1, s.Name, s.Status, s.ExitCode, s.Duration.Truncate(time.Millisecond), s.Command)
		}
		return nil
	}

	runs, err := store.Recent(g.context(), h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(tw, "No runs recorded")
		return nil
	}
	_, _ = fmt.Fprintln(tw, "RUN\tRECIPE\tTRIGGER\tSTARTED\tDURATION\tOUTCOME\tEXIT\tFAILED STEP")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RunID, r.Recipe, r.Trigger, r.Start.Local().Format(time.DateTime),
			r.Duration().Truncate(time.Millisecond), r.Outcome, r.ExitCode, orDash(r.FailedStep))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
