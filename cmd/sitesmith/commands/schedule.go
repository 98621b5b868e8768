package commands

import (
	"context"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/sitesmith/internal/git"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/recipe"
	"git.home.luguber.info/inful/sitesmith/internal/schedule"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	Recipe        string `arg:"" optional:"" help:"Recipe to run (default: schedule.recipe from config)"`
	Every         string `xor:"timing" help:"Fixed interval between runs, e.g. 30m"`
	Cron          string `xor:"timing" help:"Cron expression (five fields)"`
	MetricsListen string `name:"metrics-listen" help:"Serve Prometheus metrics on this address (overrides metrics.listen)"`
}

func (s *ScheduleCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	rec, err := lookupRecipe(cfg, s.Recipe, cfg.Schedule.Recipe)
	if err != nil {
		return err
	}

	every, cron := s.Every, s.Cron
	if every == "" && cron == "" {
		every, cron = cfg.Schedule.Every, cfg.Schedule.Cron
	}
	var interval time.Duration
	switch {
	case every != "":
		interval, err = time.ParseDuration(every)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid schedule interval").
				WithContext("every", every).Build()
		}
	case cron == "":
		return ferrors.ValidationError("no schedule configured (use --every or --cron)").Build()
	}

	reg := prom.NewRegistry()
	observer, closeObservers, err := runObserver(g, cfg, true, metrics.NewPrometheusRecorder(reg))
	if err != nil {
		return err
	}
	defer closeObservers()

	ctx := g.context()
	sched, err := schedule.New(ctx)
	if err != nil {
		return err
	}

	task := func(ctx context.Context) {
		runner := recipe.NewRunner(nil).
			WithObserver(observer).
			WithOutput(g.stdout(), g.stderr()).
			WithTrigger(recipe.TriggerSchedule).
			WithCommit(git.Describe("."))
		if report, err := runner.Run(ctx, rec); err != nil && report == nil {
			g.logger().Error("Scheduled run could not start", logfields.Recipe(rec.Name), logfields.Error(err))
		}
	}

	jobName := "recipe:" + rec.Name
	if every != "" {
		_, err = sched.Every(jobName, interval, true, task)
	} else {
		_, err = sched.Cron(jobName, cron, task)
	}
	if err != nil {
		return err
	}

	listen := s.MetricsListen
	if listen == "" {
		listen = cfg.Metrics.Listen
	}
	stopMetrics := startMetricsServer(g, cfg, listen, reg)
	defer stopMetrics()

	sched.Start()
	if next, ok := sched.NextRun(jobName); ok {
		_, _ = fmt.Fprintf(g.stdout(), "Scheduled %s, next run at %s\n", rec.Name, next.Format(time.RFC3339))
	}

	<-ctx.Done()
	return sched.Stop()
}
