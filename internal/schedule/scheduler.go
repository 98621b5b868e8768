// Package schedule runs jobs periodically using gocron.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// Task is the work performed on each trigger.
type Task func(ctx context.Context)

// Scheduler wraps a gocron scheduler. Runs of the same job never overlap: a
// trigger that fires while the previous run is active is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
}

// New creates a scheduler whose tasks receive ctx.
func New(ctx context.Context) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, ctx: ctx}, nil
}

// Every schedules task at a fixed interval. With immediate set the first run
// starts right away instead of after one interval.
func (s *Scheduler) Every(name string, interval time.Duration, immediate bool, task Task) (string, error) {
	if interval < time.Second {
		return "", ferrors.ValidationError("schedule interval must be at least 1s").
			WithContext("every", interval.String()).Build()
	}
	opts := []gocron.JobOption{gocron.WithName(name), gocron.WithSingletonMode(gocron.LimitModeReschedule)}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	job, err := s.scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(s.run, name, task), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job: %w", err)
	}
	return job.ID().String(), nil
}

// Cron schedules task with a standard five field cron expression.
func (s *Scheduler) Cron(name, expr string, task Task) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryValidation, "invalid cron expression").
			WithContext("cron", expr).Build()
	}
	return job.ID().String(), nil
}

// NextRun reports when the named job fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	for _, j := range s.scheduler.Jobs() {
		if j.Name() != name {
			continue
		}
		next, err := j.NextRun()
		if err != nil {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}

func (s *Scheduler) run(name string, task Task) {
	if s.ctx.Err() != nil {
		return
	}
	slog.Info("Executing scheduled job", slog.String("job", name))
	task(s.ctx)
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
