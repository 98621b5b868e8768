package history

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

// FromReport converts a run report into a Run.
func FromReport(report *recipe.RunReport) Run {
	run := Run{
		RunID:    report.RunID,
		Recipe:   report.Recipe,
		Trigger:  report.Trigger,
		Commit:   report.Commit,
		Start:    report.Start,
		End:      report.End,
		ExitCode: report.ExitCode,
		Outcome:  string(report.Outcome),
	}
	if failed, ok := report.FailedStep(); ok {
		run.FailedStep = failed.Step.DisplayName()
	}
	for i, res := range report.Steps {
		st := StepRecord{
			Position: i,
			Name:     res.Step.DisplayName(),
			Command:  res.Step.CommandLine(),
			Status:   string(res.Status),
			ExitCode: res.ExitCode,
			Duration: res.Duration,
		}
		if res.Err != nil {
			st.Error = res.Err.Error()
		}
		run.Steps = append(run.Steps, st)
	}
	return run
}

// Observer records completed runs. Storage failures are logged, never
// propagated, so history never changes a run's exit code.
type Observer struct {
	recipe.NoopObserver
	store   Store
	timeout time.Duration
}

// NewObserver returns a recipe.Observer writing to store.
func NewObserver(store Store) *Observer {
	return &Observer{store: store, timeout: 5 * time.Second}
}

func (o *Observer) OnRunComplete(report *recipe.RunReport) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.store.Record(ctx, FromReport(report)); err != nil {
		slog.Warn("Failed to record run history", logfields.RunID(report.RunID), logfields.Error(err))
	}
}
