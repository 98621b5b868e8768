package recipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Trigger values recorded on run reports.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// Runner executes recipes step by step.
type Runner struct {
	exec     Executor
	observer Observer
	stdout   io.Writer
	stderr   io.Writer
	trigger  string
	commit   string
	now      func() time.Time
}

// NewRunner returns a Runner using exec, or ExecExecutor when exec is nil.
func NewRunner(exec Executor) *Runner {
	if exec == nil {
		exec = ExecExecutor{}
	}
	return &Runner{
		exec:     exec,
		observer: NoopObserver{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		trigger:  TriggerManual,
		now:      time.Now,
	}
}

// WithObserver installs the observer notified about run progress.
func (r *Runner) WithObserver(o Observer) *Runner {
	if o != nil {
		r.observer = o
	}
	return r
}

// WithOutput redirects the child process streams.
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	if stdout != nil {
		r.stdout = stdout
	}
	if stderr != nil {
		r.stderr = stderr
	}
	return r
}

// WithTrigger records what started the run.
func (r *Runner) WithTrigger(trigger string) *Runner {
	if trigger != "" {
		r.trigger = trigger
	}
	return r
}

// WithCommit records the working tree commit on each report.
func (r *Runner) WithCommit(commit string) *Runner {
	r.commit = commit
	return r
}

// Run executes the steps of rec in declaration order, stopping at the first
// failure. Steps after the failure are reported as skipped and never started.
// On failure the returned error is a *StepError carrying the failing exit code.
func (r *Runner) Run(ctx context.Context, rec Recipe) (*RunReport, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:   uuid.NewString(),
		Recipe:  rec.Name,
		Trigger: r.trigger,
		Commit:  r.commit,
		Start:   r.now(),
		Steps:   make([]StepResult, 0, len(rec.Steps)),
		Outcome: OutcomeSuccess,
	}
	r.observer.OnRunStart(report)

	var failure *StepError
	for _, step := range rec.Steps {
		if failure != nil {
			res := StepResult{Step: step, Status: StatusSkipped}
			report.Steps = append(report.Steps, res)
			r.observer.OnStepComplete(report, res)
			continue
		}

		if err := ctx.Err(); err != nil {
			res := StepResult{Step: step, Status: StatusCanceled, ExitCode: ExitCanceled, Err: err}
			report.Steps = append(report.Steps, res)
			r.observer.OnStepComplete(report, res)
			failure = &StepError{Recipe: rec.Name, Step: step.DisplayName(), Code: ExitCanceled, Cause: err}
			report.Outcome = OutcomeCanceled
			continue
		}

		r.observer.OnStepStart(report, step)
		res := r.runStep(ctx, step)
		report.Steps = append(report.Steps, res)
		r.observer.OnStepComplete(report, res)

		switch res.Status {
		case StatusFailed:
			failure = &StepError{Recipe: rec.Name, Step: step.DisplayName(), Code: res.ExitCode, Cause: res.Err}
			report.Outcome = OutcomeFailed
		case StatusCanceled:
			failure = &StepError{Recipe: rec.Name, Step: step.DisplayName(), Code: res.ExitCode, Cause: res.Err}
			report.Outcome = OutcomeCanceled
		}
	}

	report.End = r.now()
	if failure != nil {
		report.ExitCode = failure.Code
	}
	r.observer.OnRunComplete(report)

	if failure != nil {
		return report, failure
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) StepResult {
	t0 := r.now()
	code, err := r.exec.Execute(ctx, step, r.stdout, r.stderr)
	res := StepResult{Step: step, ExitCode: code, Err: err, Duration: r.now().Sub(t0)}

	switch {
	case err == nil && code == 0:
		res.Status = StatusSuccess
	case ctx.Err() != nil:
		res.Status = StatusCanceled
		res.ExitCode = ExitCanceled
		if res.Err == nil {
			res.Err = ctx.Err()
		}
	case err != nil:
		res.Status = StatusFailed
		if res.ExitCode == 0 {
			res.ExitCode = 1
		}
	case code != 0:
		res.Status = StatusFailed
		res.Err = fmt.Errorf("%s exited with status %d", step.Command, code)
	}
	return res
}
