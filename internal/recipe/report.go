package recipe

import (
	"fmt"
	"strings"
	"time"
)

// StepStatus is the result state of a single step.
type StepStatus string

const (
	StatusSuccess  StepStatus = "success"
	StatusFailed   StepStatus = "failed"
	StatusSkipped  StepStatus = "skipped"
	StatusCanceled StepStatus = "canceled"
)

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StepResult records what happened to one step.
type StepResult struct {
	Step     Step
	Status   StepStatus
	ExitCode int
	Duration time.Duration
	Err      error
}

// RunReport captures a recipe run.
type RunReport struct {
	RunID    string
	Recipe   string
	Trigger  string // manual | schedule | watch
	Commit   string // HEAD commit of the working tree, if known
	Start    time.Time
	End      time.Time
	Steps    []StepResult
	ExitCode int
	Outcome  Outcome
}

// Duration is the wall time of the run.
func (r *RunReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// FailedStep returns the failing or canceled step, if any.
func (r *RunReport) FailedStep() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StatusFailed || s.Status == StatusCanceled {
			return s, true
		}
	}
	return StepResult{}, false
}

// Count returns how many steps ended with the given status.
func (r *RunReport) Count(status StepStatus) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Summary returns a human-readable single-line summary.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "recipe=%s outcome=%s exit=%d steps=%d succeeded=%d skipped=%d duration=%s",
		r.Recipe, r.Outcome, r.ExitCode, len(r.Steps), r.Count(StatusSuccess), r.Count(StatusSkipped),
		r.Duration().Truncate(time.Millisecond))
	if failed, ok := r.FailedStep(); ok {
		fmt.Fprintf(&b, " failed_step=%s", failed.Step.DisplayName())
	}
	return b.String()
}
