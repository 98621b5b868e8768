package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final recipe run outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for recipe runs and site builds.
type Recorder interface {
	ObserveStepDuration(recipe, step string, d time.Duration)
	IncStepResult(recipe, step string, result ResultLabel)
	ObserveRunDuration(recipe string, d time.Duration)
	IncRunOutcome(recipe string, outcome OutcomeLabel)
	ObserveSiteBuildDuration(d time.Duration)
	AddPagesRendered(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)          {}
func (NoopRecorder) IncRunOutcome(string, OutcomeLabel)                {}
func (NoopRecorder) ObserveSiteBuildDuration(time.Duration)            {}
func (NoopRecorder) AddPagesRendered(int)                              {}
