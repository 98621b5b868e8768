package recipe

import (
	"log/slog"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
)

// Observer receives callbacks around step execution and the run lifecycle.
// Logging, metrics, history and event publishing all hook in here so the
// runner itself stays unaware of them.
type Observer interface {
	OnRunStart(run *RunReport)
	OnStepStart(run *RunReport, step Step)
	OnStepComplete(run *RunReport, result StepResult)
	OnRunComplete(run *RunReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(*RunReport)                 {}
func (NoopObserver) OnStepStart(*RunReport, Step)          {}
func (NoopObserver) OnStepComplete(*RunReport, StepResult) {}
func (NoopObserver) OnRunComplete(*RunReport)              {}

// MultiObserver fans callbacks out in order.
type MultiObserver []Observer

func (m MultiObserver) OnRunStart(run *RunReport) {
	for _, o := range m {
		o.OnRunStart(run)
	}
}

func (m MultiObserver) OnStepStart(run *RunReport, step Step) {
	for _, o := range m {
		o.OnStepStart(run, step)
	}
}

func (m MultiObserver) OnStepComplete(run *RunReport, result StepResult) {
	for _, o := range m {
		o.OnStepComplete(run, result)
	}
}

func (m MultiObserver) OnRunComplete(run *RunReport) {
	for _, o := range m {
		o.OnRunComplete(run)
	}
}

// LoggingObserver writes structured log lines for each transition.
type LoggingObserver struct {
	Logger *slog.Logger
}

func (l LoggingObserver) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l LoggingObserver) OnRunStart(run *RunReport) {
	l.logger().Info("Recipe started", logfields.RunID(run.RunID), logfields.Recipe(run.Recipe), slog.String("trigger", run.Trigger))
}

func (l LoggingObserver) OnStepStart(run *RunReport, step Step) {
	l.logger().Info("Step started", logfields.RunID(run.RunID), logfields.Step(step.DisplayName()), logfields.Command(step.CommandLine()))
}

func (l LoggingObserver) OnStepComplete(run *RunReport, res StepResult) {
	attrs := []any{
		logfields.RunID(run.RunID),
		logfields.Step(res.Step.DisplayName()),
		logfields.Status(string(res.Status)),
		logfields.ExitCode(res.ExitCode),
		logfields.DurationMS(float64(res.Duration.Milliseconds())),
	}
	switch res.Status {
	case StatusSuccess:
		l.logger().Info("Step completed", attrs...)
	case StatusSkipped:
		l.logger().Debug("Step skipped", attrs...)
	default:
		attrs = append(attrs, logfields.Error(res.Err))
		l.logger().Error("Step failed", attrs...)
	}
}

func (l LoggingObserver) OnRunComplete(run *RunReport) {
	l.logger().Info("Recipe finished",
		logfields.RunID(run.RunID),
		logfields.Recipe(run.Recipe),
		logfields.Status(string(run.Outcome)),
		logfields.ExitCode(run.ExitCode),
		logfields.DurationMS(float64(run.Duration().Milliseconds())))
}

// recorderObserver adapts metrics.Recorder into an Observer.
type recorderObserver struct{ rec metrics.Recorder }

// NewRecorderObserver returns an Observer feeding step and run metrics into rec.
func NewRecorderObserver(rec metrics.Recorder) Observer {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return recorderObserver{rec: rec}
}

func (r recorderObserver) OnRunStart(*RunReport)        {}
func (r recorderObserver) OnStepStart(*RunReport, Step) {}

func (r recorderObserver) OnStepComplete(run *RunReport, res StepResult) {
	name := res.Step.DisplayName()
	if res.Status != StatusSkipped {
		r.rec.ObserveStepDuration(run.Recipe, name, res.Duration)
	}
	r.rec.IncStepResult(run.Recipe, name, metrics.ResultLabel(res.Status))
}

func (r recorderObserver) OnRunComplete(run *RunReport) {
	r.rec.ObserveRunDuration(run.Recipe, run.Duration())
	r.rec.IncRunOutcome(run.Recipe, metrics.OutcomeLabel(run.Outcome))
}
