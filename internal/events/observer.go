package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

// Observer turns run callbacks into published events. Publish failures are
// logged and otherwise ignored.
type Observer struct {
	pub     Publisher
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewObserver publishes under the subject prefix (config.DefaultEventSubject when empty).
func NewObserver(pub Publisher, prefix string) *Observer {
	if prefix == "" {
		prefix = config.DefaultEventSubject
	}
	return &Observer{pub: pub, prefix: prefix, timeout: 2 * time.Second, now: time.Now}
}

// Subject returns the subject used for an event type.
func (o *Observer) Subject(t Type) string { return o.prefix + "." + string(t) }

func (o *Observer) OnRunStart(run *recipe.RunReport) {
	o.publish(runEvent(TypeRunStarted, run, o.now()))
}

func (o *Observer) OnStepStart(*recipe.RunReport, recipe.Step) {}

func (o *Observer) OnStepComplete(run *recipe.RunReport, res recipe.StepResult) {
	ev := runEvent(TypeStepCompleted, run, o.now())
	ev.Step = res.Step.DisplayName()
	ev.Command = res.Step.CommandLine()
	ev.Status = string(res.Status)
	ev.ExitCode = res.ExitCode
	ev.DurationMS = res.Duration.Milliseconds()
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	o.publish(ev)
}

func (o *Observer) OnRunComplete(run *recipe.RunReport) {
	ev := runEvent(TypeRunCompleted, run, o.now())
	ev.Status = string(run.Outcome)
	ev.ExitCode = run.ExitCode
	ev.DurationMS = run.Duration().Milliseconds()
	if failed, ok := run.FailedStep(); ok {
		ev.Step = failed.Step.DisplayName()
	}
	o.publish(ev)
}

func (o *Observer) publish(ev RunEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to encode run event", logfields.RunID(ev.RunID), logfields.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.pub.Publish(ctx, o.Subject(ev.Type), data); err != nil {
		slog.Warn("Failed to publish run event", logfields.RunID(ev.RunID), logfields.Error(err))
	}
}
