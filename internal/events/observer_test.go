package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

type message struct {
	subject string
	event   RunEvent
}

type capturePublisher struct {
	msgs []message
	err  error
}

func (c *capturePublisher) Publish(_ context.Context, subject string, data []byte) error {
	var ev RunEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	c.msgs = append(c.msgs, message{subject: subject, event: ev})
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestObserverPublishesRunLifecycle(t *testing.T) {
	pub := &capturePublisher{}
	ex := recipe.ExecutorFunc(func(_ context.Context, step recipe.Step, _, _ io.Writer) (int, error) {
		if step.Name == "lint" {
			return 2, nil
		}
		return 0, nil
	})
	rec := recipe.Recipe{Name: "check", Steps: []recipe.Step{
		{Name: "format", Command: "go", Args: []string{"fmt", "./..."}},
		{Name: "lint", Command: "go", Args: []string{"vet", "./..."}},
		{Name: "test", Command: "go", Args: []string{"test", "./..."}},
	}}
	report, err := recipe.NewRunner(ex).WithObserver(NewObserver(pub, "ci.runs")).WithCommit("abc").Run(context.Background(), rec)
	require.Error(t, err)

	require.Len(t, pub.msgs, 5)
	assert.Equal(t, "ci.runs.started", pub.msgs[0].subject)
	assert.Equal(t, report.RunID, pub.msgs[0].event.RunID)
	assert.Equal(t, "abc", pub.msgs[0].event.Commit)

	assert.Equal(t, "ci.runs.step", pub.msgs[2].subject)
	assert.Equal(t, "lint", pub.msgs[2].event.Step)
	assert.Equal(t, "go vet ./...", pub.msgs[2].event.Command)
	assert.Equal(t, 2, pub.msgs[2].event.ExitCode)
	assert.Equal(t, "skipped", pub.msgs[3].event.Status)

	done := pub.msgs[4].event
	assert.Equal(t, TypeRunCompleted, done.Type)
	assert.Equal(t, "failed", done.Status)
	assert.Equal(t, 2, done.ExitCode)
	assert.Equal(t, "lint", done.Step)
}

func TestObserverIgnoresPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("no responders")}
	obs := NewObserver(pub, "")
	assert.Equal(t, "sitesmith.runs.completed", obs.Subject(TypeRunCompleted))
	obs.OnRunComplete(&recipe.RunReport{RunID: "x", Recipe: "check"})
	assert.Len(t, pub.msgs, 1)
}
