package recipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExecutor returns a fixed exit code per step name and records call order.
type scriptedExecutor struct {
	codes map[string]int
	errs  map[string]error
	calls []string
	hook  func(step Step)
}

func (s *scriptedExecutor) Execute(_ context.Context, step Step, stdout, _ io.Writer) (int, error) {
	s.calls = append(s.calls, step.DisplayName())
	if s.hook != nil {
		s.hook(step)
	}
	_, _ = io.WriteString(stdout, step.DisplayName()+"\n")
	return s.codes[step.DisplayName()], s.errs[step.DisplayName()]
}

func steps(names ...string) []Step {
	out := make([]Step, 0, len(names))
	for _, n := range names {
		out = append(out, Step{Name: n, Command: n})
	}
	return out
}

func TestRunAllStepsSucceed(t *testing.T) {
	ex := &scriptedExecutor{}
	var out bytes.Buffer
	report, err := NewRunner(ex).WithOutput(&out, io.Discard).Run(context.Background(), Recipe{Name: "r", Steps: steps("a", "b", "c")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ex.calls)
	assert.Equal(t, 0, report.ExitCode)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 3, report.Count(StatusSuccess))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, TriggerManual, report.Trigger)
	assert.Equal(t, "a\nb\nc\n", out.String())
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	ex := &scriptedExecutor{codes: map[string]int{"b": 3, "c": 5}}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(context.Background(), Recipe{Name: "r", Steps: steps("a", "b", "c", "d")})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "b", stepErr.Step)
	assert.Equal(t, 3, stepErr.ExitCode())

	assert.Equal(t, []string{"a", "b"}, ex.calls, "steps after the failure must not run")
	assert.Equal(t, 3, report.ExitCode)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, StatusSuccess, report.Steps[0].Status)
	assert.Equal(t, StatusFailed, report.Steps[1].Status)
	assert.Equal(t, StatusSkipped, report.Steps[2].Status)
	assert.Equal(t, StatusSkipped, report.Steps[3].Status)

	failed, ok := report.FailedStep()
	require.True(t, ok)
	assert.Equal(t, "b", failed.Step.Name)
	assert.Contains(t, report.Summary(), "failed_step=b")
}

func TestRunCommandNotFound(t *testing.T) {
	ex := &scriptedExecutor{
		codes: map[string]int{"missing": ExitCommandNotFound},
		errs:  map[string]error{"missing": ErrCommandNotFound},
	}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(context.Background(), Recipe{Name: "r", Steps: steps("missing", "after")})
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.Equal(t, ExitCommandNotFound, report.ExitCode)
	assert.Equal(t, []string{"missing"}, ex.calls)
}

func TestRunExecutorErrorWithoutCode(t *testing.T) {
	boom := errors.New("boom")
	ex := &scriptedExecutor{errs: map[string]error{"a": boom}}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(context.Background(), Recipe{Name: "r", Steps: steps("a")})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, report.ExitCode)
}

func TestRunCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &scriptedExecutor{
		codes: map[string]int{"b": ExitCanceled},
		errs:  map[string]error{"b": context.Canceled},
	}
	ex.hook = func(step Step) {
		if step.Name == "b" {
			cancel()
		}
	}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(ctx, Recipe{Name: "r", Steps: steps("a", "b", "c")})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitCanceled, report.ExitCode)
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Equal(t, StatusCanceled, report.Steps[1].Status)
	assert.Equal(t, StatusSkipped, report.Steps[2].Status)
	assert.Equal(t, []string{"a", "b"}, ex.calls)
}

func TestRunStepFinishingAsContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &scriptedExecutor{}
	ex.hook = func(step Step) {
		if step.Name == "a" {
			cancel()
		}
	}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(ctx, Recipe{Name: "r", Steps: steps("a", "b")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusSuccess, report.Steps[0].Status)
	assert.Equal(t, 0, report.Steps[0].ExitCode)
	assert.NoError(t, report.Steps[0].Err)
	assert.Equal(t, StatusCanceled, report.Steps[1].Status)
	assert.Equal(t, []string{"a"}, ex.calls)
}

func TestRunLastStepFinishingAsContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &scriptedExecutor{hook: func(Step) { cancel() }}
	report, err := NewRunner(ex).WithOutput(io.Discard, io.Discard).Run(ctx, Recipe{Name: "r", Steps: steps("only")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 0, report.ExitCode)
}

func TestRunCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &scriptedExecutor{}
	report, err := NewRunner(ex).Run(ctx, Recipe{Name: "r", Steps: steps("a", "b")})
	require.Error(t, err)
	assert.Empty(t, ex.calls)
	assert.Equal(t, StatusCanceled, report.Steps[0].Status)
	assert.Equal(t, StatusSkipped, report.Steps[1].Status)
	assert.Equal(t, ExitCanceled, report.ExitCode)
}

func TestRunEmptyRecipe(t *testing.T) {
	report, err := NewRunner(&scriptedExecutor{}).Run(context.Background(), Recipe{Name: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ExitCode)
	assert.Empty(t, report.Steps)
}

func TestRunRejectsInvalidRecipe(t *testing.T) {
	_, err := NewRunner(&scriptedExecutor{}).Run(context.Background(), Recipe{Name: "r", Steps: []Step{{Name: "x"}}})
	require.Error(t, err)
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) OnRunStart(*RunReport)            { o.events = append(o.events, "run:start") }
func (o *recordingObserver) OnStepStart(_ *RunReport, s Step) { o.events = append(o.events, "start:"+s.Name) }
func (o *recordingObserver) OnStepComplete(_ *RunReport, r StepResult) {
	o.events = append(o.events, string(r.Status)+":"+r.Step.Name)
}
func (o *recordingObserver) OnRunComplete(r *RunReport) { o.events = append(o.events, "run:"+string(r.Outcome)) }

func TestObserverSequence(t *testing.T) {
	obs := &recordingObserver{}
	ex := &scriptedExecutor{codes: map[string]int{"b": 2}}
	_, _ = NewRunner(ex).
		WithObserver(MultiObserver{obs, LoggingObserver{}}).
		WithOutput(io.Discard, io.Discard).
		WithTrigger(TriggerSchedule).
		Run(context.Background(), Recipe{Name: "r", Steps: steps("a", "b", "c")})
	assert.Equal(t, []string{
		"run:start",
		"start:a", "success:a",
		"start:b", "failed:b",
		"skipped:c",
		"run:failed",
	}, obs.events)
}
