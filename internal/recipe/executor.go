package recipe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// Executor launches a single step. It returns the process exit code; err is
// non-nil only when the process could not be started or was interrupted.
type Executor interface {
	Execute(ctx context.Context, step Step, stdout, stderr io.Writer) (int, error)
}

// ExecExecutor runs steps as child processes found on PATH.
type ExecExecutor struct{}

func (ExecExecutor) Execute(ctx context.Context, step Step, stdout, stderr io.Writer) (int, error) {
	path, err := exec.LookPath(step.Command)
	if err != nil {
		return ExitCommandNotFound, ferrors.StepError("command not found").
			WithKind(ErrCommandNotFound).
			WithCause(err).
			WithContext("command", step.Command).
			Build()
	}

	cmd := exec.CommandContext(ctx, path, step.Args...)
	cmd.Dir = step.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if len(step.Env) > 0 {
		cmd.Env = append(os.Environ(), step.Env...)
	}
	slog.Debug("Executing step", logfields.Step(step.DisplayName()), logfields.Command(step.CommandLine()), logfields.Path(step.Dir))

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		return ExitCanceled, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			return 1, err
		}
		return code, nil
	}
	return ExitCannotExecute, ferrors.StepError("cannot execute command").
		WithCause(err).
		WithContext("command", step.Command).
		Build()
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, step Step, stdout, stderr io.Writer) (int, error)

func (f ExecutorFunc) Execute(ctx context.Context, step Step, stdout, stderr io.Writer) (int, error) {
	return f(ctx, step, stdout, stderr)
}
