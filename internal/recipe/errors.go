package recipe

import (
	"errors"
	"fmt"
)

// Exit codes used when a step cannot produce its own.
const (
	ExitCannotExecute   = 126
	ExitCommandNotFound = 127
	ExitCanceled        = 130
)

// ErrCommandNotFound is returned by executors when the step binary is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// StepError reports the first failing step of a run.
type StepError struct {
	Recipe string
	Step   string
	Code   int
	Cause  error
}

func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("recipe %s: step %s failed (exit %d): %v", e.Recipe, e.Step, e.Code, e.Cause)
	}
	return fmt.Sprintf("recipe %s: step %s failed (exit %d)", e.Recipe, e.Step, e.Code)
}

func (e *StepError) Unwrap() error { return e.Cause }

// ExitCode lets the CLI propagate the child's exit status unchanged.
func (e *StepError) ExitCode() int { return e.Code }
