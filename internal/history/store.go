package history

import (
	"context"
	"time"
)

// Run is a persisted recipe run.
type Run struct {
	RunID      string
	Recipe     string
	Trigger    string
	Commit     string
	Start      time.Time
	End        time.Time
	ExitCode   int
	Outcome    string
	FailedStep string
	Steps      []StepRecord
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration { return r.End.Sub(r.Start) }

// StepRecord is a persisted step result.
type StepRecord struct {
	Position int
	Name     string
	Command  string
	Status   string
	ExitCode int
	Duration time.Duration
	Error    string
}

// Store records and lists runs.
type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, runID string) (*Run, error)
	Close() error
}
