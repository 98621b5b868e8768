// Package events publishes recipe run events to NATS.
//
// Subjects have the form <prefix>.<type>, for example "sitesmith.runs.completed".
package events

import (
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/recipe"
)

// Type names a run event.
type Type string

const (
	TypeRunStarted    Type = "started"
	TypeStepCompleted Type = "step"
	TypeRunCompleted  Type = "completed"
)

// RunEvent is the JSON payload of every published message.
type RunEvent struct {
	Type      Type      `json:"type"`
	RunID     string    `json:"run_id"`
	Recipe    string    `json:"recipe"`
	Trigger   string    `json:"trigger,omitempty"`
	Commit    string    `json:"commit,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Step       string `json:"step,omitempty"`
	Command    string `json:"command,omitempty"`
	Status     string `json:"status,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runEvent(t Type, run *recipe.RunReport, now time.Time) RunEvent {
	return RunEvent{
		Type:      t,
		RunID:     run.RunID,
		Recipe:    run.Recipe,
		Trigger:   run.Trigger,
		Commit:    run.Commit,
		Timestamp: now,
	}
}
