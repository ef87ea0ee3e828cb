package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTrialSelected EventType = "trial_selected"
	EventResponse      EventType = "response"
	EventRunFinished   EventType = "run_finished"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Scheduler string    `json:"scheduler"`
}

// TrialEvent fires when a procedure is selected for the next trial.
type TrialEvent struct {
	EventBase
	TrialIndex int     `json:"trial_index"`
	Label      string  `json:"label"`
	Intensity  float64 `json:"intensity"`
}

// ResponseEvent fires when a response is accepted and routed.
type ResponseEvent struct {
	EventBase
	Label    string  `json:"label"`
	Response int     `json:"response"`
	Value    float64 `json:"value"`
}

// RunEvent fires once, when every procedure has finished.
type RunEvent struct {
	EventBase
	TrialsRecorded int `json:"trials_recorded"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil hooks are skipped; hooks run synchronously on the caller's goroutine.
type LifecycleHooks struct {
	OnTrialSelected func(context.Context, *TrialEvent)
	OnResponse      func(context.Context, *ResponseEvent)
	OnRunFinished   func(context.Context, *RunEvent)
}
