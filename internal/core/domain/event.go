package domain

import "time"

// JobEventType describes what a job tracker observed.
type JobEventType string

// Job event types. Every type except Progress is terminal and emitted at
// most once per job.
const (
	JobEventProgress      JobEventType = "progress"
	JobEventCompleted     JobEventType = "completed"
	JobEventFailed        JobEventType = "failed"
	JobEventTrackerFailed JobEventType = "tracker_failed"
)

// IsTerminal returns true for events that end tracking.
func (t JobEventType) IsTerminal() bool {
	return t != JobEventProgress
}

// JobEvent is a notification about a tracked job.
type JobEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"event_id"`

	// Type is what happened.
	Type JobEventType `json:"type"`

	// Request is the job snapshot the event was derived from.
	Request Request `json:"request"`

	// Err is the failure for Failed and TrackerFailed events.
	Err error `json:"-"`

	// ErrMessage mirrors Err for serialized consumers.
	ErrMessage string `json:"error,omitempty"`

	// RefreshErr is set on Completed when the owning project could not be
	// refreshed. The cached project is left as it was.
	RefreshErr error `json:"-"`

	// At is when the tracker emitted the event.
	At time.Time `json:"at"`
}
