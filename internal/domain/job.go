package domain

import "time"

// JobKind selects what the async worker does with a DeferredJob.
type JobKind string

const (
	JobCommandCheck JobKind = "check"
	JobTranslate    JobKind = "translate"
)

// Correlation locates the deferred interaction response to edit.
type Correlation struct {
	AppID         string `json:"app_id"`
	Token         string `json:"token"`
	InteractionID string `json:"interaction_id"`
}

// DeferredJob is handed from the interaction coordinator to the async worker.
// It is self-contained: the worker shares no memory with the coordinator.
type DeferredJob struct {
	ID          string      `json:"id"`
	Kind        JobKind     `json:"kind"`
	Category    Category    `json:"category,omitempty"`
	Language    string      `json:"language,omitempty"`
	MessageKey  string      `json:"message_key,omitempty"`
	Correlation Correlation `json:"correlation"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
}
