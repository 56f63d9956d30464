package queue

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies which dispatch operation an event carries.
type Kind string

const (
	KindTrack    Kind = "track"
	KindIdentify Kind = "identify"
	KindError    Kind = "error"
	KindRevenue  Kind = "revenue"
	KindScreen   Kind = "screen"
)

// Event is a buffered dispatch call awaiting a provider's readiness.
type Event struct {
	// ID uniquely identifies the event.
	ID string
	// Kind is the dispatch operation the event carries.
	Kind Kind
	// Timestamp records when the call was originally issued.
	Timestamp time.Time
	// Payload is the call's arguments, opaque to the queue.
	Payload map[string]any
	// Retries counts delivery attempts. Replay does not retry on failure;
	// the counter exists for log/telemetry context only.
	Retries int
	// Target is the provider identifier the event is addressed to.
	Target string
}

// NewEvent creates an event addressed to target with a fresh id and the
// current timestamp.
func NewEvent(target string, kind Kind, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
		Target:    target,
	}
}
