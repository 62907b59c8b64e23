package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the core services.
const (
	// TypePhaseChange records a successful co-reading phase transition.
	TypePhaseChange = "phase_change"

	// TypeSessionFinished records the summary emitted when a session
	// closes, from any phase.
	TypeSessionFinished = "session_finished"

	// TypeCheckpointResult records a checkpoint pass or fail within a
	// session.
	TypeCheckpointResult = "checkpoint_result"

	// TypeVocabAttempt records one review attempt against a vocabulary
	// item.
	TypeVocabAttempt = "vocab_attempt"

	// TypeDoubtRaised records a learner doubt/question signal; the
	// orchestrator counts these to derive flow state.
	TypeDoubtRaised = "doubt_raised"
)

// Event is one schema-validated record in the learning event stream.
// SessionID is nil for events not tied to a live session.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SessionID *uuid.UUID      `json:"session_id,omitempty"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	UserID    uuid.UUID       `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// New creates a validated event of the given type. The payload is
// serialized and checked against the type's schema; a payload that does
// not validate, or a type with no registered schema, is rejected.
func New(eventType string, userID uuid.UUID, sessionID *uuid.UUID, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      eventType,
		Payload:   payloadBytes,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := Validate(event); err != nil {
		return nil, err
	}

	return event, nil
}

// Sink is the collaborator that records events. Implementations must
// treat a validation failure as a rejection: no partially-written events.
type Sink interface {
	// Persist records the given event.
	Persist(ctx context.Context, event *Event) error
}

// TxSink is a Sink that can join a caller-managed transaction, so an
// event lands atomically with the state change it records.
type TxSink interface {
	Sink

	// WithTx returns a Sink bound to the provided transaction.
	WithTx(tx *sql.Tx) Sink
}
