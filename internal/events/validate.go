package events

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrUnknownEventType is returned when an event's type has no registered
// payload schema. Unknown types are rejected, never silently dropped.
var ErrUnknownEventType = errors.New("unknown event type")

// ErrInvalidPayload is returned when an event payload fails its schema.
var ErrInvalidPayload = errors.New("invalid event payload")

// validate is the shared validator instance for payload schemas.
var validate = validator.New()

// PhaseChangePayload is the schema for phase_change events.
type PhaseChangePayload struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	NewPhase  string    `json:"new_phase"  validate:"required,oneof=BOOT PRE DURING POST CLOSE"`
}

// SessionFinishedPayload is the schema for session_finished events.
type SessionFinishedPayload struct {
	SessionID           uuid.UUID `json:"session_id"            validate:"required"`
	FinalPhase          string    `json:"final_phase"           validate:"required,oneof=BOOT PRE DURING POST CLOSE"`
	DurationSec         int64     `json:"duration_sec"          validate:"gte=0"`
	CheckpointFailCount int       `json:"checkpoint_fail_count" validate:"gte=0"`
}

// CheckpointResultPayload is the schema for checkpoint_result events.
type CheckpointResultPayload struct {
	SessionID    uuid.UUID  `json:"session_id"              validate:"required"`
	CheckpointID *uuid.UUID `json:"checkpoint_id,omitempty"`
	Passed       *bool      `json:"passed"                  validate:"required"`
}

// VocabAttemptPayload is the schema for vocab_attempt events.
type VocabAttemptPayload struct {
	ItemID   uuid.UUID `json:"item_id"   validate:"required"`
	Result   string    `json:"result"    validate:"required,oneof=fail hard ok easy"`
	NewStage string    `json:"new_stage" validate:"required"`
}

// DoubtRaisedPayload is the schema for doubt_raised events.
type DoubtRaisedPayload struct {
	ContentID *uuid.UUID `json:"content_id,omitempty"`
	Kind      string     `json:"kind" validate:"required,oneof=question confusion reread"`
}

// Validate checks an event against the payload schema registered for its
// type. It returns ErrUnknownEventType for types with no schema and
// ErrInvalidPayload (wrapped with detail) for payloads that do not
// conform.
func Validate(event *Event) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidPayload)
	}

	if event.ID == uuid.Nil || event.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing identifiers", ErrInvalidPayload)
	}

	var payload any
	switch event.Type {
	case TypePhaseChange:
		payload = &PhaseChangePayload{}
	case TypeSessionFinished:
		payload = &SessionFinishedPayload{}
	case TypeCheckpointResult:
		payload = &CheckpointResultPayload{}
	case TypeVocabAttempt:
		payload = &VocabAttemptPayload{}
	case TypeDoubtRaised:
		payload = &DoubtRaisedPayload{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	if err := event.UnmarshalPayload(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return nil
}
