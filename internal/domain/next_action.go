package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ActionType identifies which signal source produced a next-action
// candidate.
type ActionType string

// Possible action types.
const (
	ActionTypeSRSReview    ActionType = "SRS_REVIEW"
	ActionTypeIntervention ActionType = "INTERVENTION"
	ActionTypeCheckpoint   ActionType = "CHECKPOINT"
	ActionTypeContentNav   ActionType = "CONTENT_NAV"
)

// Reason codes attached to next-action candidates. Decision-engine
// reasons map to priorities in the orchestrator; the codes below are the
// ones the orchestrator itself produces.
const (
	ReasonSRSOverdue = "SRS_OVERDUE"
	ReasonSRSDue     = "SRS_DUE"

	ReasonCheckpointPending = "CHECKPOINT_PENDING"
	// ReasonCheckpointStatusUnknown marks the synthesized blocking
	// candidate produced when the checkpoint provider is unreachable.
	// A timed-out lookup is never treated as "no pending checkpoints".
	ReasonCheckpointStatusUnknown = "CHECKPOINT_STATUS_UNKNOWN"

	ReasonContentNavDefault = "DEFAULT_NAV"
)

// NextAction is an ephemeral candidate for "what should happen next",
// produced by one signal source during a single orchestration call.
// Candidates are ranked, truncated to the top three, and discarded.
type NextAction struct {
	ID         uuid.UUID       `json:"id"`
	Type       ActionType      `json:"type"`
	Priority   int             `json:"priority"`
	ReasonCode string          `json:"reason_code"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	IsBlocking bool            `json:"is_blocking"`
}

// Validate checks the candidate's structural invariants.
func (a *NextAction) Validate() error {
	if a.ID == uuid.Nil {
		return ErrInvalidID
	}

	switch a.Type {
	case ActionTypeSRSReview, ActionTypeIntervention, ActionTypeCheckpoint, ActionTypeContentNav:
	default:
		return ErrValidation
	}

	if a.Priority < 0 || a.Priority > 100 {
		return ErrInvalidPriority
	}

	return nil
}
