package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is a discrete stage of a guided co-reading session.
// Phases advance forward through a fixed linear order and never move
// backward or skip; PhaseClose is terminal.
type Phase string

// The session phase order.
const (
	PhaseBoot   Phase = "BOOT"
	PhasePre    Phase = "PRE"
	PhaseDuring Phase = "DURING"
	PhasePost   Phase = "POST"
	PhaseClose  Phase = "CLOSE"
)

// PhaseOrder is the fixed linear phase sequence.
var PhaseOrder = []Phase{PhaseBoot, PhasePre, PhaseDuring, PhasePost, PhaseClose}

// IsValid reports whether the phase is one of the known values.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseBoot, PhasePre, PhaseDuring, PhasePost, PhaseClose:
		return true
	default:
		return false
	}
}

// CoReadingContext is the mutable state of one live co-reading session
// between a learner and an educator. It is single-writer: only the
// request path currently driving the session may mutate it, enforced by
// the Version field (compare-and-set on every update).
type CoReadingContext struct {
	SessionID           uuid.UUID `json:"session_id"`
	HouseholdID         uuid.UUID `json:"household_id"`
	LearnerID           uuid.UUID `json:"learner_id"`
	EducatorID          uuid.UUID `json:"educator_id"`
	CurrentPhase        Phase     `json:"current_phase"`
	TimeboxMin          int       `json:"timebox_min"`
	CheckpointFailCount int       `json:"checkpoint_fail_count"`
	StartedAt           time.Time `json:"started_at"`
	PhaseStartedAt      time.Time `json:"phase_started_at"`

	// Version supports optimistic concurrency on session updates.
	// Concurrent writers conflict instead of merging.
	Version int64 `json:"-"`
}

// NewCoReadingContext creates a session context in the BOOT phase.
func NewCoReadingContext(
	householdID, learnerID, educatorID uuid.UUID,
	timeboxMin int,
) (*CoReadingContext, error) {
	if householdID == uuid.Nil || learnerID == uuid.Nil || educatorID == uuid.Nil {
		return nil, ErrInvalidID
	}

	if timeboxMin < 1 {
		return nil, ErrInvalidTimebox
	}

	now := time.Now().UTC()
	return &CoReadingContext{
		SessionID:           uuid.New(),
		HouseholdID:         householdID,
		LearnerID:           learnerID,
		EducatorID:          educatorID,
		CurrentPhase:        PhaseBoot,
		TimeboxMin:          timeboxMin,
		CheckpointFailCount: 0,
		StartedAt:           now,
		PhaseStartedAt:      now,
		Version:             1,
	}, nil
}

// IsClosed reports whether the session has reached its terminal phase.
func (c *CoReadingContext) IsClosed() bool {
	return c.CurrentPhase == PhaseClose
}

// Validate checks if the CoReadingContext has valid data.
func (c *CoReadingContext) Validate() error {
	if c.SessionID == uuid.Nil || c.HouseholdID == uuid.Nil ||
		c.LearnerID == uuid.Nil || c.EducatorID == uuid.Nil {
		return ErrInvalidID
	}

	if !c.CurrentPhase.IsValid() {
		return ErrInvalidPhase
	}

	if c.TimeboxMin < 1 {
		return ErrInvalidTimebox
	}

	if c.CheckpointFailCount < 0 {
		return ErrValidation
	}

	return nil
}
