package coreading

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// StartResult is the outcome of starting a session: the fresh context
// plus the boot prompt the educator reads first.
type StartResult struct {
	Session   *domain.CoReadingContext `json:"session"`
	PromptKey string                   `json:"prompt_key"`
}

// AdvanceResult is the outcome of a successful phase transition.
type AdvanceResult struct {
	Session   *domain.CoReadingContext `json:"session"`
	PromptKey string                   `json:"prompt_key"`
}

// CheckpointFailResult is the outcome of recording a failed checkpoint.
type CheckpointFailResult struct {
	Session *domain.CoReadingContext `json:"session"`

	// ShouldEscalate is true once the session accumulates enough fails
	// that the educator is brought in instead of another retry.
	ShouldEscalate bool `json:"should_escalate"`
}

// TimeoutStatus reports which phase timeboxes a session has exceeded.
type TimeoutStatus struct {
	PreTimedOut    bool `json:"pre_timed_out"`
	DuringTimedOut bool `json:"during_timed_out"`
}

// CoReadingService drives guided co-reading sessions.
type CoReadingService interface {
	// StartSession creates a session in the boot phase.
	StartSession(
		ctx context.Context,
		householdID, learnerID, educatorID uuid.UUID,
		timeboxMin int,
	) (*StartResult, error)

	// Advance moves the session to the target phase. Only the immediate
	// successor of the current phase is accepted; the update and its
	// phase-change event land atomically or not at all.
	//
	// Returns ErrInvalidTransition for a skipped or backward phase,
	// ErrSessionClosed once the session is terminal, and
	// ErrConcurrentUpdate when another writer moved the session first.
	Advance(ctx context.Context, sessionID uuid.UUID, target domain.Phase) (*AdvanceResult, error)

	// HandleCheckpointFail records a failed checkpoint and reports
	// whether the session should escalate to the educator.
	HandleCheckpointFail(
		ctx context.Context,
		sessionID uuid.UUID,
		checkpointID *uuid.UUID,
	) (*CheckpointFailResult, error)

	// HandleCheckpointPass records a passed checkpoint, resets the
	// session's fail count, and resolves the checkpoint.
	HandleCheckpointPass(
		ctx context.Context,
		sessionID uuid.UUID,
		checkpointID uuid.UUID,
	) (*domain.CoReadingContext, error)

	// Close ends the session from whatever phase it is in and emits the
	// session summary event. Returns ErrSessionClosed if the session is
	// already terminal.
	Close(ctx context.Context, sessionID uuid.UUID) (*domain.CoReadingContext, error)

	// CheckTimeouts reports which timeboxes the session has exceeded.
	// It never mutates the session.
	CheckTimeouts(ctx context.Context, sessionID uuid.UUID) (*TimeoutStatus, error)
}

// Common error types for CoReadingService
var (
	// ErrInvalidTransition indicates a phase move that is not the
	// immediate successor of the current phase.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrSessionClosed indicates the session has already reached its
	// terminal phase.
	ErrSessionClosed = errors.New("session is closed")

	// ErrConcurrentUpdate indicates another writer moved the session
	// first. The losing update is discarded, never merged.
	ErrConcurrentUpdate = errors.New("concurrent session update")
)

// ServiceError wraps errors from the co-reading service with operation
// context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
