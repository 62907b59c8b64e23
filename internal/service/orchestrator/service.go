// Package orchestrator implements next-action selection: it fans out to
// the learner's signal sources, ranks the candidates they produce, and
// returns the top few. Sources degrade independently; a failing source
// costs its own candidates, never the whole call.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// Request identifies whose next actions to compute and, optionally, the
// session and content the learner is currently on.
type Request struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id,omitempty"`
	ContentID uuid.UUID `json:"content_id,omitempty"`
}

// OrchestratorService computes ranked next-action candidates.
type OrchestratorService interface {
	// GetNextActions gathers candidates from all signal sources
	// concurrently, ranks them by priority (descending, stable), and
	// returns at most three. The result is never empty: when every
	// source is quiet or failing, the content-navigation fallback is
	// returned alone.
	GetNextActions(ctx context.Context, req Request) ([]*domain.NextAction, error)
}

// ServiceError wraps errors from the orchestrator with operation
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
