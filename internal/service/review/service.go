// Package review implements vocabulary review submission: applying
// spaced-repetition attempt outcomes to vocabulary items and selecting
// the items due for review.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// SubmitRequest carries one review attempt against a word. The word is
// normalized before lookup, so "Água" and "agua" address the same item.
type SubmitRequest struct {
	Word     string               `json:"word"`
	Language string               `json:"language,omitempty"`
	Result   domain.AttemptResult `json:"result"`
}

// ReviewService provides vocabulary review operations.
type ReviewService interface {
	// SubmitAttempt applies one attempt outcome to the owner's item for
	// the given word, creating the item at the initial stage first if it
	// does not exist yet. The stage transition, due date, lapse count,
	// and mastery score are all updated atomically.
	//
	// Returns ErrInvalidAttempt for an unknown result value and
	// ErrSubmissionConflict when a concurrent submission moved the item
	// first; a conflicting submission changes nothing and the caller may
	// retry against the fresh state.
	SubmitAttempt(ctx context.Context, ownerID uuid.UUID, req SubmitRequest) (*domain.VocabItem, error)

	// GetDueItems returns the owner's items due for review right now,
	// most overdue first with ties broken by lapse count descending,
	// capped at limit.
	GetDueItems(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.VocabItem, error)
}

// Common error types for ReviewService
var (
	// ErrInvalidAttempt indicates an unknown attempt result value.
	ErrInvalidAttempt = errors.New("invalid attempt result")

	// ErrEmptyWord indicates the submitted word is empty after
	// normalization.
	ErrEmptyWord = errors.New("word is empty")

	// ErrSubmissionConflict indicates a concurrent submission already
	// moved the item. The losing submission is discarded, never merged.
	ErrSubmissionConflict = errors.New("concurrent submission conflict")
)

// ServiceError wraps errors from the review service with operation
// context, so consumers can differentiate failures with errors.As
// instead of string matching.
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

// NewSubmitAttemptError returns a new ServiceError for the
// submit_attempt operation.
func NewSubmitAttemptError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_attempt",
		Message:   message,
		Err:       err,
	}
}

// NewGetDueItemsError returns a new ServiceError for the get_due_items
// operation.
func NewGetDueItemsError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_due_items",
		Message:   message,
		Err:       err,
	}
}
