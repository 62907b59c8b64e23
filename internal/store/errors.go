package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. This is a generic version of the entity-specific not
	// found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second item for the same normalized
	// word and owner).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict is returned when a compare-and-set update loses the
	// race: the stored row no longer matches the expected state. Callers
	// are expected to re-read and resubmit; the store never retries
	// internally, since the current state may have legitimately changed.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrVocabItemNotFound indicates that the requested vocabulary item
	// does not exist in the store.
	ErrVocabItemNotFound = fmt.Errorf("%w: vocab item", ErrNotFound)

	// ErrSessionNotFound indicates that the requested co-reading session
	// does not exist in the store.
	ErrSessionNotFound = fmt.Errorf("%w: co-reading session", ErrNotFound)

	// ErrCheckpointNotFound indicates that the requested checkpoint does
	// not exist in the store.
	ErrCheckpointNotFound = fmt.Errorf("%w: checkpoint", ErrNotFound)

	// Entity-specific conflict errors

	// ErrStageConflict indicates a vocab item stage transition lost a
	// compare-and-set race against a concurrent review submission.
	ErrStageConflict = fmt.Errorf("%w: vocab item stage", ErrConflict)

	// ErrSessionConflict indicates a concurrent writer moved a co-reading
	// session first. Sessions are single-writer; conflicting transitions
	// are rejected, never merged.
	ErrSessionConflict = fmt.Errorf("%w: co-reading session", ErrConflict)

	// ErrWordExists indicates an item for this owner and normalized word
	// already exists.
	ErrWordExists = fmt.Errorf("%w: word", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of compare-and-set
// conflict. Conflicts are retryable by re-reading current state.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "vocab_item", "session")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity,
// operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
