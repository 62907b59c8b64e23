package api

import (
	"errors"
	"net/http"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/service/coreading"
	"github.com/readpath/readpath-api/internal/service/review"
	"github.com/readpath/readpath-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrVocabItemNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrCheckpointNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: concurrent writers and illegal state moves
	case errors.Is(err, review.ErrSubmissionConflict),
		errors.Is(err, coreading.ErrConcurrentUpdate),
		errors.Is(err, coreading.ErrInvalidTransition),
		errors.Is(err, coreading.ErrSessionClosed),
		errors.Is(err, store.ErrStageConflict),
		errors.Is(err, store.ErrSessionConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidAttempt),
		errors.Is(err, review.ErrEmptyWord),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrInvalidTimebox),
		errors.Is(err, domain.ErrUnknownPrivacyMode):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Not found errors
	case errors.Is(err, store.ErrVocabItemNotFound):
		return "Vocabulary item not found"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrCheckpointNotFound):
		return "Checkpoint not found"

	// Conflict errors
	case errors.Is(err, review.ErrSubmissionConflict),
		errors.Is(err, store.ErrStageConflict):
		return "A concurrent submission was applied first; retry with fresh state"

	case errors.Is(err, coreading.ErrConcurrentUpdate),
		errors.Is(err, store.ErrSessionConflict):
		return "The session was updated by another request; retry with fresh state"

	case errors.Is(err, coreading.ErrInvalidTransition):
		return "Invalid phase transition"

	case errors.Is(err, coreading.ErrSessionClosed):
		return "Session is already closed"

	// Bad request errors
	case errors.Is(err, review.ErrInvalidAttempt):
		return "Invalid attempt result"

	case errors.Is(err, review.ErrEmptyWord):
		return "Word must not be empty"

	case errors.Is(err, domain.ErrInvalidPhase):
		return "Invalid phase"

	case errors.Is(err, domain.ErrInvalidTimebox):
		return "Invalid timebox"

	case errors.Is(err, domain.ErrUnknownPrivacyMode):
		return "Unknown privacy mode"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}
