package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyWord is returned when a vocabulary word is empty after
	// normalization.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrInvalidStage is returned when a stage value is not on the ladder.
	ErrInvalidStage = errors.New("invalid SRS stage")

	// ErrInvalidAttemptResult is returned when an attempt result is not
	// one of fail, hard, ok, easy.
	ErrInvalidAttemptResult = errors.New("invalid attempt result")

	// ErrInvalidPhase is returned when a session phase value is unknown.
	ErrInvalidPhase = errors.New("invalid session phase")

	// ErrInvalidPriority is returned when a next-action priority is
	// outside the 0-100 range.
	ErrInvalidPriority = errors.New("priority must be between 0 and 100")

	// ErrInvalidTimebox is returned when a session timebox is not positive.
	ErrInvalidTimebox = errors.New("timebox must be at least 1 minute")

	// ErrUnknownPrivacyMode is returned when a dashboard privacy mode is
	// not one of the enumerated values. This is a hard failure rather
	// than a silent default: an unknown mode means a missing enum case.
	ErrUnknownPrivacyMode = errors.New("unknown privacy mode")
)
