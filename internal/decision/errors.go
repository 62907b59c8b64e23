package decision

import "errors"

// Common errors returned by decision engine implementations.
var (
	// ErrInvalidResponse is returned when the engine's response cannot be
	// parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from decision engine")

	// ErrUnavailable is returned when the engine cannot be reached within
	// its deadline.
	ErrUnavailable = errors.New("decision engine unavailable")

	// ErrInvalidConfig is returned when the engine configuration is invalid.
	ErrInvalidConfig = errors.New("invalid decision engine configuration")
)
