package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// SessionStore defines the interface for co-reading session persistence.
type SessionStore interface {
	// Create saves a new session context.
	Create(ctx context.Context, sess *domain.CoReadingContext) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.CoReadingContext, error)

	// Update persists a mutated session context using the Version field
	// as a compare-and-set guard. On success the stored version is
	// incremented and sess.Version is updated to match. Returns
	// ErrSessionConflict when another writer moved the session first;
	// sessions are single-writer and conflicting updates are rejected,
	// never merged.
	Update(ctx context.Context, sess *domain.CoReadingContext) error

	// WithTx returns a SessionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}
