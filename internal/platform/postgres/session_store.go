package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/store"
)

// SessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
func NewSessionStore(db store.DBTX, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *SessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &SessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.SessionStore.Create
func (s *SessionStore) Create(ctx context.Context, sess *domain.CoReadingContext) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO coreading_sessions
			(session_id, household_id, learner_id, educator_id, current_phase,
			 timebox_min, checkpoint_fail_count, started_at, phase_started_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		sess.SessionID,
		sess.HouseholdID,
		sess.LearnerID,
		sess.EducatorID,
		string(sess.CurrentPhase),
		sess.TimeboxMin,
		sess.CheckpointFailCount,
		sess.StartedAt,
		sess.PhaseStartedAt,
		sess.Version,
	)
	if err != nil {
		s.logger.Error("failed to create session",
			slog.String("session_id", sess.SessionID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *SessionStore) GetByID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.CoReadingContext, error) {
	query := `
		SELECT session_id, household_id, learner_id, educator_id, current_phase,
		       timebox_min, checkpoint_fail_count, started_at, phase_started_at, version
		FROM coreading_sessions
		WHERE session_id = $1
	`

	var sess domain.CoReadingContext
	var phase string

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&sess.SessionID,
		&sess.HouseholdID,
		&sess.LearnerID,
		&sess.EducatorID,
		&phase,
		&sess.TimeboxMin,
		&sess.CheckpointFailCount,
		&sess.StartedAt,
		&sess.PhaseStartedAt,
		&sess.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, MapError(err)
	}

	sess.CurrentPhase = domain.Phase(phase)
	return &sess, nil
}

// Update implements store.SessionStore.Update
// The version guard enforces the single-writer rule: a concurrent writer
// that moved the session first causes store.ErrSessionConflict, and the
// losing update changes nothing.
func (s *SessionStore) Update(ctx context.Context, sess *domain.CoReadingContext) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE coreading_sessions
		SET current_phase = $1,
		    checkpoint_fail_count = $2,
		    phase_started_at = $3,
		    version = version + 1
		WHERE session_id = $4 AND version = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		string(sess.CurrentPhase),
		sess.CheckpointFailCount,
		sess.PhaseStartedAt,
		sess.SessionID,
		sess.Version,
	)
	if err != nil {
		s.logger.Error("failed to update session",
			slog.String("session_id", sess.SessionID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, getErr := s.GetByID(ctx, sess.SessionID); getErr != nil {
			return store.ErrSessionNotFound
		}
		return store.ErrSessionConflict
	}

	sess.Version++
	return nil
}
