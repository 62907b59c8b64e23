package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/store"
)

// CheckpointStore implements the store.CheckpointStore interface using a
// PostgreSQL database as the storage backend.
type CheckpointStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCheckpointStore creates a new PostgreSQL implementation of the
// CheckpointStore interface.
func NewCheckpointStore(db store.DBTX, logger *slog.Logger) *CheckpointStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CheckpointStore{
		db:     db,
		logger: logger.With(slog.String("component", "checkpoint_store")),
	}
}

var _ store.CheckpointStore = (*CheckpointStore)(nil)

// GetPendingCheckpoints implements store.CheckpointProvider.
// A contentID of uuid.Nil returns pending checkpoints across all content.
func (s *CheckpointStore) GetPendingCheckpoints(
	ctx context.Context,
	userID, contentID uuid.UUID,
) ([]*domain.Checkpoint, error) {
	query := `
		SELECT id, content_id, schooling_level_target
		FROM checkpoints
		WHERE learner_id = $1 AND resolved_at IS NULL
	`
	args := []any{userID}

	if contentID != uuid.Nil {
		query += ` AND content_id = $2`
		args = append(args, contentID)
	}

	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query pending checkpoints",
			slog.String("learner_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var checkpoints []*domain.Checkpoint
	for rows.Next() {
		var cp domain.Checkpoint
		if err := rows.Scan(&cp.ID, &cp.ContentID, &cp.SchoolingLevelTarget); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		checkpoints = append(checkpoints, &cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint rows: %w", err)
	}

	return checkpoints, nil
}

// MarkResolved implements store.CheckpointStore.MarkResolved
func (s *CheckpointStore) MarkResolved(ctx context.Context, checkpointID uuid.UUID) error {
	query := `
		UPDATE checkpoints
		SET resolved_at = NOW()
		WHERE id = $1 AND resolved_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, checkpointID)
	if err != nil {
		s.logger.Error("failed to resolve checkpoint",
			slog.String("checkpoint_id", checkpointID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCheckpointNotFound)
}
