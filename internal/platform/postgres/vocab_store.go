package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/store"
)

// VocabItemStore implements the store.VocabItemStore interface using a
// PostgreSQL database as the storage backend.
type VocabItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewVocabItemStore creates a new PostgreSQL implementation of the
// VocabItemStore interface. It accepts a database connection or
// transaction managed by the caller. If logger is nil, a default logger
// will be used.
func NewVocabItemStore(db store.DBTX, logger *slog.Logger) *VocabItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &VocabItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocab_item_store")),
	}
}

var _ store.VocabItemStore = (*VocabItemStore)(nil)

// WithTx implements store.VocabItemStore.WithTx
func (s *VocabItemStore) WithTx(tx *sql.Tx) store.VocabItemStore {
	return &VocabItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.VocabItemStore.Create
// Returns store.ErrWordExists when the owner already has an item for the
// normalized word.
func (s *VocabItemStore) Create(ctx context.Context, item *domain.VocabItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO vocab_items
			(id, owner_id, word, language, stage, due_at, lapse_count, mastery_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.Word,
		item.Language,
		string(item.Stage),
		item.DueAt,
		item.LapseCount,
		item.MasteryScore,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrWordExists, err)
		}
		s.logger.Error("failed to create vocab item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.VocabItemStore.GetByID
func (s *VocabItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabItem, error) {
	query := selectVocabItem + ` WHERE id = $1`

	item, err := s.scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVocabItemNotFound
		}
		return nil, MapError(err)
	}
	return item, nil
}

// GetByOwnerAndWord implements store.VocabItemStore.GetByOwnerAndWord
func (s *VocabItemStore) GetByOwnerAndWord(
	ctx context.Context,
	ownerID uuid.UUID,
	word string,
) (*domain.VocabItem, error) {
	query := selectVocabItem + ` WHERE owner_id = $1 AND word = $2`

	item, err := s.scanItem(s.db.QueryRowContext(ctx, query, ownerID, word))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVocabItemNotFound
		}
		return nil, MapError(err)
	}
	return item, nil
}

// FindDue implements store.VocabItemStore.FindDue
// Items are ordered most-overdue first; among equally-overdue items the
// ones with more lapses surface first.
func (s *VocabItemStore) FindDue(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.VocabItem, error) {
	query := selectVocabItem + `
		WHERE owner_id = $1 AND due_at <= $2
		ORDER BY due_at ASC, lapse_count DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, now, limit)
	if err != nil {
		s.logger.Error("failed to query due items",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.VocabItem
	for rows.Next() {
		item, err := s.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vocab item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vocab item rows: %w", err)
	}

	return items, nil
}

// ApplyTransition implements store.VocabItemStore.ApplyTransition
// The stage guard in the WHERE clause makes the read-modify-write a
// single atomic compare-and-set: a concurrent submission that moved the
// stage first causes store.ErrStageConflict instead of a lost update.
func (s *VocabItemStore) ApplyTransition(
	ctx context.Context,
	itemID uuid.UUID,
	expectedStage domain.Stage,
	newStage domain.Stage,
	dueAt time.Time,
	lapseIncrement int,
	masteryScore int,
) error {
	query := `
		UPDATE vocab_items
		SET stage = $1,
		    due_at = $2,
		    lapse_count = lapse_count + $3,
		    mastery_score = $4,
		    updated_at = NOW()
		WHERE id = $5 AND stage = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		string(newStage),
		dueAt,
		lapseIncrement,
		masteryScore,
		itemID,
		string(expectedStage),
	)
	if err != nil {
		s.logger.Error("failed to apply stage transition",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the item is gone or the stage moved under us.
		// Distinguish so callers can surface the right failure.
		if _, getErr := s.GetByID(ctx, itemID); getErr != nil {
			return store.ErrVocabItemNotFound
		}
		return store.ErrStageConflict
	}

	return nil
}

// CountByStage implements store.VocabItemStore.CountByStage
func (s *VocabItemStore) CountByStage(
	ctx context.Context,
	ownerID uuid.UUID,
	stage domain.Stage,
) (int, error) {
	query := `SELECT COUNT(*) FROM vocab_items WHERE owner_id = $1 AND stage = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, ownerID, string(stage)).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

const selectVocabItem = `
	SELECT id, owner_id, word, language, stage, due_at, lapse_count, mastery_score, created_at, updated_at
	FROM vocab_items
`

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *VocabItemStore) scanItem(row rowScanner) (*domain.VocabItem, error) {
	var item domain.VocabItem
	var stage string

	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Word,
		&item.Language,
		&stage,
		&item.DueAt,
		&item.LapseCount,
		&item.MasteryScore,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Stage = domain.Stage(stage)
	return &item, nil
}
