package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// VocabItemStore defines the interface for vocabulary item persistence.
type VocabItemStore interface {
	// Create saves a new vocabulary item.
	// Returns ErrWordExists if an item for the same owner and normalized
	// word already exists. Items are never hard-deleted, so Create is the
	// only path that introduces rows.
	Create(ctx context.Context, item *domain.VocabItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrVocabItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabItem, error)

	// GetByOwnerAndWord retrieves an item by owner and normalized word.
	// Returns ErrVocabItemNotFound if the item does not exist. The word
	// must already be normalized (domain.NormalizeWord).
	GetByOwnerAndWord(ctx context.Context, ownerID uuid.UUID, word string) (*domain.VocabItem, error)

	// FindDue selects items whose DueAt is at or before now, ordered by
	// DueAt ascending (most overdue first) with ties broken by LapseCount
	// descending (harder items surface first), returning at most limit
	// items.
	FindDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]*domain.VocabItem, error)

	// ApplyTransition applies a stage transition as a single atomic
	// compare-and-set: the update only lands if the stored stage still
	// equals expectedStage. Returns ErrStageConflict when the row has
	// moved; the caller is expected to re-read and resubmit.
	ApplyTransition(
		ctx context.Context,
		itemID uuid.UUID,
		expectedStage domain.Stage,
		newStage domain.Stage,
		dueAt time.Time,
		lapseIncrement int,
		masteryScore int,
	) error

	// CountByStage returns the number of items an owner has at the given
	// stage. Used by dashboard aggregation.
	CountByStage(ctx context.Context, ownerID uuid.UUID, stage domain.Stage) (int, error)

	// WithTx returns a VocabItemStore bound to the provided transaction.
	WithTx(tx *sql.Tx) VocabItemStore
}
