package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/domain/srs"
	"github.com/readpath/readpath-api/internal/events"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/store"
)

// Bounds for GetDueItems limits. A non-positive limit falls back to the
// default; anything above the maximum is capped.
const (
	defaultDueLimit = 20
	maxDueLimit     = 100
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db         *sql.DB
	vocabStore store.VocabItemStore
	eventSink  events.Sink
	logger     *slog.Logger

	// runTx wraps store.RunInTransaction; tests replace it to run the
	// transaction function without a live database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewReviewService creates a new ReviewService implementation.
// The event sink may be nil, in which case attempts are not recorded in
// the event stream.
func NewReviewService(
	db *sql.DB,
	vocabStore store.VocabItemStore,
	eventSink events.Sink,
	logger *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if vocabStore == nil {
		panic("vocabStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewServiceImpl{
		db:         db,
		vocabStore: vocabStore,
		eventSink:  eventSink,
		logger:     logger.With(slog.String("component", "review_service")),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s
}

// SubmitAttempt implements ReviewService.SubmitAttempt.
// The find-or-create, transition computation, and compare-and-set update
// all run inside one transaction, so a conflicting submission leaves the
// item untouched.
func (s *reviewServiceImpl) SubmitAttempt(
	ctx context.Context,
	ownerID uuid.UUID,
	req SubmitRequest,
) (*domain.VocabItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !req.Result.IsValid() {
		log.Warn("rejected attempt with unknown result",
			slog.String("owner_id", ownerID.String()),
			slog.String("result", string(req.Result)))
		return nil, ErrInvalidAttempt
	}

	word := domain.NormalizeWord(req.Word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	log.Debug("processing review attempt",
		slog.String("owner_id", ownerID.String()),
		slog.String("word", word),
		slog.String("result", string(req.Result)))

	var updated *domain.VocabItem
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.vocabStore.WithTx(tx)

		item, err := s.findOrCreate(ctx, txStore, ownerID, word, req.Language)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		transition, err := srs.CalculateNextDue(item.Stage, req.Result, now)
		if err != nil {
			return fmt.Errorf("failed to calculate transition: %w", err)
		}

		delta, err := srs.CalculateMasteryDelta(req.Result)
		if err != nil {
			return fmt.Errorf("failed to calculate mastery delta: %w", err)
		}
		newScore := domain.ClampMasteryScore(item.MasteryScore + delta)

		err = txStore.ApplyTransition(
			ctx,
			item.ID,
			item.Stage,
			transition.NewStage,
			transition.DueDate,
			transition.LapseIncrement,
			newScore,
		)
		if err != nil {
			if errors.Is(err, store.ErrStageConflict) {
				return ErrSubmissionConflict
			}
			return fmt.Errorf("failed to apply transition: %w", err)
		}

		copied := *item
		copied.Stage = transition.NewStage
		copied.DueAt = transition.DueDate
		copied.LapseCount += transition.LapseIncrement
		copied.MasteryScore = newScore
		copied.UpdatedAt = now
		updated = &copied
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSubmissionConflict) {
			log.Warn("concurrent submission conflict",
				slog.String("owner_id", ownerID.String()),
				slog.String("word", word))
			return nil, ErrSubmissionConflict
		}
		log.Error("failed to submit attempt",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("word", word))
		return nil, NewSubmitAttemptError("failed to apply review attempt", err)
	}

	s.recordAttempt(ctx, log, ownerID, updated, req.Result)

	log.Debug("review attempt applied",
		slog.String("owner_id", ownerID.String()),
		slog.String("item_id", updated.ID.String()),
		slog.String("new_stage", string(updated.Stage)))
	return updated, nil
}

// findOrCreate resolves the owner's item for a normalized word, creating
// it at the initial stage on first encounter. A create that loses a race
// to a concurrent first submission falls back to reading the winner.
func (s *reviewServiceImpl) findOrCreate(
	ctx context.Context,
	txStore store.VocabItemStore,
	ownerID uuid.UUID,
	word, language string,
) (*domain.VocabItem, error) {
	item, err := txStore.GetByOwnerAndWord(ctx, ownerID, word)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, store.ErrVocabItemNotFound) {
		return nil, fmt.Errorf("failed to look up item: %w", err)
	}

	item, err = domain.NewVocabItem(ownerID, word, language)
	if err != nil {
		return nil, fmt.Errorf("failed to build new item: %w", err)
	}

	if err := txStore.Create(ctx, item); err != nil {
		if errors.Is(err, store.ErrWordExists) {
			return txStore.GetByOwnerAndWord(ctx, ownerID, word)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// recordAttempt emits a vocab_attempt event. Event emission is best
// effort: a sink failure is logged but never fails the submission.
func (s *reviewServiceImpl) recordAttempt(
	ctx context.Context,
	log *slog.Logger,
	ownerID uuid.UUID,
	item *domain.VocabItem,
	result domain.AttemptResult,
) {
	if s.eventSink == nil {
		return
	}

	event, err := events.New(events.TypeVocabAttempt, ownerID, nil, events.VocabAttemptPayload{
		ItemID:   item.ID,
		Result:   string(result),
		NewStage: string(item.Stage),
	})
	if err != nil {
		log.Warn("failed to build vocab attempt event",
			slog.String("error", err.Error()))
		return
	}

	if err := s.eventSink.Persist(ctx, event); err != nil {
		log.Warn("failed to record vocab attempt event",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
	}
}

// GetDueItems implements ReviewService.GetDueItems.
func (s *reviewServiceImpl) GetDueItems(
	ctx context.Context,
	ownerID uuid.UUID,
	limit int,
) ([]*domain.VocabItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultDueLimit
	}
	if limit > maxDueLimit {
		limit = maxDueLimit
	}

	items, err := s.vocabStore.FindDue(ctx, ownerID, time.Now().UTC(), limit)
	if err != nil {
		log.Error("failed to get due items",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, NewGetDueItemsError("failed to select due items", err)
	}

	log.Debug("selected due items",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(items)))
	return items, nil
}
