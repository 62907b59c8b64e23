package review

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/events"
	"github.com/readpath/readpath-api/internal/store"
)

// fakeVocabStore is an in-memory store.VocabItemStore for service tests.
type fakeVocabStore struct {
	items map[uuid.UUID]*domain.VocabItem

	// applyErr, when set, is returned from ApplyTransition.
	applyErr error
}

func newFakeVocabStore() *fakeVocabStore {
	return &fakeVocabStore{items: make(map[uuid.UUID]*domain.VocabItem)}
}

func (f *fakeVocabStore) Create(_ context.Context, item *domain.VocabItem) error {
	for _, existing := range f.items {
		if existing.OwnerID == item.OwnerID && existing.Word == item.Word {
			return store.ErrWordExists
		}
	}
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeVocabStore) GetByID(_ context.Context, id uuid.UUID) (*domain.VocabItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrVocabItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeVocabStore) GetByOwnerAndWord(
	_ context.Context,
	ownerID uuid.UUID,
	word string,
) (*domain.VocabItem, error) {
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.Word == word {
			copied := *item
			return &copied, nil
		}
	}
	return nil, store.ErrVocabItemNotFound
}

func (f *fakeVocabStore) FindDue(
	_ context.Context,
	ownerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.VocabItem, error) {
	var due []*domain.VocabItem
	for _, item := range f.items {
		if item.OwnerID == ownerID && !item.DueAt.After(now) {
			copied := *item
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].LapseCount > due[j].LapseCount
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeVocabStore) ApplyTransition(
	_ context.Context,
	itemID uuid.UUID,
	expectedStage domain.Stage,
	newStage domain.Stage,
	dueAt time.Time,
	lapseIncrement int,
	masteryScore int,
) error {
	if f.applyErr != nil {
		return f.applyErr
	}

	item, ok := f.items[itemID]
	if !ok {
		return store.ErrVocabItemNotFound
	}
	if item.Stage != expectedStage {
		return store.ErrStageConflict
	}

	item.Stage = newStage
	item.DueAt = dueAt
	item.LapseCount += lapseIncrement
	item.MasteryScore = masteryScore
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeVocabStore) CountByStage(
	_ context.Context,
	ownerID uuid.UUID,
	stage domain.Stage,
) (int, error) {
	count := 0
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.Stage == stage {
			count++
		}
	}
	return count, nil
}

func (f *fakeVocabStore) WithTx(_ *sql.Tx) store.VocabItemStore {
	return f
}

// newTestService builds a review service around the fake store with the
// transaction runner stubbed out.
func newTestService(fake *fakeVocabStore, sink events.Sink) *reviewServiceImpl {
	s := &reviewServiceImpl{
		vocabStore: fake,
		eventSink:  sink,
		logger:     slog.Default(),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	return s
}

func seedItem(
	t *testing.T,
	fake *fakeVocabStore,
	ownerID uuid.UUID,
	word string,
	stage domain.Stage,
) *domain.VocabItem {
	t.Helper()

	item, err := domain.NewVocabItem(ownerID, word, "pt")
	require.NoError(t, err)
	item.Stage = stage
	require.NoError(t, fake.Create(context.Background(), item))
	return item
}

func TestSubmitAttemptCreatesItemOnFirstEncounter(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	sink := events.NewInMemorySink(nil)
	svc := newTestService(fake, sink)
	ownerID := uuid.New()

	item, err := svc.SubmitAttempt(context.Background(), ownerID, SubmitRequest{
		Word:   "Água",
		Result: domain.AttemptResultOK,
	})
	require.NoError(t, err)

	// First encounter starts at NEW; OK advances one step.
	assert.Equal(t, "agua", item.Word)
	assert.Equal(t, domain.StageD1, item.Stage)
	assert.Equal(t, 0, item.LapseCount)
	assert.Equal(t, 60, item.MasteryScore)

	recorded := sink.OfType(events.TypeVocabAttempt)
	require.Len(t, recorded, 1)
	assert.Equal(t, ownerID, recorded[0].UserID)
}

func TestSubmitAttemptFailResetsAndIncrementsLapse(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	svc := newTestService(fake, nil)
	ownerID := uuid.New()
	seeded := seedItem(t, fake, ownerID, "casa", domain.StageD7)

	item, err := svc.SubmitAttempt(context.Background(), ownerID, SubmitRequest{
		Word:   "casa",
		Result: domain.AttemptResultFail,
	})
	require.NoError(t, err)

	assert.Equal(t, seeded.ID, item.ID)
	assert.Equal(t, domain.StageD1, item.Stage)
	assert.Equal(t, 1, item.LapseCount)
	assert.Equal(t, 30, item.MasteryScore)
}

func TestSubmitAttemptNormalizedWordResolvesSameItem(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	svc := newTestService(fake, nil)
	ownerID := uuid.New()
	seeded := seedItem(t, fake, ownerID, "agua", domain.StageD3)

	item, err := svc.SubmitAttempt(context.Background(), ownerID, SubmitRequest{
		Word:   "  ÁGUA ",
		Result: domain.AttemptResultEasy,
	})
	require.NoError(t, err)

	assert.Equal(t, seeded.ID, item.ID)
	assert.Equal(t, domain.StageD14, item.Stage)
	assert.Len(t, fake.items, 1)
}

func TestSubmitAttemptInvalidResult(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeVocabStore(), nil)

	_, err := svc.SubmitAttempt(context.Background(), uuid.New(), SubmitRequest{
		Word:   "casa",
		Result: domain.AttemptResult("meh"),
	})
	assert.ErrorIs(t, err, ErrInvalidAttempt)
}

func TestSubmitAttemptEmptyWord(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeVocabStore(), nil)

	_, err := svc.SubmitAttempt(context.Background(), uuid.New(), SubmitRequest{
		Word:   "   ",
		Result: domain.AttemptResultOK,
	})
	assert.ErrorIs(t, err, ErrEmptyWord)
}

func TestSubmitAttemptConflictIsSurfaced(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	svc := newTestService(fake, nil)
	ownerID := uuid.New()
	seeded := seedItem(t, fake, ownerID, "casa", domain.StageD3)
	fake.applyErr = store.ErrStageConflict

	_, err := svc.SubmitAttempt(context.Background(), ownerID, SubmitRequest{
		Word:   "casa",
		Result: domain.AttemptResultOK,
	})
	assert.ErrorIs(t, err, ErrSubmissionConflict)

	// The losing submission changed nothing.
	current, getErr := fake.GetByID(context.Background(), seeded.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StageD3, current.Stage)
}

func TestSubmitAttemptSinkFailureDoesNotFailSubmission(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	svc := newTestService(fake, failingSink{})
	ownerID := uuid.New()
	seedItem(t, fake, ownerID, "casa", domain.StageD1)

	item, err := svc.SubmitAttempt(context.Background(), ownerID, SubmitRequest{
		Word:   "casa",
		Result: domain.AttemptResultOK,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageD3, item.Stage)
}

type failingSink struct{}

func (failingSink) Persist(context.Context, *events.Event) error {
	return assert.AnError
}

func TestGetDueItemsOrderingAndLimit(t *testing.T) {
	t.Parallel()

	fake := newFakeVocabStore()
	svc := newTestService(fake, nil)
	ownerID := uuid.New()

	now := time.Now().UTC()
	older := seedItem(t, fake, ownerID, "um", domain.StageD1)
	fake.items[older.ID].DueAt = now.Add(-48 * time.Hour)
	newer := seedItem(t, fake, ownerID, "dois", domain.StageD1)
	fake.items[newer.ID].DueAt = now.Add(-1 * time.Hour)
	future := seedItem(t, fake, ownerID, "tres", domain.StageD1)
	fake.items[future.ID].DueAt = now.Add(24 * time.Hour)

	items, err := svc.GetDueItems(context.Background(), ownerID, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "um", items[0].Word)
	assert.Equal(t, "dois", items[1].Word)

	limited, err := svc.GetDueItems(context.Background(), ownerID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
