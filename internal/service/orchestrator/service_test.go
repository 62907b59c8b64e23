package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readpath/readpath-api/internal/decision"
	"github.com/readpath/readpath-api/internal/domain"
)

type fakeDueItems struct {
	items []*domain.VocabItem
	err   error
}

func (f *fakeDueItems) GetDueItems(
	_ context.Context,
	_ uuid.UUID,
	limit int,
) ([]*domain.VocabItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeEngine struct {
	decision  *decision.Decision
	err       error
	lastInput decision.Input
}

func (f *fakeEngine) MakeDecision(
	_ context.Context,
	input decision.Input,
) (*decision.Decision, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

type fakeCheckpoints struct {
	pending []*domain.Checkpoint
	err     error
}

func (f *fakeCheckpoints) GetPendingCheckpoints(
	_ context.Context,
	_, _ uuid.UUID,
) ([]*domain.Checkpoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pending, nil
}

type fakeDoubts struct {
	count int
	err   error
}

func (f *fakeDoubts) CountRecentDoubts(
	_ context.Context,
	_ uuid.UUID,
	_ time.Duration,
) (int, error) {
	return f.count, f.err
}

func dueItem(ownerID uuid.UUID, word string, dueAt time.Time) *domain.VocabItem {
	return &domain.VocabItem{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Word:         word,
		Stage:        domain.StageD1,
		DueAt:        dueAt,
		MasteryScore: 50,
	}
}

func newService(
	due *fakeDueItems,
	engine decision.Engine,
	checkpoints *fakeCheckpoints,
	doubts DoubtCounter,
) OrchestratorService {
	return NewOrchestratorService(due, engine, checkpoints, doubts, nil)
}

func TestGetNextActionsQuietSourcesYieldFallbackOnly(t *testing.T) {
	t.Parallel()

	svc := newService(
		&fakeDueItems{},
		&fakeEngine{decision: &decision.Decision{Action: decision.ActionNoOp}},
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionTypeContentNav, actions[0].Type)
	assert.Equal(t, 10, actions[0].Priority)
	assert.Equal(t, domain.ReasonContentNavDefault, actions[0].ReasonCode)
	assert.False(t, actions[0].IsBlocking)
}

func TestGetNextActionsCheckpointOutranksEverything(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	svc := newService(
		&fakeDueItems{items: []*domain.VocabItem{
			dueItem(userID, "um", now.Add(-48*time.Hour)),
		}},
		&fakeEngine{decision: &decision.Decision{
			Action: "SUGGEST_BREAK",
			Reason: decision.ReasonDoubtSpike,
		}},
		&fakeCheckpoints{pending: []*domain.Checkpoint{
			{ID: uuid.New(), ContentID: uuid.New()},
		}},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: userID})
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.Equal(t, domain.ActionTypeCheckpoint, actions[0].Type)
	assert.True(t, actions[0].IsBlocking)
	assert.Equal(t, 90, actions[0].Priority)

	// Overdue review (80) then doubt-spike intervention (75).
	assert.Equal(t, domain.ActionTypeSRSReview, actions[1].Type)
	assert.Equal(t, domain.ReasonSRSOverdue, actions[1].ReasonCode)
	assert.Equal(t, domain.ActionTypeIntervention, actions[2].Type)
}

func TestGetNextActionsTruncatesToThree(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	svc := newService(
		&fakeDueItems{items: []*domain.VocabItem{
			dueItem(userID, "um", now.Add(-48*time.Hour)),
			dueItem(userID, "dois", now.Add(-49*time.Hour)),
			dueItem(userID, "tres", now.Add(-50*time.Hour)),
			dueItem(userID, "quatro", now.Add(-time.Hour)),
			dueItem(userID, "cinco", now.Add(-time.Hour)),
		}},
		nil,
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: userID})
	require.NoError(t, err)
	require.Len(t, actions, 3)
	for _, a := range actions {
		assert.Equal(t, domain.ActionTypeSRSReview, a.Type)
		assert.Equal(t, 80, a.Priority)
	}
}

func TestGetNextActionsPastDueItemIsOverdue(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	svc := newService(
		&fakeDueItems{items: []*domain.VocabItem{
			dueItem(userID, "um", now.Add(-time.Hour)),
		}},
		nil,
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: userID})
	require.NoError(t, err)
	require.Len(t, actions, 1)

	// Any due date already in the past counts as overdue, however recent.
	assert.Equal(t, domain.ReasonSRSOverdue, actions[0].ReasonCode)
	assert.Equal(t, 80, actions[0].Priority)
}

func TestGetNextActionsNotYetDueItemRanksLower(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	svc := newService(
		&fakeDueItems{items: []*domain.VocabItem{
			dueItem(userID, "um", now.Add(time.Minute)),
		}},
		nil,
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: userID})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ReasonSRSDue, actions[0].ReasonCode)
	assert.Equal(t, 50, actions[0].Priority)
}

func TestGetNextActionsNoFallbackAlongsideRealCandidates(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	svc := newService(
		&fakeDueItems{items: []*domain.VocabItem{
			dueItem(userID, "um", now.Add(-time.Hour)),
		}},
		nil,
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: userID})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	for _, a := range actions {
		assert.NotEqual(t, domain.ActionTypeContentNav, a.Type,
			"fallback must not pad a list with real candidates")
	}
}

func TestGetNextActionsCheckpointFetchFailureBlocks(t *testing.T) {
	t.Parallel()

	svc := newService(
		&fakeDueItems{},
		nil,
		&fakeCheckpoints{err: assert.AnError},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actions, 1)

	// The provider being unreachable never reads as "no checkpoints".
	assert.Equal(t, domain.ActionTypeCheckpoint, actions[0].Type)
	assert.Equal(t, domain.ReasonCheckpointStatusUnknown, actions[0].ReasonCode)
	assert.True(t, actions[0].IsBlocking)
}

func TestGetNextActionsSRSFailureDegradesToOtherSources(t *testing.T) {
	t.Parallel()

	svc := newService(
		&fakeDueItems{err: assert.AnError},
		&fakeEngine{decision: &decision.Decision{
			Action: "SUGGEST_REVIEW",
			Reason: decision.ReasonLowMastery,
		}},
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionTypeIntervention, actions[0].Type)
	assert.Equal(t, 70, actions[0].Priority)
}

func TestGetNextActionsEngineFailureContributesNothing(t *testing.T) {
	t.Parallel()

	svc := newService(
		&fakeDueItems{},
		&fakeEngine{err: assert.AnError},
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionTypeContentNav, actions[0].Type)
}

func TestGetNextActionsUnknownReasonGetsLowPriority(t *testing.T) {
	t.Parallel()

	svc := newService(
		&fakeDueItems{},
		&fakeEngine{decision: &decision.Decision{
			Action: "SUGGEST_SOMETHING",
			Reason: "NOVEL_REASON",
		}},
		&fakeCheckpoints{},
		nil,
	)

	actions, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionTypeIntervention, actions[0].Type)
	assert.Equal(t, 40, actions[0].Priority)
}

func TestGetNextActionsDoubtCountDrivesFlowState(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{decision: &decision.Decision{Action: decision.ActionNoOp}}
	svc := newService(&fakeDueItems{}, engine, &fakeCheckpoints{}, &fakeDoubts{count: 5})

	_, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 5, engine.lastInput.Signals.DoubtsInWindow)
	assert.Equal(t, decision.FlowStateLowFlow, engine.lastInput.Signals.FlowState)
}

func TestGetNextActionsFewDoubtsKeepFlow(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{decision: &decision.Decision{Action: decision.ActionNoOp}}
	svc := newService(&fakeDueItems{}, engine, &fakeCheckpoints{}, &fakeDoubts{count: 2})

	_, err := svc.GetNextActions(context.Background(), Request{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, decision.FlowStateFlow, engine.lastInput.Signals.FlowState)
}

func TestGetNextActionsRejectsMissingUser(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeDueItems{}, nil, &fakeCheckpoints{}, nil)

	_, err := svc.GetNextActions(context.Background(), Request{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
