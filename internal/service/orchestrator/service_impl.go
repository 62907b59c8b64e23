package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/decision"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/platform/logger"
)

// Ranking constants. Candidate priorities live on a 0-100 scale; the
// checkpoint gate outranks everything else and the navigation fallback
// ranks below everything else.
const (
	maxActions = 3

	srsCandidateCap = 5

	priorityCheckpoint  = 90
	prioritySRSOverdue  = 80
	prioritySRSDue      = 50
	priorityContentNav  = 10
	priorityIntervMin   = 40
	priorityDoubtSpike  = 75
	priorityCheckFail   = 75
	priorityLowMastery  = 70
	priorityPostSummary = 50

	// sourceTimeout bounds each signal source independently. A slow
	// source times out alone; the others still contribute.
	sourceTimeout = 2 * time.Second

	// doubtWindow is the trailing window for the doubt-count signal.
	doubtWindow = 15 * time.Minute

	// lowFlowDoubtThreshold is the doubt count above which the learner
	// is considered out of flow.
	lowFlowDoubtThreshold = 3
)

// DueItemSource supplies the vocabulary items due for review.
type DueItemSource interface {
	GetDueItems(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.VocabItem, error)
}

// DoubtCounter supplies the learner's recent doubt activity.
type DoubtCounter interface {
	CountRecentDoubts(ctx context.Context, userID uuid.UUID, window time.Duration) (int, error)
}

// CheckpointSource supplies the learner's pending checkpoints.
type CheckpointSource interface {
	GetPendingCheckpoints(ctx context.Context, userID, contentID uuid.UUID) ([]*domain.Checkpoint, error)
}

// Verify interface compliance at compile time
var _ OrchestratorService = (*orchestratorServiceImpl)(nil)

// orchestratorServiceImpl implements the OrchestratorService interface.
type orchestratorServiceImpl struct {
	dueItems    DueItemSource
	engine      decision.Engine
	checkpoints CheckpointSource
	doubts      DoubtCounter
	logger      *slog.Logger
}

// NewOrchestratorService creates a new OrchestratorService.
// The decision engine and doubt counter may be nil, in which case the
// intervention source contributes nothing.
func NewOrchestratorService(
	dueItems DueItemSource,
	engine decision.Engine,
	checkpoints CheckpointSource,
	doubts DoubtCounter,
	logger *slog.Logger,
) OrchestratorService {
	if dueItems == nil {
		panic("dueItems cannot be nil")
	}
	if checkpoints == nil {
		panic("checkpoints cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &orchestratorServiceImpl{
		dueItems:    dueItems,
		engine:      engine,
		checkpoints: checkpoints,
		doubts:      doubts,
		logger:      logger.With(slog.String("component", "orchestrator_service")),
	}
}

// GetNextActions implements OrchestratorService.GetNextActions.
func (s *orchestratorServiceImpl) GetNextActions(
	ctx context.Context,
	req Request,
) ([]*domain.NextAction, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.UserID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}

	var (
		wg sync.WaitGroup

		srsCandidates          []*domain.NextAction
		interventionCandidates []*domain.NextAction
		checkpointCandidates   []*domain.NextAction
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		srsCandidates = s.collectSRS(ctx, log, req)
	}()

	go func() {
		defer wg.Done()
		interventionCandidates = s.collectIntervention(ctx, log, req)
	}()

	go func() {
		defer wg.Done()
		checkpointCandidates = s.collectCheckpoints(ctx, log, req)
	}()

	wg.Wait()

	// Concatenation order fixes the tie-break between equal priorities:
	// reviews, then interventions, then the checkpoint gate. The sort
	// below is stable, so this order survives.
	candidates := make([]*domain.NextAction, 0,
		len(srsCandidates)+len(interventionCandidates)+len(checkpointCandidates))
	candidates = append(candidates, srsCandidates...)
	candidates = append(candidates, interventionCandidates...)
	candidates = append(candidates, checkpointCandidates...)

	// The navigation fallback only fills an otherwise empty list; it
	// never pads a list that already has real candidates.
	if len(candidates) == 0 {
		candidates = append(candidates, navFallback())
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	if len(candidates) > maxActions {
		candidates = candidates[:maxActions]
	}

	log.Debug("ranked next actions",
		slog.String("user_id", req.UserID.String()),
		slog.Int("candidates", len(candidates)))
	return candidates, nil
}

// collectSRS turns due vocabulary items into review candidates. An item
// whose due date has already passed ranks as overdue.
func (s *orchestratorServiceImpl) collectSRS(
	ctx context.Context,
	log *slog.Logger,
	req Request,
) []*domain.NextAction {
	srcCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	items, err := s.dueItems.GetDueItems(srcCtx, req.UserID, srsCandidateCap)
	if err != nil {
		log.Warn("srs source unavailable, skipping",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID.String()))
		return nil
	}

	now := time.Now().UTC()
	candidates := make([]*domain.NextAction, 0, len(items))
	for _, item := range items {
		priority := prioritySRSDue
		reason := domain.ReasonSRSDue
		if item.DueAt.Before(now) {
			priority = prioritySRSOverdue
			reason = domain.ReasonSRSOverdue
		}

		payload, err := json.Marshal(map[string]any{
			"item_id": item.ID,
			"word":    item.Word,
			"stage":   item.Stage,
		})
		if err != nil {
			continue
		}

		candidates = append(candidates, &domain.NextAction{
			ID:         uuid.New(),
			Type:       domain.ActionTypeSRSReview,
			Priority:   priority,
			ReasonCode: reason,
			Payload:    payload,
			IsBlocking: false,
		})
	}

	return candidates
}

// collectIntervention enriches activity signals and asks the decision
// engine for a suggestion. Any failure, and the no-op sentinel, mean
// zero candidates from this source.
func (s *orchestratorServiceImpl) collectIntervention(
	ctx context.Context,
	log *slog.Logger,
	req Request,
) []*domain.NextAction {
	if s.engine == nil {
		return nil
	}

	srcCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	signals := decision.Signals{FlowState: decision.FlowStateFlow}
	if s.doubts != nil {
		count, err := s.doubts.CountRecentDoubts(srcCtx, req.UserID, doubtWindow)
		if err != nil {
			log.Warn("doubt signal unavailable",
				slog.String("error", err.Error()),
				slog.String("user_id", req.UserID.String()))
		} else {
			signals.DoubtsInWindow = count
			if count > lowFlowDoubtThreshold {
				signals.FlowState = decision.FlowStateLowFlow
			}
		}
	}

	dec, err := s.engine.MakeDecision(srcCtx, decision.Input{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		ContentID: req.ContentID,
		Signals:   signals,
	})
	if err != nil {
		log.Warn("decision engine unavailable, skipping",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID.String()))
		return nil
	}
	if dec.IsNoOp() {
		return nil
	}

	return []*domain.NextAction{{
		ID:         uuid.New(),
		Type:       domain.ActionTypeIntervention,
		Priority:   interventionPriority(dec.Reason),
		ReasonCode: dec.Reason,
		Payload:    dec.Payload,
		IsBlocking: false,
	}}
}

// interventionPriority maps an engine reason to a candidate priority.
// Unrecognized reasons get the low default rather than being dropped.
func interventionPriority(reason string) int {
	switch reason {
	case decision.ReasonDoubtSpike:
		return priorityDoubtSpike
	case decision.ReasonCheckpointFail:
		return priorityCheckFail
	case decision.ReasonLowMastery:
		return priorityLowMastery
	case decision.ReasonPostSummary:
		return priorityPostSummary
	default:
		return priorityIntervMin
	}
}

// collectCheckpoints produces the blocking checkpoint gate. A provider
// failure synthesizes an unknown-status gate: an unreachable provider is
// never read as "no pending checkpoints".
func (s *orchestratorServiceImpl) collectCheckpoints(
	ctx context.Context,
	log *slog.Logger,
	req Request,
) []*domain.NextAction {
	srcCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	pending, err := s.checkpoints.GetPendingCheckpoints(srcCtx, req.UserID, req.ContentID)
	if err != nil {
		log.Warn("checkpoint provider unavailable, synthesizing blocking gate",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID.String()))
		return []*domain.NextAction{{
			ID:         uuid.New(),
			Type:       domain.ActionTypeCheckpoint,
			Priority:   priorityCheckpoint,
			ReasonCode: domain.ReasonCheckpointStatusUnknown,
			IsBlocking: true,
		}}
	}

	if len(pending) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(pending))
	for i, cp := range pending {
		ids[i] = cp.ID
	}
	payload, err := json.Marshal(map[string]any{"checkpoint_ids": ids})
	if err != nil {
		payload = nil
	}

	return []*domain.NextAction{{
		ID:         uuid.New(),
		Type:       domain.ActionTypeCheckpoint,
		Priority:   priorityCheckpoint,
		ReasonCode: domain.ReasonCheckpointPending,
		Payload:    payload,
		IsBlocking: true,
	}}
}

// navFallback is the content-navigation candidate synthesized when no
// source produced anything.
func navFallback() *domain.NextAction {
	return &domain.NextAction{
		ID:         uuid.New(),
		Type:       domain.ActionTypeContentNav,
		Priority:   priorityContentNav,
		ReasonCode: domain.ReasonContentNavDefault,
		IsBlocking: false,
	}
}
