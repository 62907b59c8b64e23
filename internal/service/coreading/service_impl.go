package coreading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/events"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/store"
)

// Verify interface compliance at compile time
var _ CoReadingService = (*coReadingServiceImpl)(nil)

// coReadingServiceImpl implements the CoReadingService interface.
type coReadingServiceImpl struct {
	db              *sql.DB
	sessionStore    store.SessionStore
	checkpointStore store.CheckpointStore
	eventSink       events.TxSink
	logger          *slog.Logger

	// runTx wraps store.RunInTransaction; tests replace it to run the
	// transaction function without a live database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewCoReadingService creates a new CoReadingService implementation.
// The checkpoint store may be nil when checkpoint resolution is handled
// elsewhere.
func NewCoReadingService(
	db *sql.DB,
	sessionStore store.SessionStore,
	checkpointStore store.CheckpointStore,
	eventSink events.TxSink,
	logger *slog.Logger,
) CoReadingService {
	if db == nil {
		panic("db cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if eventSink == nil {
		panic("eventSink cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &coReadingServiceImpl{
		db:              db,
		sessionStore:    sessionStore,
		checkpointStore: checkpointStore,
		eventSink:       eventSink,
		logger:          logger.With(slog.String("component", "coreading_service")),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s
}

// StartSession implements CoReadingService.StartSession.
func (s *coReadingServiceImpl) StartSession(
	ctx context.Context,
	householdID, learnerID, educatorID uuid.UUID,
	timeboxMin int,
) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := domain.NewCoReadingContext(householdID, learnerID, educatorID, timeboxMin)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStore.Create(ctx, sess); err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, &ServiceError{
			Operation: "start_session",
			Message:   "failed to create session",
			Err:       err,
		}
	}

	key, err := PromptKeyFor(sess.CurrentPhase)
	if err != nil {
		return nil, err
	}

	log.Info("started co-reading session",
		slog.String("session_id", sess.SessionID.String()),
		slog.String("learner_id", learnerID.String()),
		slog.Int("timebox_min", timeboxMin))
	return &StartResult{Session: sess, PromptKey: key}, nil
}

// Advance implements CoReadingService.Advance.
func (s *coReadingServiceImpl) Advance(
	ctx context.Context,
	sessionID uuid.UUID,
	target domain.Phase,
) (*AdvanceResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !target.IsValid() {
		return nil, domain.ErrInvalidPhase
	}

	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	if !CanAdvance(sess.CurrentPhase, target) {
		log.Warn("rejected phase transition",
			slog.String("session_id", sessionID.String()),
			slog.String("from", string(sess.CurrentPhase)),
			slog.String("to", string(target)))
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.CurrentPhase, target)
	}

	sess.CurrentPhase = target
	sess.PhaseStartedAt = time.Now().UTC()

	err = s.updateWithEvent(ctx, sess, events.TypePhaseChange, events.PhaseChangePayload{
		SessionID: sess.SessionID,
		NewPhase:  string(target),
	})
	if err != nil {
		return nil, err
	}

	key, err := PromptKeyFor(target)
	if err != nil {
		return nil, err
	}

	log.Info("session advanced",
		slog.String("session_id", sessionID.String()),
		slog.String("phase", string(target)))
	return &AdvanceResult{Session: sess, PromptKey: key}, nil
}

// HandleCheckpointFail implements CoReadingService.HandleCheckpointFail.
func (s *coReadingServiceImpl) HandleCheckpointFail(
	ctx context.Context,
	sessionID uuid.UUID,
	checkpointID *uuid.UUID,
) (*CheckpointFailResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	sess.CheckpointFailCount++

	passed := false
	err = s.updateWithEvent(ctx, sess, events.TypeCheckpointResult, events.CheckpointResultPayload{
		SessionID:    sess.SessionID,
		CheckpointID: checkpointID,
		Passed:       &passed,
	})
	if err != nil {
		return nil, err
	}

	escalate := sess.CheckpointFailCount >= checkpointEscalationThreshold
	if escalate {
		log.Warn("checkpoint fail threshold reached, escalating",
			slog.String("session_id", sessionID.String()),
			slog.Int("fail_count", sess.CheckpointFailCount))
	}

	return &CheckpointFailResult{Session: sess, ShouldEscalate: escalate}, nil
}

// HandleCheckpointPass implements CoReadingService.HandleCheckpointPass.
// A pass resets the fail counter: escalation tracks consecutive fails,
// not lifetime fails.
func (s *coReadingServiceImpl) HandleCheckpointPass(
	ctx context.Context,
	sessionID uuid.UUID,
	checkpointID uuid.UUID,
) (*domain.CoReadingContext, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	sess.CheckpointFailCount = 0

	passed := true
	err = s.updateWithEvent(ctx, sess, events.TypeCheckpointResult, events.CheckpointResultPayload{
		SessionID:    sess.SessionID,
		CheckpointID: &checkpointID,
		Passed:       &passed,
	})
	if err != nil {
		return nil, err
	}

	if s.checkpointStore != nil {
		if err := s.checkpointStore.MarkResolved(ctx, checkpointID); err != nil {
			log.Error("failed to resolve checkpoint",
				slog.String("error", err.Error()),
				slog.String("checkpoint_id", checkpointID.String()))
			return nil, &ServiceError{
				Operation: "handle_checkpoint_pass",
				Message:   "failed to resolve checkpoint",
				Err:       err,
			}
		}
	}

	log.Info("checkpoint passed",
		slog.String("session_id", sessionID.String()),
		slog.String("checkpoint_id", checkpointID.String()))
	return sess, nil
}

// Close implements CoReadingService.Close.
func (s *coReadingServiceImpl) Close(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.CoReadingContext, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	finalPhase := sess.CurrentPhase
	now := time.Now().UTC()
	sess.CurrentPhase = domain.PhaseClose
	sess.PhaseStartedAt = now

	err = s.updateWithEvent(ctx, sess, events.TypeSessionFinished, events.SessionFinishedPayload{
		SessionID:           sess.SessionID,
		FinalPhase:          string(finalPhase),
		DurationSec:         int64(now.Sub(sess.StartedAt).Seconds()),
		CheckpointFailCount: sess.CheckpointFailCount,
	})
	if err != nil {
		return nil, err
	}

	log.Info("session closed",
		slog.String("session_id", sessionID.String()),
		slog.String("final_phase", string(finalPhase)))
	return sess, nil
}

// CheckTimeouts implements CoReadingService.CheckTimeouts.
func (s *coReadingServiceImpl) CheckTimeouts(
	ctx context.Context,
	sessionID uuid.UUID,
) (*TimeoutStatus, error) {
	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &TimeoutStatus{
		PreTimedOut:    HasPreTimedOut(sess, now),
		DuringTimedOut: HasDuringTimedOut(sess, now),
	}, nil
}

// updateWithEvent persists the mutated session and its event in one
// transaction: both land or neither does. A version conflict surfaces
// as ErrConcurrentUpdate.
func (s *coReadingServiceImpl) updateWithEvent(
	ctx context.Context,
	sess *domain.CoReadingContext,
	eventType string,
	payload any,
) error {
	event, err := events.New(eventType, sess.LearnerID, &sess.SessionID, payload)
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.sessionStore.WithTx(tx).Update(ctx, sess); err != nil {
			return err
		}
		return s.eventSink.WithTx(tx).Persist(ctx, event)
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionConflict) {
			return ErrConcurrentUpdate
		}
		return &ServiceError{
			Operation: "update_session",
			Message:   "failed to persist session update",
			Err:       err,
		}
	}

	return nil
}
