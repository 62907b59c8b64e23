package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/events"
	"github.com/readpath/readpath-api/internal/store"
)

// alertWindow bounds how far back the alert feeds reach. Older signals
// age out of the dashboard entirely.
const alertWindow = 7 * 24 * time.Hour

// StatsStore implements the store.StatsStore interface using a
// PostgreSQL database as the storage backend. Aggregates are computed
// on demand from sessions, vocabulary, and the event stream; nothing is
// materialized.
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a new PostgreSQL implementation of the
// StatsStore interface.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

var _ store.StatsStore = (*StatsStore)(nil)

// GetSnapshot implements store.StatsStore.GetSnapshot
func (s *StatsStore) GetSnapshot(
	ctx context.Context,
	learnerID uuid.UUID,
) (*domain.DashboardSnapshot, error) {
	snapshot := &domain.DashboardSnapshot{LearnerID: learnerID}

	if err := s.fillSessionAggregates(ctx, learnerID, snapshot); err != nil {
		return nil, err
	}

	if err := s.fillVocabAggregates(ctx, learnerID, snapshot); err != nil {
		return nil, err
	}

	if err := s.fillComprehension(ctx, learnerID, snapshot); err != nil {
		return nil, err
	}

	streak, err := s.computeStreak(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	snapshot.StreakDays = streak

	if err := s.fillAlertFeeds(ctx, learnerID, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *StatsStore) fillSessionAggregates(
	ctx context.Context,
	learnerID uuid.UUID,
	snapshot *domain.DashboardSnapshot,
) error {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM((payload->>'duration_sec')::bigint), 0)
		FROM learning_events
		WHERE user_id = $1 AND type = $2
	`

	var count int
	var durationSec int64
	err := s.db.QueryRowContext(ctx, query, learnerID, events.TypeSessionFinished).
		Scan(&count, &durationSec)
	if err != nil {
		s.logger.Error("failed to aggregate sessions",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	snapshot.SessionsCompleted = count
	snapshot.MinutesRead = int(durationSec / 60)
	return nil
}

func (s *StatsStore) fillVocabAggregates(
	ctx context.Context,
	learnerID uuid.UUID,
	snapshot *domain.DashboardSnapshot,
) error {
	query := `SELECT COUNT(*) FROM vocab_items WHERE owner_id = $1 AND stage = $2`

	var mastered int
	err := s.db.QueryRowContext(ctx, query, learnerID, string(domain.StageMastered)).
		Scan(&mastered)
	if err != nil {
		return MapError(err)
	}

	snapshot.WordsMastered = mastered
	return nil
}

func (s *StatsStore) fillComprehension(
	ctx context.Context,
	learnerID uuid.UUID,
	snapshot *domain.DashboardSnapshot,
) error {
	// Pass rate over checkpoint results. A learner with no results yet
	// reads as zero rather than NULL.
	query := `
		SELECT COALESCE(AVG(CASE WHEN payload->>'passed' = 'true' THEN 1.0 ELSE 0.0 END), 0)
		FROM learning_events
		WHERE user_id = $1 AND type = $2
	`

	err := s.db.QueryRowContext(ctx, query, learnerID, events.TypeCheckpointResult).
		Scan(&snapshot.ComprehensionAvg)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// computeStreak counts consecutive calendar days, ending today or
// yesterday, on which the learner finished at least one session.
func (s *StatsStore) computeStreak(ctx context.Context, learnerID uuid.UUID) (int, error) {
	query := `
		SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date
		FROM learning_events
		WHERE user_id = $1 AND type = $2
		ORDER BY 1 DESC
	`

	rows, err := s.db.QueryContext(ctx, query, learnerID, events.TypeSessionFinished)
	if err != nil {
		return 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("failed to scan streak day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating streak days: %w", err)
	}

	if len(days) == 0 {
		return 0, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	expected := today
	if !days[0].Equal(today) {
		// A streak survives until a full day is missed.
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak, nil
}

func (s *StatsStore) fillAlertFeeds(
	ctx context.Context,
	learnerID uuid.UUID,
	snapshot *domain.DashboardSnapshot,
) error {
	since := time.Now().UTC().Add(-alertWindow)

	doubts, err := s.recentDoubts(ctx, learnerID, since)
	if err != nil {
		return err
	}

	for _, d := range doubts {
		alert := domain.Alert{
			Type:     "DOUBT",
			Severity: "INFO",
			Message:  d.message,
		}
		if d.kind == "question" {
			// Explicit questions reach the classroom as help requests.
			alert.Type = "HELP_REQUEST"
			snapshot.HelpRequests = append(snapshot.HelpRequests, alert)
		}
		snapshot.Triggers = append(snapshot.Triggers, alert)
	}

	fails, err := s.recentCheckpointFails(ctx, learnerID, since)
	if err != nil {
		return err
	}

	for _, msg := range fails {
		snapshot.Flags = append(snapshot.Flags, domain.Alert{
			Type:     "CHECKPOINT_FAIL",
			Severity: "WARN",
			Message:  msg,
		})
	}

	return nil
}

type doubtRow struct {
	kind    string
	message string
}

func (s *StatsStore) recentDoubts(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]doubtRow, error) {
	query := `
		SELECT payload->>'kind', id
		FROM learning_events
		WHERE user_id = $1 AND type = $2 AND created_at >= $3
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, learnerID, events.TypeDoubtRaised, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var doubts []doubtRow
	for rows.Next() {
		var kind string
		var id uuid.UUID
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("failed to scan doubt row: %w", err)
		}
		doubts = append(doubts, doubtRow{
			kind:    kind,
			message: fmt.Sprintf("learner raised a %s (event %s)", kind, id),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doubt rows: %w", err)
	}

	return doubts, nil
}

func (s *StatsStore) recentCheckpointFails(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]string, error) {
	query := `
		SELECT COALESCE(payload->>'checkpoint_id', '')
		FROM learning_events
		WHERE user_id = $1 AND type = $2 AND created_at >= $3
		  AND payload->>'passed' = 'false'
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, learnerID, events.TypeCheckpointResult, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var fails []string
	for rows.Next() {
		var checkpointID string
		if err := rows.Scan(&checkpointID); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint fail row: %w", err)
		}
		fails = append(fails, fmt.Sprintf("checkpoint %s failed", checkpointID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint fail rows: %w", err)
	}

	return fails, nil
}
