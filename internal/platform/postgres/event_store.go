package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/events"
	"github.com/readpath/readpath-api/internal/store"
)

// EventStore implements the events.Sink interface using a PostgreSQL
// database, and additionally serves the orchestrator's doubt-count
// signal from the same table.
type EventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewEventStore creates a new PostgreSQL-backed event sink.
func NewEventStore(db store.DBTX, logger *slog.Logger) *EventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &EventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

var _ events.TxSink = (*EventStore)(nil)

// WithTx returns a sink bound to the provided transaction, so event
// emission can share a transaction with the state change it records.
func (s *EventStore) WithTx(tx *sql.Tx) events.Sink {
	return &EventStore{
		db:     tx,
		logger: s.logger,
	}
}

// Persist implements events.Sink.Persist. The event is validated against
// its payload schema before any write; an invalid event is rejected with
// no row written.
func (s *EventStore) Persist(ctx context.Context, event *events.Event) error {
	if err := events.Validate(event); err != nil {
		return err
	}

	query := `
		INSERT INTO learning_events (id, session_id, type, payload, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.SessionID,
		event.Type,
		[]byte(event.Payload),
		event.UserID,
		event.CreatedAt,
	)
	if err != nil {
		s.logger.Error("failed to persist event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// CountRecentDoubts returns the number of doubt_raised events the user
// produced within the trailing window. The orchestrator derives the
// learner's flow state from this count.
func (s *EventStore) CountRecentDoubts(
	ctx context.Context,
	userID uuid.UUID,
	window time.Duration,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM learning_events
		WHERE user_id = $1 AND type = $2 AND created_at >= $3
	`

	since := time.Now().UTC().Add(-window)

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, events.TypeDoubtRaised, since).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
