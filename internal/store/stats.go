package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// StatsStore assembles raw dashboard aggregates for one learner.
// The snapshot it returns is unprojected; privacy filtering happens in
// the dashboard service.
type StatsStore interface {
	// GetSnapshot computes the learner's aggregate metrics and alert
	// feeds from stored sessions, vocabulary, and events.
	GetSnapshot(ctx context.Context, learnerID uuid.UUID) (*domain.DashboardSnapshot, error)
}
