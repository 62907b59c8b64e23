package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// CheckpointProvider is the collaborator contract for pending-checkpoint
// lookups. A pending checkpoint gates progress: its presence always
// blocks downstream phase progression.
type CheckpointProvider interface {
	// GetPendingCheckpoints returns the learner's unresolved checkpoints,
	// optionally filtered to one piece of content (uuid.Nil means any).
	GetPendingCheckpoints(ctx context.Context, userID, contentID uuid.UUID) ([]*domain.Checkpoint, error)
}

// CheckpointStore extends the provider contract with resolution, used
// when a checkpoint is passed during a session.
type CheckpointStore interface {
	CheckpointProvider

	// MarkResolved marks a checkpoint as no longer pending.
	// Returns ErrCheckpointNotFound if the checkpoint does not exist.
	MarkResolved(ctx context.Context, checkpointID uuid.UUID) error
}
