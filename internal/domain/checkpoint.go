package domain

import "github.com/google/uuid"

// Checkpoint is a pending comprehension gate for a learner on a piece of
// content. Pending checkpoints always block downstream phase progression,
// regardless of how other candidates score.
type Checkpoint struct {
	ID                   uuid.UUID `json:"id"`
	ContentID            uuid.UUID `json:"content_id"`
	SchoolingLevelTarget string    `json:"schooling_level_target"`
}
