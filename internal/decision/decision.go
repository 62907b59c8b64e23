// Package decision defines the boundary to the external decision engine:
// the collaborator that may suggest an intervention for a learner based
// on enriched activity signals. The engine's internal logic is out of
// scope; this package only fixes the contract the orchestrator expects.
package decision

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Actions returned by the engine. Anything other than ActionNoOp is
// mapped to an intervention candidate by the orchestrator.
const (
	// ActionNoOp is the engine's no-op sentinel: contribute nothing.
	ActionNoOp = "NO_OP"
)

// Reasons the engine may attach to a decision. The orchestrator maps
// these to candidate priorities; unrecognized reasons get a low default.
const (
	ReasonDoubtSpike     = "DOUBT_SPIKE"
	ReasonCheckpointFail = "CHECKPOINT_FAIL"
	ReasonLowMastery     = "LOW_MASTERY"
	ReasonPostSummary    = "POST_SUMMARY"
)

// Flow states derived from recent doubt activity.
const (
	FlowStateFlow    = "FLOW"
	FlowStateLowFlow = "LOW_FLOW"
)

// Signals are the enriched inputs the orchestrator hands to the engine.
type Signals struct {
	DoubtsInWindow     int    `json:"doubts_in_window"`
	FlowState          string `json:"flow_state"`
	CheckpointFailures int    `json:"checkpoint_failures"`
	ExplicitUserAction string `json:"explicit_user_action,omitempty"`
	SummaryQuality     *int   `json:"summary_quality,omitempty"`
}

// Input is one decision request.
type Input struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	ContentID uuid.UUID `json:"content_id"`
	Signals   Signals   `json:"signals"`
}

// Decision is the engine's suggestion. Action == ActionNoOp means the
// engine has nothing to contribute for this request.
type Decision struct {
	Action  string          `json:"action"`
	Channel string          `json:"channel,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IsNoOp reports whether the decision is the no-op sentinel.
func (d *Decision) IsNoOp() bool {
	return d == nil || d.Action == ActionNoOp
}

// Engine is the decision-engine collaborator contract.
type Engine interface {
	// MakeDecision asks the engine for an intervention suggestion.
	// Implementations should bound the call with their own deadline; the
	// orchestrator treats any error as "contributed zero candidates".
	MakeDecision(ctx context.Context, input Input) (*Decision, error)
}
