package domain

import "github.com/google/uuid"

// FamilyPrivacyMode controls which dashboard fields a family (household)
// view may contain.
type FamilyPrivacyMode string

// Family privacy modes.
const (
	FamilyAggregatedOnly         FamilyPrivacyMode = "AGGREGATED_ONLY"
	FamilyAggregatedPlusTriggers FamilyPrivacyMode = "AGGREGATED_PLUS_TRIGGERS"
)

// ClassroomPrivacyMode controls which dashboard fields a classroom
// (educator) view may contain.
type ClassroomPrivacyMode string

// Classroom privacy modes.
const (
	ClassroomAggregatedOnly             ClassroomPrivacyMode = "AGGREGATED_ONLY"
	ClassroomAggregatedPlusHelpRequests ClassroomPrivacyMode = "AGGREGATED_PLUS_HELP_REQUESTS"
	ClassroomAggregatedPlusFlags        ClassroomPrivacyMode = "AGGREGATED_PLUS_FLAGS"
)

// Alert is one entry in a dashboard alert feed. Message may contain
// learner-authored free text and must never cross a privacy projection
// verbatim; projections retain only Type and Severity.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DashboardSnapshot holds the raw aggregate metrics for one learner plus
// the alert feeds the privacy projector may selectively expose. It has no
// independent lifecycle; it is computed on demand.
type DashboardSnapshot struct {
	LearnerID         uuid.UUID `json:"learner_id"`
	MinutesRead       int       `json:"minutes_read"`
	SessionsCompleted int       `json:"sessions_completed"`
	WordsMastered     int       `json:"words_mastered"`
	ComprehensionAvg  float64   `json:"comprehension_avg"`
	StreakDays        int       `json:"streak_days"`

	// Triggers feed the family view; HelpRequests and Flags feed the
	// classroom view. All three are stripped of free text on projection.
	Triggers     []Alert `json:"triggers,omitempty"`
	HelpRequests []Alert `json:"help_requests,omitempty"`
	Flags        []Alert `json:"flags,omitempty"`
}
