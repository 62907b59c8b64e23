// Package privacy derives field-restricted dashboard views from raw
// aggregate snapshots. Two independent policies exist, one for family
// (household) viewers and one for classroom (educator) viewers; each mode
// maps to a fixed allow-list of output fields. Projection is pure and
// total: the same snapshot and mode always yield the same view.
//
// No mode ever exposes learner-authored free text: alert entries cross a
// projection with only their type and severity.
package privacy

import (
	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/domain"
)

// SanitizedAlert is an alert entry with its free-text message removed.
type SanitizedAlert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

// FamilyView is the projected dashboard for household viewers.
// Triggers is populated only under AGGREGATED_PLUS_TRIGGERS.
type FamilyView struct {
	LearnerID         uuid.UUID        `json:"learner_id"`
	MinutesRead       int              `json:"minutes_read"`
	SessionsCompleted int              `json:"sessions_completed"`
	WordsMastered     int              `json:"words_mastered"`
	ComprehensionAvg  float64          `json:"comprehension_avg"`
	StreakDays        int              `json:"streak_days"`
	Triggers          []SanitizedAlert `json:"triggers,omitempty"`
}

// ClassroomView is the projected dashboard for classroom viewers.
// HelpRequests and Flags are populated only under their respective
// "plus" modes; the two never appear together.
type ClassroomView struct {
	LearnerID         uuid.UUID        `json:"learner_id"`
	MinutesRead       int              `json:"minutes_read"`
	SessionsCompleted int              `json:"sessions_completed"`
	WordsMastered     int              `json:"words_mastered"`
	ComprehensionAvg  float64          `json:"comprehension_avg"`
	StreakDays        int              `json:"streak_days"`
	HelpRequests      []SanitizedAlert `json:"help_requests,omitempty"`
	Flags             []SanitizedAlert `json:"flags,omitempty"`
}

// ProjectFamily derives the family view for the given mode.
// An unknown mode is a hard failure, never a silent fallback to the most
// restrictive mode: it indicates a missing enum case.
func ProjectFamily(
	snapshot *domain.DashboardSnapshot,
	mode domain.FamilyPrivacyMode,
) (*FamilyView, error) {
	view := &FamilyView{
		LearnerID:         snapshot.LearnerID,
		MinutesRead:       snapshot.MinutesRead,
		SessionsCompleted: snapshot.SessionsCompleted,
		WordsMastered:     snapshot.WordsMastered,
		ComprehensionAvg:  snapshot.ComprehensionAvg,
		StreakDays:        snapshot.StreakDays,
	}

	switch mode {
	case domain.FamilyAggregatedOnly:
		// Basic aggregate set only.
	case domain.FamilyAggregatedPlusTriggers:
		view.Triggers = sanitizeAlerts(snapshot.Triggers)
	default:
		return nil, domain.ErrUnknownPrivacyMode
	}

	return view, nil
}

// ProjectClassroom derives the classroom view for the given mode.
func ProjectClassroom(
	snapshot *domain.DashboardSnapshot,
	mode domain.ClassroomPrivacyMode,
) (*ClassroomView, error) {
	view := &ClassroomView{
		LearnerID:         snapshot.LearnerID,
		MinutesRead:       snapshot.MinutesRead,
		SessionsCompleted: snapshot.SessionsCompleted,
		WordsMastered:     snapshot.WordsMastered,
		ComprehensionAvg:  snapshot.ComprehensionAvg,
		StreakDays:        snapshot.StreakDays,
	}

	switch mode {
	case domain.ClassroomAggregatedOnly:
		// Basic aggregate set only.
	case domain.ClassroomAggregatedPlusHelpRequests:
		view.HelpRequests = sanitizeAlerts(snapshot.HelpRequests)
	case domain.ClassroomAggregatedPlusFlags:
		view.Flags = sanitizeAlerts(snapshot.Flags)
	default:
		return nil, domain.ErrUnknownPrivacyMode
	}

	return view, nil
}

// sanitizeAlerts strips free-text messages, retaining type and severity.
func sanitizeAlerts(alerts []domain.Alert) []SanitizedAlert {
	if len(alerts) == 0 {
		return nil
	}

	sanitized := make([]SanitizedAlert, 0, len(alerts))
	for _, a := range alerts {
		sanitized = append(sanitized, SanitizedAlert{
			Type:     a.Type,
			Severity: a.Severity,
		})
	}
	return sanitized
}
