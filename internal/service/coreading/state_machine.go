// Package coreading implements the guided co-reading session: a strict
// linear state machine over the session phases, the educator prompt for
// each phase, phase timeout detection, and checkpoint escalation.
package coreading

import (
	"time"

	"github.com/readpath/readpath-api/internal/domain"
)

// Phase timeout rules. The pre-reading choice is timeboxed at a fixed
// two minutes from the phase start; the reading phase is timeboxed by
// the session's own timebox, measured from session start.
const (
	preTimeout = 2 * time.Minute

	// checkpointEscalationThreshold is the fail count at which a session
	// escalates to the educator instead of retrying.
	checkpointEscalationThreshold = 2
)

// promptKeys maps each phase to the educator script shown on entry.
var promptKeys = map[domain.Phase]string{
	domain.PhaseBoot:   "daily-boot",
	domain.PhasePre:    "pre-choice",
	domain.PhaseDuring: "during-mark",
	domain.PhasePost:   "post-recall",
	domain.PhaseClose:  "close-script",
}

// PromptKeyFor returns the educator prompt key for a phase.
func PromptKeyFor(phase domain.Phase) (string, error) {
	key, ok := promptKeys[phase]
	if !ok {
		return "", domain.ErrInvalidPhase
	}
	return key, nil
}

// NextPhase returns the immediate successor of a phase. The second
// return is false for the terminal phase and for unknown values.
func NextPhase(phase domain.Phase) (domain.Phase, bool) {
	for i, p := range domain.PhaseOrder {
		if p == phase {
			if i == len(domain.PhaseOrder)-1 {
				return "", false
			}
			return domain.PhaseOrder[i+1], true
		}
	}
	return "", false
}

// CanAdvance reports whether to is the immediate successor of from.
// Phases never move backward and never skip; this is the only legal
// forward step.
func CanAdvance(from, to domain.Phase) bool {
	next, ok := NextPhase(from)
	return ok && next == to
}

// HasPreTimedOut reports whether a session sitting in the pre-reading
// phase has exceeded the choice timebox. The comparison is strict:
// exactly at the limit is not yet a timeout.
func HasPreTimedOut(sess *domain.CoReadingContext, now time.Time) bool {
	if sess.CurrentPhase != domain.PhasePre {
		return false
	}
	return now.Sub(sess.PhaseStartedAt) > preTimeout
}

// HasDuringTimedOut reports whether a session in the reading phase has
// exceeded its timebox, measured from session start.
func HasDuringTimedOut(sess *domain.CoReadingContext, now time.Time) bool {
	if sess.CurrentPhase != domain.PhaseDuring {
		return false
	}
	timebox := time.Duration(sess.TimeboxMin) * time.Minute
	return now.Sub(sess.StartedAt) > timebox
}
