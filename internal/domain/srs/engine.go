// Package srs implements the spaced-repetition stage ladder: pure,
// deterministic functions that compute stage transitions and due dates
// for vocabulary items from attempt outcomes. The package has no
// dependencies beyond the domain entities and performs no I/O.
package srs

import (
	"errors"
	"time"

	"github.com/readpath/readpath-api/internal/domain"
)

// Common errors
var (
	ErrUnknownStage  = errors.New("stage not present in interval table")
	ErrUnknownResult = errors.New("attempt result not present in transition table")
)

// stageIntervals maps each ladder stage to its review interval in days.
// Intervals are deliberately finite: even mastered items resurface after
// 180 days rather than never.
var stageIntervals = map[domain.Stage]int{
	domain.StageNew:      0,
	domain.StageD1:       1,
	domain.StageD3:       3,
	domain.StageD7:       7,
	domain.StageD14:      14,
	domain.StageD30:      30,
	domain.StageD60:      60,
	domain.StageMastered: 180,
}

// masteryDeltas maps each attempt result to its mastery score adjustment.
// The caller clamps the running score to [0,100].
var masteryDeltas = map[domain.AttemptResult]int{
	domain.AttemptResultFail: -20,
	domain.AttemptResultHard: -5,
	domain.AttemptResultOK:   +10,
	domain.AttemptResultEasy: +15,
}

// Transition is the result of applying one attempt outcome to a stage.
type Transition struct {
	NewStage       domain.Stage
	DueDate        time.Time
	DaysToAdd      int
	LapseIncrement int
}

// CalculateNextDue computes the stage transition and next due date for a
// review attempt. The result is fully determined by (currentStage,
// result, now): no randomness, no history beyond the current stage.
//
// Transition rules:
//   - fail: unconditional reset to D1, due in 1 day, lapse count +1.
//     This is the only path that increments lapses.
//   - hard: regress one ladder step, floored at D1.
//   - ok:   progress one ladder step, capped at MASTERED.
//   - easy: progress two ladder steps, capped at MASTERED.
//
// Unknown stages or results are hard failures, not silent defaults: a
// value missing from the tables means a missing enum case.
func CalculateNextDue(
	currentStage domain.Stage,
	result domain.AttemptResult,
	now time.Time,
) (Transition, error) {
	idx := currentStage.LadderIndex()
	if idx < 0 {
		return Transition{}, ErrUnknownStage
	}

	var newStage domain.Stage
	lapseIncrement := 0

	switch result {
	case domain.AttemptResultFail:
		newStage = domain.StageD1
		lapseIncrement = 1

	case domain.AttemptResultHard:
		// One step down, never below D1. NEW regresses "up" to D1 as
		// well: D1 is the floor of the failure path.
		d1 := domain.StageD1.LadderIndex()
		target := idx - 1
		if target < d1 {
			target = d1
		}
		newStage = domain.StageLadder[target]

	case domain.AttemptResultOK:
		newStage = advance(idx, 1)

	case domain.AttemptResultEasy:
		newStage = advance(idx, 2)

	default:
		return Transition{}, ErrUnknownResult
	}

	days, err := GetStageInterval(newStage)
	if err != nil {
		return Transition{}, err
	}

	return Transition{
		NewStage:       newStage,
		DueDate:        now.AddDate(0, 0, days),
		DaysToAdd:      days,
		LapseIncrement: lapseIncrement,
	}, nil
}

// advance moves up the ladder by steps, capped at MASTERED.
func advance(idx, steps int) domain.Stage {
	target := idx + steps
	if target > len(domain.StageLadder)-1 {
		target = len(domain.StageLadder) - 1
	}
	return domain.StageLadder[target]
}

// GetStageInterval returns the review interval in days for a stage.
func GetStageInterval(stage domain.Stage) (int, error) {
	days, ok := stageIntervals[stage]
	if !ok {
		return 0, ErrUnknownStage
	}
	return days, nil
}

// CalculateMasteryDelta returns the mastery score adjustment for an
// attempt result. The caller is responsible for clamping the running
// score to the valid range.
func CalculateMasteryDelta(result domain.AttemptResult) (int, error) {
	delta, ok := masteryDeltas[result]
	if !ok {
		return 0, ErrUnknownResult
	}
	return delta, nil
}
