package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Stage represents a position on the spaced-repetition ladder.
// Stages form a strictly ordered ladder; items move along it only via
// the transition function in the srs package.
type Stage string

// The stage ladder, in order. Mastered items still resurface on a long
// interval; the ladder deliberately has no "never again" stage.
const (
	StageNew      Stage = "NEW"
	StageD1       Stage = "D1"
	StageD3       Stage = "D3"
	StageD7       Stage = "D7"
	StageD14      Stage = "D14"
	StageD30      Stage = "D30"
	StageD60      Stage = "D60"
	StageMastered Stage = "MASTERED"
)

// StageLadder is the ordered sequence of stages, index 0..7.
var StageLadder = []Stage{
	StageNew,
	StageD1,
	StageD3,
	StageD7,
	StageD14,
	StageD30,
	StageD60,
	StageMastered,
}

// LadderIndex returns the position of the stage on the ladder, or -1 if
// the stage is not a valid ladder value.
func (s Stage) LadderIndex() int {
	for i, stage := range StageLadder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether the stage is on the ladder.
func (s Stage) IsValid() bool {
	return s.LadderIndex() >= 0
}

// AttemptResult represents the outcome of one review attempt.
type AttemptResult string

// Possible attempt result values.
const (
	AttemptResultFail AttemptResult = "fail"
	AttemptResultHard AttemptResult = "hard"
	AttemptResultOK   AttemptResult = "ok"
	AttemptResultEasy AttemptResult = "easy"
)

// IsValid reports whether the attempt result is one of the known values.
func (r AttemptResult) IsValid() bool {
	switch r {
	case AttemptResultFail, AttemptResultHard, AttemptResultOK, AttemptResultEasy:
		return true
	default:
		return false
	}
}

// Mastery score bounds. The running score is always clamped to this range.
const (
	MasteryScoreMin = 0
	MasteryScoreMax = 100

	// masteryScoreInitial is the neutral starting score for a freshly
	// encountered word.
	masteryScoreInitial = 50
)

// VocabItem is one memorized unit for one learner. The word is stored
// normalized (lower-cased, diacritics stripped) so the same surface form
// always maps to the same item. Items are never hard-deleted.
type VocabItem struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Word         string    `json:"word"`
	Language     string    `json:"language"`
	Stage        Stage     `json:"stage"`
	DueAt        time.Time `json:"due_at"`
	LapseCount   int       `json:"lapse_count"`
	MasteryScore int       `json:"mastery_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewVocabItem creates an item for the first encounter of a word.
// The word is normalized before storage; a new item starts at NEW and is
// due immediately.
func NewVocabItem(ownerID uuid.UUID, word, language string) (*VocabItem, error) {
	normalized := NormalizeWord(word)

	now := time.Now().UTC()
	item := &VocabItem{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Word:         normalized,
		Language:     language,
		Stage:        StageNew,
		DueAt:        now,
		LapseCount:   0,
		MasteryScore: masteryScoreInitial,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the VocabItem has valid data.
// Returns an error if any field fails validation.
func (v *VocabItem) Validate() error {
	if v.ID == uuid.Nil || v.OwnerID == uuid.Nil {
		return ErrInvalidID
	}

	if v.Word == "" {
		return ErrEmptyWord
	}

	if !v.Stage.IsValid() {
		return ErrInvalidStage
	}

	if v.LapseCount < 0 {
		return ErrValidation
	}

	if v.MasteryScore < MasteryScoreMin || v.MasteryScore > MasteryScoreMax {
		return ErrValidation
	}

	return nil
}

// ClampMasteryScore bounds a running mastery score to the valid range.
func ClampMasteryScore(score int) int {
	if score < MasteryScoreMin {
		return MasteryScoreMin
	}
	if score > MasteryScoreMax {
		return MasteryScoreMax
	}
	return score
}

// stripLatinMarks removes combining marks attached to Latin base
// characters in a decomposed string. Marks on other scripts carry
// meaning and stay: the voiced-sound mark in "ことば" distinguishes it
// from "ことは", while the acute in "água" is only spelling.
func stripLatinMarks(decomposed string) string {
	var b strings.Builder
	b.Grow(len(decomposed))

	latinBase := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if latinBase {
				continue
			}
		} else {
			latinBase = unicode.Is(unicode.Latin, r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeWord returns the canonical stored form of a word: trimmed,
// lower-cased, Latin diacritics stripped. Non-Latin scripts round-trip
// unchanged so that "Água" and "agua" resolve to the same item without
// collapsing distinct words in other scripts.
func NormalizeWord(word string) string {
	trimmed := strings.TrimSpace(strings.ToLower(word))
	return norm.NFC.String(stripLatinMarks(norm.NFD.String(trimmed)))
}
