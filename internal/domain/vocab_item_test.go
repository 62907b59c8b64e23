package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWord(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"lower-cases", "Reading", "reading"},
		{"trims whitespace", "  book \n", "book"},
		{"strips diacritics", "Água", "agua"},
		{"strips combined marks", "naïveté", "naivete"},
		{"keeps non-latin scripts", "ことば", "ことば"},
		{"keeps voiced kana marks", "がっこう", "がっこう"},
		{"keeps non-latin accents", "καφές", "καφές"},
		{"mixed script strips latin marks only", "caféことば", "cafeことば"},
		{"empty stays empty", "   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeWord(tc.input))
		})
	}
}

func TestNewVocabItemNormalizesAndStartsNew(t *testing.T) {
	t.Parallel()

	item, err := NewVocabItem(uuid.New(), "Émigré", "fr")
	require.NoError(t, err)

	assert.Equal(t, "emigre", item.Word)
	assert.Equal(t, StageNew, item.Stage)
	assert.Equal(t, 0, item.LapseCount)
	assert.False(t, item.DueAt.After(item.CreatedAt), "new items are due immediately")
}

func TestNewVocabItemRejectsEmptyWord(t *testing.T) {
	t.Parallel()

	_, err := NewVocabItem(uuid.New(), "   ", "en")
	assert.ErrorIs(t, err, ErrEmptyWord)
}

func TestClampMasteryScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ClampMasteryScore(-15))
	assert.Equal(t, 100, ClampMasteryScore(140))
	assert.Equal(t, 55, ClampMasteryScore(55))
}

func TestStageLadderIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, StageNew.LadderIndex())
	assert.Equal(t, 7, StageMastered.LadderIndex())
	assert.Equal(t, -1, Stage("D90").LadderIndex())
	assert.False(t, Stage("D90").IsValid())
}
