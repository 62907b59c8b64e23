package privacy

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readpath/readpath-api/internal/domain"
)

func fullSnapshot() *domain.DashboardSnapshot {
	return &domain.DashboardSnapshot{
		LearnerID:         uuid.New(),
		MinutesRead:       245,
		SessionsCompleted: 12,
		WordsMastered:     38,
		ComprehensionAvg:  0.82,
		StreakDays:        6,
		Triggers: []domain.Alert{
			{Type: "doubt_spike", Severity: "high", Message: "asked: what does 'ephemeral' mean here?"},
		},
		HelpRequests: []domain.Alert{
			{Type: "help_request", Severity: "medium", Message: "I don't get chapter 3 at all"},
		},
		Flags: []domain.Alert{
			{Type: "low_mastery", Severity: "low", Message: "struggling with: sycophant"},
		},
	}
}

func TestFamilyAggregatedOnlyExposesOnlyBasicSet(t *testing.T) {
	t.Parallel()

	view, err := ProjectFamily(fullSnapshot(), domain.FamilyAggregatedOnly)
	require.NoError(t, err)

	assert.Nil(t, view.Triggers)

	// The serialized view must not leak anything beyond the basic
	// aggregate fields, no matter what the snapshot carried.
	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	allowed := map[string]bool{
		"learner_id": true, "minutes_read": true, "sessions_completed": true,
		"words_mastered": true, "comprehension_avg": true, "streak_days": true,
	}
	for name := range fields {
		assert.True(t, allowed[name], "unexpected field %q in AGGREGATED_ONLY view", name)
	}
}

func TestClassroomAggregatedOnlyExposesOnlyBasicSet(t *testing.T) {
	t.Parallel()

	view, err := ProjectClassroom(fullSnapshot(), domain.ClassroomAggregatedOnly)
	require.NoError(t, err)

	assert.Nil(t, view.HelpRequests)
	assert.Nil(t, view.Flags)
}

func TestFamilyTriggersAreSanitized(t *testing.T) {
	t.Parallel()

	snap := fullSnapshot()
	view, err := ProjectFamily(snap, domain.FamilyAggregatedPlusTriggers)
	require.NoError(t, err)

	require.Len(t, view.Triggers, 1)
	assert.Equal(t, "doubt_spike", view.Triggers[0].Type)
	assert.Equal(t, "high", view.Triggers[0].Severity)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "ephemeral"),
		"learner-authored text must never cross a projection")
}

func TestClassroomPlusModesAreIndependent(t *testing.T) {
	t.Parallel()

	snap := fullSnapshot()

	help, err := ProjectClassroom(snap, domain.ClassroomAggregatedPlusHelpRequests)
	require.NoError(t, err)
	assert.Len(t, help.HelpRequests, 1)
	assert.Nil(t, help.Flags)

	flags, err := ProjectClassroom(snap, domain.ClassroomAggregatedPlusFlags)
	require.NoError(t, err)
	assert.Nil(t, flags.HelpRequests)
	require.Len(t, flags.Flags, 1)
	assert.Equal(t, "low_mastery", flags.Flags[0].Type)

	raw, err := json.Marshal(flags)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "sycophant"))
}

func TestProjectionIsDeterministic(t *testing.T) {
	t.Parallel()

	snap := fullSnapshot()
	first, err := ProjectFamily(snap, domain.FamilyAggregatedPlusTriggers)
	require.NoError(t, err)
	second, err := ProjectFamily(snap, domain.FamilyAggregatedPlusTriggers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUnknownModesAreRejected(t *testing.T) {
	t.Parallel()

	_, err := ProjectFamily(fullSnapshot(), domain.FamilyPrivacyMode("EVERYTHING"))
	assert.ErrorIs(t, err, domain.ErrUnknownPrivacyMode)

	_, err = ProjectClassroom(fullSnapshot(), domain.ClassroomPrivacyMode("EVERYTHING"))
	assert.ErrorIs(t, err, domain.ErrUnknownPrivacyMode)
}
