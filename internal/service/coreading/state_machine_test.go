package coreading

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readpath/readpath-api/internal/domain"
)

func TestCanAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from domain.Phase
		to   domain.Phase
		want bool
	}{
		{"boot to pre", domain.PhaseBoot, domain.PhasePre, true},
		{"pre to during", domain.PhasePre, domain.PhaseDuring, true},
		{"during to post", domain.PhaseDuring, domain.PhasePost, true},
		{"post to close", domain.PhasePost, domain.PhaseClose, true},
		{"boot skips to during", domain.PhaseBoot, domain.PhaseDuring, false},
		{"boot skips to close", domain.PhaseBoot, domain.PhaseClose, false},
		{"backward move", domain.PhaseDuring, domain.PhasePre, false},
		{"self transition", domain.PhasePre, domain.PhasePre, false},
		{"close is terminal", domain.PhaseClose, domain.PhaseBoot, false},
		{"unknown phase", domain.Phase("LIMBO"), domain.PhasePre, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanAdvance(tt.from, tt.to))
		})
	}
}

func TestNextPhase(t *testing.T) {
	t.Parallel()

	next, ok := NextPhase(domain.PhaseBoot)
	require.True(t, ok)
	assert.Equal(t, domain.PhasePre, next)

	_, ok = NextPhase(domain.PhaseClose)
	assert.False(t, ok)

	_, ok = NextPhase(domain.Phase("LIMBO"))
	assert.False(t, ok)
}

func TestPromptKeyForEveryPhase(t *testing.T) {
	t.Parallel()

	want := map[domain.Phase]string{
		domain.PhaseBoot:   "daily-boot",
		domain.PhasePre:    "pre-choice",
		domain.PhaseDuring: "during-mark",
		domain.PhasePost:   "post-recall",
		domain.PhaseClose:  "close-script",
	}

	for phase, key := range want {
		got, err := PromptKeyFor(phase)
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}

	_, err := PromptKeyFor(domain.Phase("LIMBO"))
	assert.ErrorIs(t, err, domain.ErrInvalidPhase)
}

func timedSession(t *testing.T, phase domain.Phase, timeboxMin int) *domain.CoReadingContext {
	t.Helper()

	sess, err := domain.NewCoReadingContext(uuid.New(), uuid.New(), uuid.New(), timeboxMin)
	require.NoError(t, err)
	sess.CurrentPhase = phase
	return sess
}

func TestHasPreTimedOut(t *testing.T) {
	t.Parallel()

	sess := timedSession(t, domain.PhasePre, 20)
	start := sess.PhaseStartedAt

	// Exactly at the limit is not yet a timeout.
	assert.False(t, HasPreTimedOut(sess, start.Add(2*time.Minute)))
	assert.False(t, HasPreTimedOut(sess, start.Add(time.Minute)))
	assert.True(t, HasPreTimedOut(sess, start.Add(2*time.Minute+time.Second)))
	assert.True(t, HasPreTimedOut(sess, start.Add(3*time.Minute)))

	// Only the pre phase has this timebox.
	booted := timedSession(t, domain.PhaseBoot, 20)
	assert.False(t, HasPreTimedOut(booted, booted.PhaseStartedAt.Add(time.Hour)))
}

func TestHasDuringTimedOut(t *testing.T) {
	t.Parallel()

	sess := timedSession(t, domain.PhaseDuring, 20)
	start := sess.StartedAt

	assert.False(t, HasDuringTimedOut(sess, start.Add(20*time.Minute)))
	assert.False(t, HasDuringTimedOut(sess, start.Add(10*time.Minute)))
	assert.True(t, HasDuringTimedOut(sess, start.Add(20*time.Minute+time.Second)))

	posted := timedSession(t, domain.PhasePost, 20)
	assert.False(t, HasDuringTimedOut(posted, posted.StartedAt.Add(time.Hour)))
}
