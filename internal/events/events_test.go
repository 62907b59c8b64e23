package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesPayloadSchema(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	userID := uuid.New()

	event, err := New(TypePhaseChange, userID, &sessionID, PhaseChangePayload{
		SessionID: sessionID,
		NewPhase:  "PRE",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypePhaseChange, event.Type)

	var decoded PhaseChangePayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "PRE", decoded.NewPhase)
}

func TestNewRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := New("mystery_event", uuid.New(), nil, map[string]string{"a": "b"})
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestNewRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()

	// Missing required NewPhase.
	_, err := New(TypePhaseChange, uuid.New(), &sessionID, PhaseChangePayload{
		SessionID: sessionID,
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// Phase outside the enum.
	_, err = New(TypePhaseChange, uuid.New(), &sessionID, PhaseChangePayload{
		SessionID: sessionID,
		NewPhase:  "LIMBO",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCheckpointResultRequiresExplicitPassed(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()

	// An absent passed field must not default to false.
	_, err := New(TypeCheckpointResult, uuid.New(), &sessionID, CheckpointResultPayload{
		SessionID: sessionID,
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	passed := false
	event, err := New(TypeCheckpointResult, uuid.New(), &sessionID, CheckpointResultPayload{
		SessionID: sessionID,
		Passed:    &passed,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeCheckpointResult, event.Type)
}

func TestInMemorySinkPersistAndFilter(t *testing.T) {
	t.Parallel()

	sink := NewInMemorySink(nil)
	sessionID := uuid.New()
	userID := uuid.New()

	phase, err := New(TypePhaseChange, userID, &sessionID, PhaseChangePayload{
		SessionID: sessionID,
		NewPhase:  "PRE",
	})
	require.NoError(t, err)
	require.NoError(t, sink.Persist(context.Background(), phase))

	doubt, err := New(TypeDoubtRaised, userID, nil, DoubtRaisedPayload{Kind: "question"})
	require.NoError(t, err)
	require.NoError(t, sink.Persist(context.Background(), doubt))

	assert.Len(t, sink.Events(), 2)
	assert.Len(t, sink.OfType(TypePhaseChange), 1)
	assert.Len(t, sink.OfType(TypeDoubtRaised), 1)
}

func TestInMemorySinkRejectsInvalidEvent(t *testing.T) {
	t.Parallel()

	sink := NewInMemorySink(nil)
	err := sink.Persist(context.Background(), &Event{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Type:    "mystery_event",
		Payload: []byte(`{}`),
	})
	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.Empty(t, sink.Events())
}
