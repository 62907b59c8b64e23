package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readpath/readpath-api/internal/api/shared"
	"github.com/readpath/readpath-api/internal/domain"
	"github.com/readpath/readpath-api/internal/service/review"
)

// fakeReviewService returns canned responses for handler tests.
type fakeReviewService struct {
	item *domain.VocabItem
	due  []*domain.VocabItem
	err  error
}

func (f *fakeReviewService) SubmitAttempt(
	_ context.Context,
	_ uuid.UUID,
	_ review.SubmitRequest,
) (*domain.VocabItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeReviewService) GetDueItems(
	_ context.Context,
	_ uuid.UUID,
	_ int,
) ([]*domain.VocabItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.due, nil
}

// withUser injects an authenticated user ID the way the identity
// middleware does.
func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

func TestSubmitAttemptSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	item := &domain.VocabItem{
		ID:      uuid.New(),
		OwnerID: userID,
		Word:    "agua",
		Stage:   domain.StageD1,
	}
	handler := NewVocabHandler(&fakeReviewService{item: item}, nil)

	body, err := json.Marshal(SubmitAttemptRequest{Word: "Água", Result: "ok"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/vocab/attempts", bytes.NewReader(body))
	req = withUser(req, userID)
	rec := httptest.NewRecorder()

	handler.SubmitAttempt(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.VocabItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, domain.StageD1, got.Stage)
}

func TestSubmitAttemptRequiresIdentity(t *testing.T) {
	t.Parallel()

	handler := NewVocabHandler(&fakeReviewService{}, nil)

	body, err := json.Marshal(SubmitAttemptRequest{Word: "agua", Result: "ok"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/vocab/attempts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitAttempt(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitAttemptRejectsUnknownResult(t *testing.T) {
	t.Parallel()

	handler := NewVocabHandler(&fakeReviewService{}, nil)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/vocab/attempts",
		bytes.NewReader([]byte(`{"word":"agua","result":"meh"}`)),
	)
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()

	handler.SubmitAttempt(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAttemptConflictMapsTo409(t *testing.T) {
	t.Parallel()

	handler := NewVocabHandler(&fakeReviewService{err: review.ErrSubmissionConflict}, nil)

	body, err := json.Marshal(SubmitAttemptRequest{Word: "agua", Result: "ok"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/vocab/attempts", bytes.NewReader(body))
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()

	handler.SubmitAttempt(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Error, "stage")
}

func TestGetDueItemsEmptyListIsNotNull(t *testing.T) {
	t.Parallel()

	handler := NewVocabHandler(&fakeReviewService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/vocab/due", nil)
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()

	handler.GetDueItems(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestGetDueItemsRejectsNegativeLimit(t *testing.T) {
	t.Parallel()

	handler := NewVocabHandler(&fakeReviewService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/vocab/due?limit=-1", nil)
	req = withUser(req, uuid.New())
	rec := httptest.NewRecorder()

	handler.GetDueItems(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
