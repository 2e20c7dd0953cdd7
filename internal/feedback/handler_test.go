package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confcompanion/backend/internal/middleware"
	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/internal/testutil"
	"github.com/confcompanion/backend/pkg/clock"
)

type fakeFeedbackStore struct {
	rows       map[string]models.Feedback // token+sessionID → feedback
	upsertErr  error
	listResult []models.Feedback
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{rows: make(map[string]models.Feedback)}
}

func (s *fakeFeedbackStore) Upsert(_ context.Context, f *models.Feedback) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.rows[f.UserToken+"|"+f.SessionID] = *f
	return nil
}

func (s *fakeFeedbackStore) ListAll(_ context.Context) ([]models.Feedback, error) {
	return s.listResult, nil
}

const testToken = "9d2b6c1a-5e4f-4a3b-8c7d-6e5f4a3b2c1d"

func setupFeedbackRouter(t *testing.T) (*fakeFeedbackStore, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeFeedbackStore()
	handler := NewHandler(store, clock.New(), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserToken, testToken) })
	r.POST("/feedback", handler.Submit)
	r.GET("/feedback/summary", handler.Summary)
	return store, r
}

func TestSubmitFeedback(t *testing.T) {
	t.Run("valid submission is stored", func(t *testing.T) {
		store, r := setupFeedbackRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/feedback",
			gin.H{"session_id": "S1", "value": "great talk"}, nil)

		require.Equal(t, http.StatusOK, res.Code)
		f := store.rows[testToken+"|S1"]
		assert.Equal(t, "great talk", f.Value)
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		store, r := setupFeedbackRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/feedback",
			gin.H{"session_id": "S1", "value": "first"}, nil)
		require.Equal(t, http.StatusOK, res.Code)

		res = testutil.PerformRequest(r, http.MethodPost, "/feedback",
			gin.H{"session_id": "S1", "value": "second"}, nil)
		require.Equal(t, http.StatusOK, res.Code)

		require.Len(t, store.rows, 1)
		assert.Equal(t, "second", store.rows[testToken+"|S1"].Value)
	})

	t.Run("refused write is surfaced as success=false, not a fault", func(t *testing.T) {
		store, r := setupFeedbackRouter(t)
		store.upsertErr = &pgconn.PgError{Code: "23503"} // unknown session id

		res := testutil.PerformRequest(r, http.MethodPost, "/feedback",
			gin.H{"session_id": "missing", "value": "text"}, nil)

		require.Equal(t, http.StatusOK, res.Code)
		var body map[string]bool
		env := testutil.Decode(res)
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.False(t, body["success"])
	})

	t.Run("oversized feedback is rejected", func(t *testing.T) {
		_, r := setupFeedbackRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/feedback",
			gin.H{"session_id": "S1", "value": strings.Repeat("x", maxValueLen+1)}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestFeedbackSummary(t *testing.T) {
	store, r := setupFeedbackRouter(t)
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.listResult = []models.Feedback{
		{UserToken: "u1", SessionID: "S1", Value: "a", UpdatedAt: ts},
		{UserToken: "u2", SessionID: "S1", Value: "b", UpdatedAt: ts},
		{UserToken: "u1", SessionID: "S2", Value: "c", UpdatedAt: ts},
	}

	res := testutil.PerformRequest(r, http.MethodGet, "/feedback/summary", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var summaries []SessionSummary
	env := testutil.Decode(res)
	require.NoError(t, json.Unmarshal(env.Data, &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "S1", summaries[0].SessionID)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, "S2", summaries[1].SessionID)
	assert.Equal(t, 1, summaries[1].Count)
}
