package votes

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/conference"
	"github.com/confcompanion/backend/internal/middleware"
	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/pkg/clock"
	"github.com/confcompanion/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Upsert(ctx context.Context, v *models.Vote) error
	ListByUser(ctx context.Context, token string) ([]models.Vote, error)
	ListAll(ctx context.Context) ([]models.Vote, error)
}

// SessionGetter resolves session ids against the conference dataset.
type SessionGetter interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
}

// CastRequest is the body for POST /vote. Score decoding rejects anything
// outside {-1, 0, 1}. Timestamp is the client-side mutation time in epoch
// millis; server time is used when absent.
type CastRequest struct {
	SessionID string       `json:"session_id" binding:"required"`
	Score     models.Score `json:"score"`
	Timestamp *int64       `json:"timestamp"`
}

// Handler handles voting endpoints.
type Handler struct {
	store    Store
	sessions SessionGetter
	clock    *clock.Clock
	logger   *zap.Logger
}

// NewHandler creates a votes handler.
func NewHandler(store Store, sessions SessionGetter, clk *clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, sessions: sessions, clock: clk, logger: logger}
}

// List handles GET /vote: the caller's votes.
func (h *Handler) List(c *gin.Context) {
	token := c.MustGet(middleware.ContextUserToken).(string)
	list, err := h.store.ListByUser(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("list votes failed", zap.Error(err))
		response.Internal(c, "failed to list votes")
		return
	}
	if list == nil {
		list = []models.Vote{}
	}
	response.OK(c, list)
}

// Cast handles POST /vote. Voting is gated on the session's start time
// against the overridable server clock: before the session starts the vote
// is answered with 425 and nothing is written.
func (h *Handler) Cast(c *gin.Context) {
	token := c.MustGet(middleware.ContextUserToken).(string)

	var req CastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	session, err := h.sessions.GetSession(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, conference.ErrSessionNotFound) {
			response.NotFound(c, "session not found: "+req.SessionID)
			return
		}
		h.logger.Error("resolve session failed", zap.Error(err), zap.String("session_id", req.SessionID))
		response.Internal(c, "failed to resolve session")
		return
	}

	now := h.clock.Now()
	if now.Before(session.StartsAt) {
		response.TooEarly(c, "voting opens when the session starts, come back later")
		return
	}

	ts := now
	if req.Timestamp != nil {
		ts = time.UnixMilli(*req.Timestamp).UTC()
	}
	vote := &models.Vote{
		UserToken: token,
		SessionID: req.SessionID,
		Score:     req.Score,
		UpdatedAt: ts,
	}
	if err := h.store.Upsert(c.Request.Context(), vote); err != nil {
		h.logger.Error("upsert vote failed", zap.Error(err), zap.String("session_id", req.SessionID))
		response.Internal(c, "failed to save vote")
		return
	}
	response.OK(c, gin.H{"session_id": vote.SessionID, "score": vote.Score})
}

// ListAll handles GET /vote/all (admin): full vote table for export.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("dump votes failed", zap.Error(err))
		response.Internal(c, "failed to dump votes")
		return
	}
	if list == nil {
		list = []models.Vote{}
	}
	response.OK(c, list)
}
