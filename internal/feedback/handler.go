package feedback

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/middleware"
	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/pkg/clock"
	"github.com/confcompanion/backend/pkg/database"
	"github.com/confcompanion/backend/pkg/response"
)

// maxValueLen bounds the free-text feedback length.
const maxValueLen = 4096

// Store is the persistence surface the handler needs.
type Store interface {
	Upsert(ctx context.Context, f *models.Feedback) error
	ListAll(ctx context.Context) ([]models.Feedback, error)
}

// SubmitRequest is the body for POST /feedback.
type SubmitRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Value     string `json:"value" binding:"required"`
	Timestamp *int64 `json:"timestamp"`
}

// SessionSummary aggregates all feedback for one session.
type SessionSummary struct {
	SessionID string            `json:"session_id"`
	Count     int               `json:"count"`
	Entries   []models.Feedback `json:"entries"`
}

// Handler handles feedback endpoints.
type Handler struct {
	store  Store
	clock  *clock.Clock
	logger *zap.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(store Store, clk *clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, clock: clk, logger: logger}
}

// Submit handles POST /feedback. A refused write (constraint violation, e.g.
// an unknown session id tripping the foreign key) is reported as
// success=false in a 200 body so the client treats resubmission as safe.
func (h *Handler) Submit(c *gin.Context) {
	token := c.MustGet(middleware.ContextUserToken).(string)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len(req.Value) > maxValueLen {
		response.BadRequest(c, "feedback too long")
		return
	}

	ts := h.clock.Now()
	if req.Timestamp != nil {
		ts = time.UnixMilli(*req.Timestamp).UTC()
	}
	f := &models.Feedback{
		UserToken: token,
		SessionID: req.SessionID,
		Value:     req.Value,
		UpdatedAt: ts,
	}
	if err := h.store.Upsert(c.Request.Context(), f); err != nil {
		if database.IsForeignKeyViolation(err) || database.IsUniqueViolation(err) || database.IsCheckViolation(err) {
			response.OK(c, gin.H{"success": false})
			return
		}
		h.logger.Error("upsert feedback failed", zap.Error(err), zap.String("session_id", req.SessionID))
		response.Internal(c, "failed to save feedback")
		return
	}
	response.OK(c, gin.H{"success": true})
}

// Summary handles GET /feedback/summary (admin): all feedback grouped per
// session with counts.
func (h *Handler) Summary(c *gin.Context) {
	list, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("feedback summary failed", zap.Error(err))
		response.Internal(c, "failed to load feedback")
		return
	}

	bySession := make(map[string]*SessionSummary)
	var order []string
	for _, f := range list {
		s, ok := bySession[f.SessionID]
		if !ok {
			s = &SessionSummary{SessionID: f.SessionID}
			bySession[f.SessionID] = s
			order = append(order, f.SessionID)
		}
		s.Count++
		s.Entries = append(s.Entries, f)
	}
	summaries := make([]SessionSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *bySession[id])
	}
	response.OK(c, summaries)
}
