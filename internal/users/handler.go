package users

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/middleware"
	"github.com/confcompanion/backend/pkg/clock"
	"github.com/confcompanion/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, token string, createdAt time.Time) (bool, error)
}

// SignRequest is the optional body for POST /sign. Timestamp is epoch millis
// of the client-side registration moment; server time is used when absent.
type SignRequest struct {
	Timestamp *int64 `json:"timestamp"`
}

// Handler handles user registration.
type Handler struct {
	store  Store
	clock  *clock.Clock
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(store Store, clk *clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, clock: clk, logger: logger}
}

// Sign handles POST /sign. The bearer token is the client-generated UUID
// identifying this installation. First registration returns 201; repeating
// it returns 409 and leaves the stored row untouched.
func (h *Handler) Sign(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		response.Unauthorized(c, "missing or invalid authorization header")
		return
	}
	if _, err := uuid.Parse(token); err != nil {
		response.BadRequest(c, "token must be a UUID")
		return
	}

	// Body is optional, but when present it must decode.
	var req SignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}

	createdAt := h.clock.Now()
	if req.Timestamp != nil {
		createdAt = time.UnixMilli(*req.Timestamp).UTC()
	}

	created, err := h.store.Create(c.Request.Context(), token, createdAt)
	if err != nil {
		h.logger.Error("register user failed", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}
	if !created {
		response.Conflict(c, "token already registered")
		return
	}
	response.Created(c, gin.H{"token": token, "created_at": createdAt})
}
