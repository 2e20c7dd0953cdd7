package timecontrol

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/pkg/clock"
	"github.com/confcompanion/backend/pkg/response"
)

// Handler exposes the overridable server clock. GET /time is public so
// clients can display the gate state; the override itself is admin-only.
type Handler struct {
	clock  *clock.Clock
	logger *zap.Logger
}

// NewHandler creates a time control handler.
func NewHandler(clk *clock.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clock: clk, logger: logger}
}

// Now handles GET /time: current server time in epoch millis, possibly the
// admin override.
func (h *Handler) Now(c *gin.Context) {
	now := h.clock.Now()
	response.OK(c, gin.H{
		"time":       now.UnixMilli(),
		"overridden": h.clock.Overridden(),
	})
}

// Set handles POST /time/:value (admin). Value is epoch millis, or the
// literal "null" to revert to the wall clock.
func (h *Handler) Set(c *gin.Context) {
	value := c.Param("value")
	if value == "null" {
		h.clock.ClearOverride()
		h.logger.Info("time override cleared")
		response.OK(c, gin.H{"overridden": false})
		return
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		response.BadRequest(c, "time must be epoch millis or \"null\"")
		return
	}
	t := time.UnixMilli(millis).UTC()
	h.clock.SetOverride(t)
	h.logger.Info("time override set", zap.Time("override", t))
	response.OK(c, gin.H{"time": t.UnixMilli(), "overridden": true})
}
