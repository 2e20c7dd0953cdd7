package sessionize

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/pkg/response"
)

// Handler handles the admin-triggered sync and the speaker image proxy.
type Handler struct {
	syncer *Syncer
	source Source
	logger *zap.Logger
}

// NewHandler creates a sessionize handler.
func NewHandler(syncer *Syncer, source Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{syncer: syncer, source: source, logger: logger}
}

// Sync handles POST /sessionizeSync (admin): synchronous upstream re-pull.
func (h *Handler) Sync(c *gin.Context) {
	stats, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		h.logger.Error("schedule sync failed", zap.Error(err))
		response.Internal(c, "schedule sync failed: "+err.Error())
		return
	}
	response.OK(c, stats)
}

// Image handles GET /sessionize/image/:id: proxies speaker image bytes from
// the upstream provider so clients never talk to Sessionize directly.
func (h *Handler) Image(c *gin.Context) {
	imageID := c.Param("id")
	if imageID == "" {
		response.BadRequest(c, "image id required")
		return
	}
	body, contentType, err := h.source.FetchImage(c.Request.Context(), imageID)
	if err != nil {
		h.logger.Warn("image proxy failed", zap.Error(err), zap.String("image_id", imageID))
		response.NotFound(c, "image not available")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(200)
	_, _ = io.Copy(c.Writer, body)
}
