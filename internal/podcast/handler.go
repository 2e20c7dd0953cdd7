package podcast

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Import(ctx context.Context, ch *models.PodcastChannel, categories []string, episodes []models.PodcastEpisode) (int, error)
	ListChannels(ctx context.Context) ([]models.PodcastChannelExport, error)
}

// EpisodeRequest is one episode in an import payload.
type EpisodeRequest struct {
	GUID        string  `json:"guid" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	PubDate     string  `json:"pub_date" binding:"required"`
	DurationSec int     `json:"duration_sec"`
	Explicit    bool    `json:"explicit"`
	ImageURL    *string `json:"image_url"`
	MediaURL    string  `json:"media_url" binding:"required"`
	MediaType   *string `json:"media_type"`
	MediaLength int64   `json:"media_length"`
}

// ImportRequest is the body for POST /podcast/import.
type ImportRequest struct {
	Title         string           `json:"title" binding:"required"`
	Link          string           `json:"link" binding:"required"`
	Description   string           `json:"description" binding:"required"`
	Copyright     *string          `json:"copyright"`
	Language      *string          `json:"language"`
	Author        *string          `json:"author"`
	OwnerEmail    *string          `json:"owner_email"`
	OwnerName     *string          `json:"owner_name"`
	ImageURL      *string          `json:"image_url"`
	LastBuildDate *string          `json:"last_build_date"`
	Categories    []string         `json:"categories"`
	Episodes      []EpisodeRequest `json:"episodes"`
}

// Handler handles podcast endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a podcast handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Import handles POST /podcast/import (admin). The import is a single
// transaction: a malformed episode aborts the whole channel import.
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ch := &models.PodcastChannel{
		Title:       req.Title,
		Link:        req.Link,
		Description: req.Description,
		Copyright:   req.Copyright,
		Language:    req.Language,
		Author:      req.Author,
		OwnerEmail:  req.OwnerEmail,
		OwnerName:   req.OwnerName,
		ImageURL:    req.ImageURL,
	}
	if req.LastBuildDate != nil {
		t, err := time.Parse(time.RFC3339, *req.LastBuildDate)
		if err != nil {
			response.BadRequest(c, "invalid last_build_date")
			return
		}
		ch.LastBuildDate = &t
	}

	episodes := make([]models.PodcastEpisode, 0, len(req.Episodes))
	for _, e := range req.Episodes {
		pubDate, err := time.Parse(time.RFC3339, e.PubDate)
		if err != nil {
			response.BadRequest(c, "invalid pub_date for episode "+e.GUID)
			return
		}
		episodes = append(episodes, models.PodcastEpisode{
			GUID:        e.GUID,
			Title:       e.Title,
			Description: e.Description,
			Link:        e.Link,
			PubDate:     pubDate,
			DurationSec: e.DurationSec,
			Explicit:    e.Explicit,
			ImageURL:    e.ImageURL,
			MediaURL:    e.MediaURL,
			MediaType:   e.MediaType,
			MediaLength: e.MediaLength,
		})
	}

	channelID, err := h.store.Import(c.Request.Context(), ch, req.Categories, episodes)
	if err != nil {
		h.logger.Error("podcast import failed", zap.Error(err), zap.String("channel", req.Title))
		response.Internal(c, "podcast import failed: "+err.Error())
		return
	}
	response.Created(c, gin.H{"channel_id": channelID})
}

// All handles GET /podcast/all: denormalized channel export.
func (h *Handler) All(c *gin.Context) {
	list, err := h.store.ListChannels(c.Request.Context())
	if err != nil {
		h.logger.Error("podcast export failed", zap.Error(err))
		response.Internal(c, "failed to load podcasts")
		return
	}
	if list == nil {
		list = []models.PodcastChannelExport{}
	}
	response.OK(c, list)
}
