package conference

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/pkg/database"
	"github.com/confcompanion/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	CreateSession(ctx context.Context, s *models.Session) error
	ListSessions(ctx context.Context) ([]models.Session, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateSpeaker(ctx context.Context, s *models.Speaker) error
	ListSpeakers(ctx context.Context) ([]models.Speaker, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	AddSessionSpeaker(ctx context.Context, sessionID, speakerID string) error
	AddSessionCategory(ctx context.Context, sessionID string, categoryID int) error
	SessionSpeakerMap(ctx context.Context) (map[string][]string, error)
	SessionCategoryMap(ctx context.Context) (map[string][]int, error)
	ConferenceData(ctx context.Context) (*models.ConferenceData, error)
}

// DatasetCache caches the denormalized dataset. May be nil.
type DatasetCache interface {
	Get(ctx context.Context) *models.ConferenceData
	Set(ctx context.Context, data *models.ConferenceData)
	Invalidate(ctx context.Context)
}

// Handler handles conference reference-data endpoints.
//
// Writes come in two flavours with identical semantics but different failure
// surfaces: /admin/* propagates faults as HTTP error codes, while /send/*
// always answers 200 with a {success,message} body so a partially scripted
// bulk upload keeps going.
type Handler struct {
	store  Store
	cache  DatasetCache
	logger *zap.Logger
}

// NewHandler creates a conference handler.
func NewHandler(store Store, cache DatasetCache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, cache: cache, logger: logger}
}

// SessionRequest is the body for session writes.
type SessionRequest struct {
	ID               string  `json:"id"`
	Title            string  `json:"title" binding:"required"`
	Description      *string `json:"description"`
	StartsAt         string  `json:"starts_at" binding:"required"`
	EndsAt           string  `json:"ends_at" binding:"required"`
	RoomID           *int    `json:"room_id"`
	IsServiceSession bool    `json:"is_service_session"`
	IsPlenumSession  bool    `json:"is_plenum_session"`
	Status           string  `json:"status"`
}

// RoomRequest is the body for room writes.
type RoomRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// SpeakerRequest is the body for speaker writes.
type SpeakerRequest struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Bio            *string `json:"bio"`
	Tagline        *string `json:"tagline"`
	ProfilePicture *string `json:"profile_picture"`
	IsTopSpeaker   bool    `json:"is_top_speaker"`
}

// CategoryRequest is the body for category writes.
type CategoryRequest struct {
	Title     string  `json:"title" binding:"required"`
	SortOrder int     `json:"sort_order"`
	Type      *string `json:"type"`
}

// RelationRequest is the body for session↔speaker and session↔category links.
type RelationRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	SpeakerID  string `json:"speaker_id"`
	CategoryID int    `json:"category_id"`
}

// SendResult is the /send/* response body: failures are reported, not fatal.
type SendResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

// Dataset handles GET /conference: the full denormalized dataset, cached.
func (h *Handler) Dataset(c *gin.Context) {
	ctx := c.Request.Context()
	if h.cache != nil {
		if data := h.cache.Get(ctx); data != nil {
			response.OK(c, data)
			return
		}
	}
	data, err := h.store.ConferenceData(ctx)
	if err != nil {
		h.logger.Error("build conference dataset failed", zap.Error(err))
		response.Internal(c, "failed to load conference data")
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, data)
	}
	response.OK(c, data)
}

// GetSessions handles GET {/get,/admin}/sessions.
func (h *Handler) GetSessions(c *gin.Context) {
	list, err := h.store.ListSessions(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	response.OK(c, list)
}

// GetRooms handles GET {/get,/admin}/rooms.
func (h *Handler) GetRooms(c *gin.Context) {
	list, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list rooms")
		return
	}
	response.OK(c, list)
}

// GetSpeakers handles GET {/get,/admin}/speakers.
func (h *Handler) GetSpeakers(c *gin.Context) {
	list, err := h.store.ListSpeakers(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list speakers")
		return
	}
	response.OK(c, list)
}

// GetCategories handles GET {/get,/admin}/categories.
func (h *Handler) GetCategories(c *gin.Context) {
	list, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// GetSessionSpeakers handles GET {/get,/admin}/sessionSpeakers.
func (h *Handler) GetSessionSpeakers(c *gin.Context) {
	m, err := h.store.SessionSpeakerMap(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to map session speakers")
		return
	}
	response.OK(c, m)
}

// GetSessionCategories handles GET {/get,/admin}/sessionCategories.
func (h *Handler) GetSessionCategories(c *gin.Context) {
	m, err := h.store.SessionCategoryMap(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to map session categories")
		return
	}
	response.OK(c, m)
}

func (h *Handler) addSession(c *gin.Context) (interface{}, error) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, errValidation(errors.New("invalid starts_at"))
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, errValidation(errors.New("invalid ends_at"))
	}
	if startsAt.After(endsAt) {
		return nil, errValidation(errors.New("starts_at must not be after ends_at"))
	}
	s := &models.Session{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		RoomID:           req.RoomID,
		IsServiceSession: req.IsServiceSession,
		IsPlenumSession:  req.IsPlenumSession,
		Status:           req.Status,
	}
	if err := h.store.CreateSession(c.Request.Context(), s); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return s.ID, nil
}

func (h *Handler) addRoom(c *gin.Context) (interface{}, error) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	room := &models.Room{Name: req.Name, SortOrder: req.SortOrder}
	if err := h.store.CreateRoom(c.Request.Context(), room); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return room.ID, nil
}

func (h *Handler) addSpeaker(c *gin.Context) (interface{}, error) {
	var req SpeakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	s := &models.Speaker{
		ID:             req.ID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		Tagline:        req.Tagline,
		ProfilePicture: req.ProfilePicture,
		IsTopSpeaker:   req.IsTopSpeaker,
	}
	if err := h.store.CreateSpeaker(c.Request.Context(), s); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return s.ID, nil
}

func (h *Handler) addCategory(c *gin.Context) (interface{}, error) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	cat := &models.Category{Title: req.Title, SortOrder: req.SortOrder, Type: req.Type}
	if err := h.store.CreateCategory(c.Request.Context(), cat); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return cat.ID, nil
}

func (h *Handler) addSessionSpeaker(c *gin.Context) (interface{}, error) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	if req.SpeakerID == "" {
		return nil, errValidation(errors.New("speaker_id is required"))
	}
	if err := h.store.AddSessionSpeaker(c.Request.Context(), req.SessionID, req.SpeakerID); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return nil, nil
}

func (h *Handler) addSessionCategory(c *gin.Context) (interface{}, error) {
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errValidation(err)
	}
	if req.CategoryID == 0 {
		return nil, errValidation(errors.New("category_id is required"))
	}
	if err := h.store.AddSessionCategory(c.Request.Context(), req.SessionID, req.CategoryID); err != nil {
		return nil, err
	}
	h.invalidate(c)
	return nil, nil
}

/// AdminAddSession handles POST /admin/session: faults become error codes.
func (h *Handler) AdminAddSession(c *gin.Context) { h.admin(c, h.addSession) }

// AdminAddRoom handles POST /admin/room.
func (h *Handler) AdminAddRoom(c *gin.Context) { h.admin(c, h.addRoom) }

// AdminAddSpeaker handles POST /admin/speaker.
func (h *Handler) AdminAddSpeaker(c *gin.Context) { h.admin(c, h.addSpeaker) }

// AdminAddCategory handles POST /admin/category.
func (h *Handler) AdminAddCategory(c *gin.Context) { h.admin(c, h.addCategory) }

// AdminAddSessionSpeaker handles POST /admin/sessionSpeaker.
func (h *Handler) AdminAddSessionSpeaker(c *gin.Context) { h.admin(c, h.addSessionSpeaker) }

// AdminAddSessionCategory handles POST /admin/sessionCategory.
func (h *Handler) AdminAddSessionCategory(c *gin.Context) { h.admin(c, h.addSessionCategory) }

/// SendAddSession handles POST /send/session: failure is reported in the body.
func (h *Handler) SendAddSession(c *gin.Context) { h.send(c, h.addSession) }

// SendAddRoom handles POST /send/room.
func (h *Handler) SendAddRoom(c *gin.Context) { h.send(c, h.addRoom) }

// SendAddSpeaker handles POST /send/speaker.
func (h *Handler) SendAddSpeaker(c *gin.Context) { h.send(c, h.addSpeaker) }

// SendAddCategory handles POST /send/category.
func (h *Handler) SendAddCategory(c *gin.Context) { h.send(c, h.addCategory) }

// SendAddSessionSpeaker handles POST /send/sessionSpeaker.
func (h *Handler) SendAddSessionSpeaker(c *gin.Context) { h.send(c, h.addSessionSpeaker) }

// SendAddSessionCategory handles POST /send/sessionCategory.
func (h *Handler) SendAddSessionCategory(c *gin.Context) { h.send(c, h.addSessionCategory) }

func (h *Handler) admin(c *gin.Context, op func(*gin.Context) (interface{}, error)) {
	id, err := op(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

func (h *Handler) send(c *gin.Context, op func(*gin.Context) (interface{}, error)) {
	id, err := op(c)
	if err != nil {
		response.OK(c, SendResult{Success: false, Message: err.Error()})
		return
	}
	response.OK(c, SendResult{Success: true, ID: id})
}

func (h *Handler) invalidate(c *gin.Context) {
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context())
	}
}

// validationError marks a payload problem detected before any write.
type validationError struct{ err error }

func (e validationError) Error() string { return e.err.Error() }

func errValidation(err error) error { return validationError{err: err} }

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve validationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Error())
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSpeakerNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrRoomNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrDuplicateRelation), database.IsUniqueViolation(err):
		response.Conflict(c, err.Error())
	case database.IsForeignKeyViolation(err):
		response.NotFound(c, "referenced entity does not exist")
	case database.IsCheckViolation(err):
		response.BadRequest(c, "constraint violated: "+err.Error())
	default:
		h.logger.Error("reference data write failed", zap.Error(err))
		response.Internal(c, "unexpected failure")
	}
}
