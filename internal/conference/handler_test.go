package conference

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/internal/testutil"
)

type fakeConferenceStore struct {
	sessions   map[string]models.Session
	rooms      map[int]models.Room
	speakers   map[string]models.Speaker
	categories map[int]models.Category
	relations  map[string]map[string]bool // sessionID → speakerID
	catLinks   map[string]map[int]bool    // sessionID → categoryID
	nextID     int
}

func newFakeConferenceStore() *fakeConferenceStore {
	return &fakeConferenceStore{
		sessions:   make(map[string]models.Session),
		rooms:      make(map[int]models.Room),
		speakers:   make(map[string]models.Speaker),
		categories: make(map[int]models.Category),
		relations:  make(map[string]map[string]bool),
		catLinks:   make(map[string]map[int]bool),
	}
}

func (s *fakeConferenceStore) CreateSession(_ context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = "generated"
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *fakeConferenceStore) ListSessions(_ context.Context) ([]models.Session, error) {
	var list []models.Session
	for _, v := range s.sessions {
		list = append(list, v)
	}
	return list, nil
}

// CreateRoom allocates ids above any room already present, matching the
// sequence-bump contract of the repository's explicit-id upserts.
func (s *fakeConferenceStore) CreateRoom(_ context.Context, room *models.Room) error {
	maxID := 0
	for id := range s.rooms {
		if id > maxID {
			maxID = id
		}
	}
	room.ID = maxID + 1
	s.rooms[room.ID] = *room
	return nil
}

func (s *fakeConferenceStore) ListRooms(_ context.Context) ([]models.Room, error) {
	var list []models.Room
	for _, v := range s.rooms {
		list = append(list, v)
	}
	return list, nil
}

func (s *fakeConferenceStore) CreateSpeaker(_ context.Context, sp *models.Speaker) error {
	if sp.ID == "" {
		sp.ID = "generated"
	}
	s.speakers[sp.ID] = *sp
	return nil
}

func (s *fakeConferenceStore) ListSpeakers(_ context.Context) ([]models.Speaker, error) {
	var list []models.Speaker
	for _, v := range s.speakers {
		list = append(list, v)
	}
	return list, nil
}

func (s *fakeConferenceStore) CreateCategory(_ context.Context, cat *models.Category) error {
	s.nextID++
	cat.ID = s.nextID
	s.categories[cat.ID] = *cat
	return nil
}

func (s *fakeConferenceStore) ListCategories(_ context.Context) ([]models.Category, error) {
	var list []models.Category
	for _, v := range s.categories {
		list = append(list, v)
	}
	return list, nil
}

func (s *fakeConferenceStore) AddSessionSpeaker(_ context.Context, sessionID, speakerID string) error {
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	if _, ok := s.speakers[speakerID]; !ok {
		return ErrSpeakerNotFound
	}
	if s.relations[sessionID][speakerID] {
		return ErrDuplicateRelation
	}
	if s.relations[sessionID] == nil {
		s.relations[sessionID] = make(map[string]bool)
	}
	s.relations[sessionID][speakerID] = true
	return nil
}

func (s *fakeConferenceStore) AddSessionCategory(_ context.Context, sessionID string, categoryID int) error {
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	if _, ok := s.categories[categoryID]; !ok {
		return ErrCategoryNotFound
	}
	if s.catLinks[sessionID][categoryID] {
		return ErrDuplicateRelation
	}
	if s.catLinks[sessionID] == nil {
		s.catLinks[sessionID] = make(map[int]bool)
	}
	s.catLinks[sessionID][categoryID] = true
	return nil
}

func (s *fakeConferenceStore) SessionSpeakerMap(_ context.Context) (map[string][]string, error) {
	m := make(map[string][]string)
	for sessionID, speakers := range s.relations {
		for speakerID := range speakers {
			m[sessionID] = append(m[sessionID], speakerID)
		}
	}
	return m, nil
}

func (s *fakeConferenceStore) SessionCategoryMap(_ context.Context) (map[string][]int, error) {
	m := make(map[string][]int)
	for sessionID, cats := range s.catLinks {
		for categoryID := range cats {
			m[sessionID] = append(m[sessionID], categoryID)
		}
	}
	return m, nil
}

func (s *fakeConferenceStore) ConferenceData(ctx context.Context) (*models.ConferenceData, error) {
	sessions, _ := s.ListSessions(ctx)
	speakers, _ := s.ListSpeakers(ctx)
	rooms, _ := s.ListRooms(ctx)
	categories, _ := s.ListCategories(ctx)
	speakerMap, _ := s.SessionSpeakerMap(ctx)
	categoryMap, _ := s.SessionCategoryMap(ctx)

	data := &models.ConferenceData{Speakers: speakers, Rooms: rooms, Categories: categories}
	for _, sess := range sessions {
		data.Sessions = append(data.Sessions, models.SessionWithRelations{
			Session:     sess,
			SpeakerIDs:  speakerMap[sess.ID],
			CategoryIDs: categoryMap[sess.ID],
		})
	}
	return data, nil
}

type fakeCache struct {
	data        *models.ConferenceData
	invalidated int
}

func (c *fakeCache) Get(context.Context) *models.ConferenceData      { return c.data }
func (c *fakeCache) Set(_ context.Context, d *models.ConferenceData) { c.data = d }
func (c *fakeCache) Invalidate(context.Context)                      { c.data = nil; c.invalidated++ }

func setupConferenceRouter(t *testing.T) (*fakeConferenceStore, *fakeCache, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeConferenceStore()
	cache := &fakeCache{}
	handler := NewHandler(store, cache, nil)

	r := gin.New()
	r.GET("/conference", handler.Dataset)
	r.POST("/admin/session", handler.AdminAddSession)
	r.POST("/admin/room", handler.AdminAddRoom)
	r.POST("/admin/speaker", handler.AdminAddSpeaker)
	r.POST("/admin/category", handler.AdminAddCategory)
	r.POST("/admin/sessionSpeaker", handler.AdminAddSessionSpeaker)
	r.POST("/admin/sessionCategory", handler.AdminAddSessionCategory)
	r.POST("/send/session", handler.SendAddSession)
	r.POST("/send/sessionSpeaker", handler.SendAddSessionSpeaker)
	r.GET("/get/sessionSpeakers", handler.GetSessionSpeakers)
	return store, cache, r
}

func validSessionBody(id string) gin.H {
	return gin.H{
		"id":        id,
		"title":     "Kotlin and Friends",
		"starts_at": "2024-06-01T10:00:00Z",
		"ends_at":   "2024-06-01T11:00:00Z",
	}
}

func TestAdminAddSession(t *testing.T) {
	t.Run("valid session is created", func(t *testing.T) {
		store, _, r := setupConferenceRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/admin/session", validSessionBody("S1"), nil)

		require.Equal(t, http.StatusCreated, res.Code)
		assert.Contains(t, store.sessions, "S1")
	})

	t.Run("start after end is a validation failure", func(t *testing.T) {
		_, _, r := setupConferenceRouter(t)

		body := validSessionBody("S1")
		body["starts_at"] = "2024-06-01T12:00:00Z"
		res := testutil.PerformRequest(r, http.MethodPost, "/admin/session", body, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("missing title is a validation failure", func(t *testing.T) {
		_, _, r := setupConferenceRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/admin/session",
			gin.H{"id": "S1", "starts_at": "2024-06-01T10:00:00Z", "ends_at": "2024-06-01T11:00:00Z"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestAdminAddRoomAfterSyncedRooms(t *testing.T) {
	store, _, r := setupConferenceRouter(t)
	store.rooms[7] = models.Room{ID: 7, Name: "Main Hall"}

	res := testutil.PerformRequest(r, http.MethodPost, "/admin/room",
		gin.H{"name": "Workshop"}, nil)

	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, store.rooms, 8)
}

func TestSendVariantReportsFailureInBody(t *testing.T) {
	_, _, r := setupConferenceRouter(t)

	body := validSessionBody("S1")
	body["starts_at"] = "2024-06-01T12:00:00Z" // after ends_at
	res := testutil.PerformRequest(r, http.MethodPost, "/send/session", body, nil)

	require.Equal(t, http.StatusOK, res.Code)
	var result SendResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestSessionSpeakerRelation(t *testing.T) {
	link := func(sessionID, speakerID string) gin.H {
		return gin.H{"session_id": sessionID, "speaker_id": speakerID}
	}

	t.Run("missing session side is not found", func(t *testing.T) {
		store, _, r := setupConferenceRouter(t)
		store.speakers["sp1"] = models.Speaker{ID: "sp1"}

		res := testutil.PerformRequest(r, http.MethodPost, "/admin/sessionSpeaker", link("nope", "sp1"), nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("missing speaker side is not found", func(t *testing.T) {
		store, _, r := setupConferenceRouter(t)
		store.sessions["S1"] = models.Session{ID: "S1"}

		res := testutil.PerformRequest(r, http.MethodPost, "/admin/sessionSpeaker", link("S1", "nope"), nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("duplicate pair is a conflict", func(t *testing.T) {
		store, _, r := setupConferenceRouter(t)
		store.sessions["S1"] = models.Session{ID: "S1"}
		store.speakers["sp1"] = models.Speaker{ID: "sp1"}

		res := testutil.PerformRequest(r, http.MethodPost, "/admin/sessionSpeaker", link("S1", "sp1"), nil)
		require.Equal(t, http.StatusCreated, res.Code)

		res = testutil.PerformRequest(r, http.MethodPost, "/admin/sessionSpeaker", link("S1", "sp1"), nil)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("send variant wraps the duplicate as success=false", func(t *testing.T) {
		store, _, r := setupConferenceRouter(t)
		store.sessions["S1"] = models.Session{ID: "S1"}
		store.speakers["sp1"] = models.Speaker{ID: "sp1"}
		store.relations["S1"] = map[string]bool{"sp1": true}

		res := testutil.PerformRequest(r, http.MethodPost, "/send/sessionSpeaker", link("S1", "sp1"), nil)
		require.Equal(t, http.StatusOK, res.Code)
		var result SendResult
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
		assert.False(t, result.Success)
	})
}

func TestDatasetUsesCache(t *testing.T) {
	store, cache, r := setupConferenceRouter(t)
	store.sessions["S1"] = models.Session{
		ID: "S1", Title: "Opening", Status: "accepted",
		StartsAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	res := testutil.PerformRequest(r, http.MethodGet, "/conference", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, cache.data, "dataset should be cached after a miss")

	// Mutating reference data invalidates the cache.
	res = testutil.PerformRequest(r, http.MethodPost, "/admin/session", validSessionBody("S2"), nil)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Nil(t, cache.data)
	assert.Equal(t, 1, cache.invalidated)
}
