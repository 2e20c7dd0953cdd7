package podcast

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confcompanion/backend/internal/models"
	"github.com/confcompanion/backend/internal/testutil"
)

type fakePodcastStore struct {
	channels  map[string]int // title|link → id
	episodes  map[string]models.PodcastEpisode
	nextID    int
	importErr error
}

func newFakePodcastStore() *fakePodcastStore {
	return &fakePodcastStore{
		channels: make(map[string]int),
		episodes: make(map[string]models.PodcastEpisode),
	}
}

func (s *fakePodcastStore) Import(_ context.Context, ch *models.PodcastChannel, _ []string, episodes []models.PodcastEpisode) (int, error) {
	if s.importErr != nil {
		return 0, s.importErr
	}
	key := ch.Title + "|" + ch.Link
	id, ok := s.channels[key]
	if !ok {
		s.nextID++
		id = s.nextID
		s.channels[key] = id
	}
	for _, e := range episodes {
		e.ChannelID = id
		s.episodes[e.GUID] = e
	}
	return id, nil
}

func (s *fakePodcastStore) ListChannels(_ context.Context) ([]models.PodcastChannelExport, error) {
	byChannel := make(map[int]*models.PodcastChannelExport)
	for key, id := range s.channels {
		byChannel[id] = &models.PodcastChannelExport{
			PodcastChannel: models.PodcastChannel{ID: id, Title: key},
		}
	}
	for _, e := range s.episodes {
		exp := byChannel[e.ChannelID]
		exp.Episodes = append(exp.Episodes, e)
		exp.EpisodeCount++
	}
	var list []models.PodcastChannelExport
	for _, exp := range byChannel {
		list = append(list, *exp)
	}
	return list, nil
}

func setupPodcastRouter(t *testing.T) (*fakePodcastStore, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakePodcastStore()
	handler := NewHandler(store, nil)

	r := gin.New()
	r.POST("/podcast/import", handler.Import)
	r.GET("/podcast/all", handler.All)
	return store, r
}

func importBody() gin.H {
	return gin.H{
		"title":       "Talking Kotlin",
		"link":        "https://talkingkotlin.com",
		"description": "A podcast about Kotlin",
		"categories":  []string{"Technology"},
		"episodes": []gin.H{
			{
				"guid":      "ep-1",
				"title":     "Coroutines",
				"pub_date":  "2024-05-01T08:00:00Z",
				"media_url": "https://cdn.example.com/ep1.mp3",
			},
			{
				"guid":      "ep-2",
				"title":     "Multiplatform",
				"pub_date":  "2024-05-08T08:00:00Z",
				"media_url": "https://cdn.example.com/ep2.mp3",
			},
		},
	}
}

func TestPodcastImport(t *testing.T) {
	t.Run("import returns the channel id", func(t *testing.T) {
		store, r := setupPodcastRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/podcast/import", importBody(), nil)

		require.Equal(t, http.StatusCreated, res.Code)
		var body map[string]int
		env := testutil.Decode(res)
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.Equal(t, 1, body["channel_id"])
		assert.Len(t, store.episodes, 2)
	})

	t.Run("re-import does not duplicate episodes", func(t *testing.T) {
		store, r := setupPodcastRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/podcast/import", importBody(), nil)
		require.Equal(t, http.StatusCreated, res.Code)
		res = testutil.PerformRequest(r, http.MethodPost, "/podcast/import", importBody(), nil)
		require.Equal(t, http.StatusCreated, res.Code)

		assert.Len(t, store.channels, 1)
		assert.Len(t, store.episodes, 2)
	})

	t.Run("export reflects episode count", func(t *testing.T) {
		_, r := setupPodcastRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/podcast/import", importBody(), nil)
		require.Equal(t, http.StatusCreated, res.Code)

		res = testutil.PerformRequest(r, http.MethodGet, "/podcast/all", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var channels []models.PodcastChannelExport
		env := testutil.Decode(res)
		require.NoError(t, json.Unmarshal(env.Data, &channels))
		require.Len(t, channels, 1)
		assert.Equal(t, 2, channels[0].EpisodeCount)
	})

	t.Run("bad pub_date aborts the whole import", func(t *testing.T) {
		store, r := setupPodcastRouter(t)

		body := importBody()
		body["episodes"] = []gin.H{
			{"guid": "ep-1", "title": "Bad", "pub_date": "yesterday", "media_url": "https://x/1.mp3"},
		}
		res := testutil.PerformRequest(r, http.MethodPost, "/podcast/import", body, nil)

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Empty(t, store.channels)
	})

	t.Run("missing channel fields are rejected", func(t *testing.T) {
		_, r := setupPodcastRouter(t)

		res := testutil.PerformRequest(r, http.MethodPost, "/podcast/import",
			gin.H{"title": "No link"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}
