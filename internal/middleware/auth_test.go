package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/confcompanion/backend/internal/testutil"
	"github.com/confcompanion/backend/pkg/response"
)

type fakeTokenStore struct {
	tokens map[string]bool
	err    error
}

func (s *fakeTokenStore) Exists(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.tokens[token], nil
}

func setupAuthRouter(store TokenStore, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user", UserAuth(store), func(c *gin.Context) {
		response.OK(c, gin.H{"token": c.MustGet(ContextUserToken)})
	})
	r.GET("/admin", AdminAuth(secret), func(c *gin.Context) {
		response.OK(c, gin.H{"ok": true})
	})
	return r
}

func TestUserAuth(t *testing.T) {
	store := &fakeTokenStore{tokens: map[string]bool{"known-token": true}}
	r := setupAuthRouter(store, "s3cret")

	t.Run("registered token passes", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/user", nil, map[string]string{
			"Authorization": "Bearer known-token",
		})
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/user", nil, map[string]string{
			"Authorization": "Bearer stranger",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/user", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/user", nil, map[string]string{
			"Authorization": "Basic abc",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("store failure is an internal error, not a silent pass", func(t *testing.T) {
		broken := setupAuthRouter(&fakeTokenStore{err: errors.New("db down")}, "s3cret")
		res := testutil.PerformRequest(broken, http.MethodGet, "/user", nil, map[string]string{
			"Authorization": "Bearer known-token",
		})
		assert.Equal(t, http.StatusInternalServerError, res.Code)
	})
}

func TestAdminAuth(t *testing.T) {
	r := setupAuthRouter(&fakeTokenStore{}, "s3cret")

	t.Run("correct secret passes", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/admin", nil, map[string]string{
			"Authorization": "Bearer s3cret",
		})
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/admin", nil, map[string]string{
			"Authorization": "Bearer wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("user token does not open admin routes", func(t *testing.T) {
		res := testutil.PerformRequest(r, http.MethodGet, "/admin", nil, map[string]string{
			"Authorization": "Bearer known-token",
		})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}
