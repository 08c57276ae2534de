package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
)

type fakeTokens map[string]string

func (f fakeTokens) ValidateToken(token string) (*auth.Claims, error) {
	if id, ok := f[token]; ok {
		return &auth.Claims{UserID: id}, nil
	}
	return nil, errors.New("invalid token")
}

type fakeProfiles map[string]*models.Profile

func (f fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

type brokenProfiles struct{}

func (brokenProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return nil, errors.New("connection reset")
}

var tokens = fakeTokens{
	"admin-token":  "admin",
	"member-token": "member",
	"ghost-token":  "ghost",
}

var profiles = fakeProfiles{
	"admin":  {ID: "admin", IsAdmin: true, Active: true},
	"member": {ID: "member", Active: true},
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())

	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": util.OptionalUserID(c)})
	}
	router.GET("/private", RequireAuth(tokens), whoami)
	router.GET("/public", OptionalAuth(tokens), whoami)
	router.GET("/admin", RequireAuth(tokens), RequireAdmin(profiles), whoami)
	router.GET("/admin-unguarded", RequireAdmin(profiles), whoami)
	router.GET("/admin-broken", RequireAuth(tokens), RequireAdmin(brokenProfiles{}), whoami)
	return router
}

func do(router *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRequireAuth(t *testing.T) {
	router := newRouter()

	w := do(router, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, map[string]string{"error": "Not authenticated"}, body(t, w))

	w = do(router, "/private", bearer("forged"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, "/private", bearer("member-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member", body(t, w)["user_id"])

	w = do(router, "/private", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "member-token"})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	router := newRouter()

	w := do(router, "/public", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", body(t, w)["user_id"])

	w = do(router, "/public", bearer("forged"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", body(t, w)["user_id"])

	w = do(router, "/public", bearer("member-token"))
	assert.Equal(t, "member", body(t, w)["user_id"])
}

func TestRequireAdmin(t *testing.T) {
	router := newRouter()

	cases := []struct {
		name   string
		mutate func(*http.Request)
		status int
		errMsg string
	}{
		{"no session", nil, http.StatusUnauthorized, "Not authenticated"},
		{"unknown profile", bearer("ghost-token"), http.StatusUnauthorized, "Profile not found"},
		{"not admin", bearer("member-token"), http.StatusForbidden, "Forbidden"},
		{"admin", bearer("admin-token"), http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(router, "/admin", tc.mutate)
			assert.Equal(t, tc.status, w.Code)
			if tc.errMsg != "" {
				assert.Equal(t, map[string]string{"error": tc.errMsg}, body(t, w))
			}
		})
	}
}

func TestRequireAdminWithoutSessionResponds(t *testing.T) {
	w := do(newRouter(), "/admin-unguarded", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, map[string]string{"error": "Not authenticated"}, body(t, w))
}

func TestRequireAdminStoreFailureIsServerError(t *testing.T) {
	w := do(newRouter(), "/admin-broken", bearer("admin-token"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]string{"error": "Server error"}, body(t, w))
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newRouter()

	w := do(router, "/public", func(r *http.Request) { r.Header.Set(RequestIDHeader, "req-123") })
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = do(router, "/public", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = do(router, "/public", func(r *http.Request) { r.Header.Set(RequestIDHeader, strings.Repeat("x", 500)) })
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
