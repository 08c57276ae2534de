package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"identifier":"alice","password":"pw"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user":{"id":"u1","username":"alice","is_admin":true},"token":"tok","expires_at":"2030-01-02T03:04:05Z"}`)
	})

	resp, err := c.Login("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.IsAdmin)
	assert.Equal(t, 2030, resp.ExpiresAt.Year())
}

func TestErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Not authenticated"}`)
	})

	_, err := c.Me()
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "[401] Not authenticated", err.Error())
}

func TestErrorWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.DeletePost("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestBearerTokenAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/search/posts", r.URL.Path)
		assert.Equal(t, "go", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"posts":[{"id":"p1","content":"go #golang","hashtags":["#golang"]}],"page":2,"page_size":20,"total":21,"has_more":false}`)
	})
	c.SetToken("tok")

	list, err := c.SearchPosts("go", 2, 0)
	require.NoError(t, err)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, []string{"#golang"}, list.Posts[0].Hashtags)
	assert.EqualValues(t, 21, list.Total)
}

func TestLogoutRedirectIsNotFollowed(t *testing.T) {
	var hits int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/elsewhere", http.StatusSeeOther)
	})

	require.NoError(t, c.Logout())
	assert.Equal(t, 1, hits)
}

func TestAdminSetActive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/admin/users/u2/deactivate", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"active":false}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user":{"id":"u2","is_admin":false,"active":false}}`)
	})

	flags, err := c.AdminSetActive("u2", false)
	require.NoError(t, err)
	assert.Equal(t, "u2", flags.ID)
	assert.False(t, flags.Active)
}

func TestUnreadCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"unread_count":3}`)
	})

	n, err := c.UnreadCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
