package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/admin"
	"github.com/zfogg/murmur/internal/testutil"
)

func (s *APITestSuite) TestAdminRoutesRequireAdmin() {
	member := testutil.CreateProfile(s.T(), s.db)

	w := s.request(http.MethodGet, "/admin/stats", nil, s.token(member))
	s.assertError(w, http.StatusForbidden, "Forbidden")
}

func (s *APITestSuite) TestAdminStatsAndUsers() {
	root := testutil.CreateProfile(s.T(), s.db, testutil.Admin())
	member := testutil.CreateProfile(s.T(), s.db, testutil.WithUsername("plain_member"))
	testutil.CreatePost(s.T(), s.db, member, "hello")
	token := s.token(root)

	w := s.request(http.MethodGet, "/admin/stats", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var stats admin.Stats
	s.decode(w, &stats)
	s.EqualValues(2, stats.TotalUsers)
	s.EqualValues(1, stats.TotalPosts)

	w = s.request(http.MethodGet, "/admin/users?search=plain", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"total":1`)
	s.Contains(w.Body.String(), member.Email)

	w = s.request(http.MethodGet, "/admin/users/"+member.ID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPatch, "/admin/users/"+member.ID, gin.H{"is_admin": true}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(testutil.Reload(s.T(), s.db, member).IsAdmin)

	w = s.request(http.MethodPatch, "/admin/users/"+root.ID, gin.H{"is_admin": false}, token)
	s.assertError(w, http.StatusBadRequest, "Cannot modify own admin status")
}

func (s *APITestSuite) TestAdminDeactivateBlocksWrites() {
	root := testutil.CreateProfile(s.T(), s.db, testutil.Admin())
	member := testutil.CreateProfile(s.T(), s.db)
	token := s.token(root)

	w := s.request(http.MethodPost, "/admin/users/"+member.ID+"/deactivate", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"active":false`)

	w = s.request(http.MethodPost, "/posts", gin.H{"content": "still here?"}, s.token(member))
	s.assertError(w, http.StatusForbidden, "Account deactivated")

	w = s.request(http.MethodPost, "/admin/users/"+member.ID+"/deactivate", gin.H{"active": true}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(testutil.Reload(s.T(), s.db, member).Active)

	w = s.request(http.MethodPost, "/admin/users/"+root.ID+"/deactivate", nil, token)
	s.assertError(w, http.StatusBadRequest, "Cannot modify self")
}

func (s *APITestSuite) TestAdminRemovesContent() {
	root := testutil.CreateProfile(s.T(), s.db, testutil.Admin())
	member := testutil.CreateProfile(s.T(), s.db)
	token := s.token(root)

	created := s.createPost(s.token(member), "rule breaking")

	w := s.request(http.MethodGet, "/admin/posts?author="+member.ID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "rule breaking")

	w = s.request(http.MethodDelete, "/admin/posts/"+created.PostID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"success":true}`, w.Body.String())
	s.Equal(0, testutil.Reload(s.T(), s.db, member).PostsCount)

	w = s.request(http.MethodDelete, "/admin/posts/"+created.PostID, nil, token)
	s.assertError(w, http.StatusNotFound, "Not found")

	w = s.request(http.MethodGet, "/admin/logs", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"total":1`)
}
