package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func (s *APITestSuite) TestMeAndUpdateMe() {
	user := testutil.CreateProfile(s.T(), s.db)
	token := s.token(user)

	w := s.request(http.MethodGet, "/users/me", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), user.Username)

	w = s.request(http.MethodPatch, "/users/me", gin.H{"bio": "gopher", "privacy": "followers_only"}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	reloaded := testutil.Reload(s.T(), s.db, user)
	s.Equal("gopher", reloaded.Bio)
	s.Equal(models.PrivacyFollowersOnly, reloaded.Privacy)

	w = s.request(http.MethodPatch, "/users/me", gin.H{"website": "ftp://example.com"}, token)
	s.assertError(w, http.StatusBadRequest, "Website must start with http(s)://")

	w = s.request(http.MethodPatch, "/users/me", gin.H{"bio": strings.Repeat("x", 161)}, token)
	s.assertError(w, http.StatusBadRequest, "Bio too long")

	w = s.request(http.MethodPatch, "/users/me", gin.H{}, token)
	s.assertError(w, http.StatusBadRequest, "No fields to update")
}

func (s *APITestSuite) TestProfileVisibility() {
	private := testutil.CreateProfile(s.T(), s.db, testutil.WithPrivacy(models.PrivacyPrivate))
	circle := testutil.CreateProfile(s.T(), s.db, testutil.WithPrivacy(models.PrivacyFollowersOnly))
	follower := testutil.CreateProfile(s.T(), s.db)
	testutil.Follow(s.T(), s.db, follower, circle)

	w := s.request(http.MethodGet, "/users/"+private.ID, nil, "")
	s.assertError(w, http.StatusForbidden, "Private profile")

	w = s.request(http.MethodGet, "/users/"+private.ID, nil, s.token(private))
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, "/users/"+circle.ID, nil, "")
	s.assertError(w, http.StatusForbidden, "Restricted profile")

	w = s.request(http.MethodGet, "/users/"+circle.ID, nil, s.token(follower))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.NotContains(w.Body.String(), circle.Email)

	w = s.request(http.MethodGet, "/users/no-such-user", nil, "")
	s.assertError(w, http.StatusNotFound, "Not found")
}

func (s *APITestSuite) TestDirectoryAndUserPosts() {
	alice := testutil.CreateProfile(s.T(), s.db, testutil.WithUsername("alice_dir"))
	testutil.CreateProfile(s.T(), s.db, testutil.WithUsername("alice_gone"), testutil.Inactive())
	testutil.CreateProfile(s.T(), s.db, testutil.WithUsername("bruno"))
	testutil.CreatePost(s.T(), s.db, alice, "alice writes")

	w := s.request(http.MethodGet, "/users?q=alice", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var dir struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
		Total   int64 `json:"total"`
		HasMore bool  `json:"has_more"`
	}
	s.decode(w, &dir)
	s.EqualValues(1, dir.Total)
	s.False(dir.HasMore)
	s.Require().Len(dir.Users, 1)
	s.Equal("alice_dir", dir.Users[0].Username)

	w = s.request(http.MethodGet, "/users/"+alice.ID+"/posts", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "alice writes")
}

func (s *APITestSuite) upload(token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) TestUploadImage() {
	user := testutil.CreateProfile(s.T(), s.db)
	token := s.token(user)

	w := s.upload(token, "avatar.png", "image/png", pngBytes)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Path string `json:"path"`
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	s.decode(w, &result)
	s.True(strings.HasPrefix(result.Path, user.ID+"/"))
	s.True(strings.HasSuffix(result.Path, "-avatar.png"))
	s.Equal("http://localhost:8787/media/"+result.Path, result.URL)
	s.EqualValues(len(pngBytes), result.Size)

	stored, ok := s.uploader.Object(result.Path)
	s.Require().True(ok)
	s.Equal(pngBytes, stored)

	w = s.upload(token, "anim.gif", "image/gif", []byte("GIF89a...."))
	s.assertError(w, http.StatusBadRequest, "Unsupported file type")

	w = s.request(http.MethodPost, "/uploads/image", nil, token)
	s.assertError(w, http.StatusBadRequest, "Missing file")
}

func (s *APITestSuite) TestServeMedia() {
	router := gin.New()
	router.GET("/media/*key", ServeMedia(s.uploader))

	user := testutil.CreateProfile(s.T(), s.db)
	w := s.upload(s.token(user), "pic.png", "image/png", pngBytes)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Path string `json:"path"`
	}
	s.decode(w, &result)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/"+result.Path, nil))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("image/png", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/nothing.png", nil))
	s.Equal(http.StatusNotFound, w.Code)
}
