package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/testutil"
)

type createdPost struct {
	PostID string    `json:"post_id"`
	Post   feed.Post `json:"post"`
}

func (s *APITestSuite) createPost(token, content string) createdPost {
	w := s.request(http.MethodPost, "/posts", gin.H{"content": content}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp createdPost
	s.decode(w, &resp)
	return resp
}

func (s *APITestSuite) TestCreateAndGetPost() {
	author := testutil.CreateProfile(s.T(), s.db)
	created := s.createPost(s.token(author), "Hello #GoLang world")

	s.NotEmpty(created.PostID)
	s.Equal([]string{"#golang"}, created.Post.Hashtags)
	s.Equal(1, testutil.Reload(s.T(), s.db, author).PostsCount)

	w := s.request(http.MethodGet, "/posts/"+created.PostID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Post feed.Post `json:"post"`
	}
	s.decode(w, &got)
	s.Equal("Hello #GoLang world", got.Post.Content)
	s.Require().NotNil(got.Post.AuthorProfile)
	s.Equal(author.Username, got.Post.AuthorProfile.Username)

	w = s.request(http.MethodPost, "/posts", gin.H{"content": "   "}, s.token(author))
	s.assertError(w, http.StatusBadRequest, "Content required and <=280 chars")
}

func (s *APITestSuite) TestPrivatePostIsForbidden() {
	author := testutil.CreateProfile(s.T(), s.db, testutil.WithPrivacy(models.PrivacyPrivate))
	post := testutil.CreatePost(s.T(), s.db, author, "for my eyes only")

	w := s.request(http.MethodGet, "/posts/"+post.ID, nil, "")
	s.assertError(w, http.StatusForbidden, "Forbidden")

	w = s.request(http.MethodGet, "/posts/"+post.ID, nil, s.token(author))
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *APITestSuite) TestUpdateAndDeleteOwnPostOnly() {
	author := testutil.CreateProfile(s.T(), s.db)
	stranger := testutil.CreateProfile(s.T(), s.db)
	post := testutil.CreatePost(s.T(), s.db, author, "first draft")

	w := s.request(http.MethodPatch, "/posts/"+post.ID, gin.H{"content": "hijacked"}, s.token(stranger))
	s.assertError(w, http.StatusForbidden, "Forbidden")

	w = s.request(http.MethodPatch, "/posts/"+post.ID, gin.H{"content": "second draft"}, s.token(author))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"message":"Updated"}`, w.Body.String())

	w = s.request(http.MethodDelete, "/posts/"+post.ID, nil, s.token(stranger))
	s.assertError(w, http.StatusForbidden, "Forbidden")

	w = s.request(http.MethodDelete, "/posts/"+post.ID, nil, s.token(author))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, "/posts/"+post.ID, nil, s.token(author))
	s.assertError(w, http.StatusNotFound, "Not found")
}

func (s *APITestSuite) TestLikeNotifiesAuthor() {
	author := testutil.CreateProfile(s.T(), s.db)
	fan := testutil.CreateProfile(s.T(), s.db)
	post := testutil.CreatePost(s.T(), s.db, author, "like me")
	fanToken := s.token(fan)

	for i := 0; i < 2; i++ {
		w := s.request(http.MethodPost, "/posts/"+post.ID+"/like", nil, fanToken)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var result struct {
			Liked bool  `json:"liked"`
			Total int64 `json:"total"`
		}
		s.decode(w, &result)
		s.True(result.Liked)
		s.EqualValues(1, result.Total)
	}

	w := s.request(http.MethodGet, "/posts/"+post.ID+"/like-status", nil, fanToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"liked":true`)

	authorToken := s.token(author)
	testutil.Eventually(s.T(), func() bool {
		w := s.request(http.MethodGet, "/notifications/unread-count", nil, authorToken)
		return w.Code == http.StatusOK && strings.Contains(w.Body.String(), `"unread_count":1`)
	})

	w = s.request(http.MethodDelete, "/posts/"+post.ID+"/like", nil, fanToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"liked":false`)
	s.Contains(w.Body.String(), `"total":0`)
}

func (s *APITestSuite) TestComments() {
	author := testutil.CreateProfile(s.T(), s.db)
	commenter := testutil.CreateProfile(s.T(), s.db)
	post := testutil.CreatePost(s.T(), s.db, author, "discuss")
	token := s.token(commenter)

	w := s.request(http.MethodPost, "/posts/"+post.ID+"/comments", gin.H{"content": "first!"}, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var created struct {
		CommentID string `json:"comment_id"`
	}
	s.decode(w, &created)
	s.NotEmpty(created.CommentID)

	w = s.request(http.MethodGet, "/posts/"+post.ID+"/comments", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var listed struct {
		Comments []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"comments"`
	}
	s.decode(w, &listed)
	s.Require().Len(listed.Comments, 1)
	s.Equal("first!", listed.Comments[0].Content)

	w = s.request(http.MethodDelete, "/posts/"+post.ID+"/comments", nil, token)
	s.assertError(w, http.StatusBadRequest, "Missing comment_id")

	w = s.request(http.MethodDelete, "/comments/"+created.CommentID, nil, s.token(author))
	s.assertError(w, http.StatusForbidden, "Forbidden")

	w = s.request(http.MethodDelete, "/posts/"+post.ID+"/comments?comment_id="+created.CommentID, nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"deleted":true,"comment_id":"`+created.CommentID+`"}`, w.Body.String())
}

func (s *APITestSuite) TestFollowFeedsPosts() {
	viewer := testutil.CreateProfile(s.T(), s.db)
	author := testutil.CreateProfile(s.T(), s.db)
	testutil.CreatePost(s.T(), s.db, author, "from someone you follow")
	token := s.token(viewer)

	w := s.request(http.MethodPost, "/users/"+author.ID+"/follow", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var followed struct {
		Status         string `json:"status"`
		FollowingCount int    `json:"following_count"`
		FollowersCount int    `json:"followers_count"`
	}
	s.decode(w, &followed)
	s.Equal("followed", followed.Status)
	s.Equal(1, followed.FollowingCount)
	s.Equal(1, followed.FollowersCount)

	w = s.request(http.MethodGet, "/users/"+author.ID+"/follow", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"is_following":true`)

	w = s.request(http.MethodGet, "/feed", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page feed.Page
	s.decode(w, &page)
	s.Require().Len(page.Posts, 1)
	s.Equal("from someone you follow", page.Posts[0].Content)

	w = s.request(http.MethodGet, "/users/"+author.ID+"/followers", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), viewer.ID)

	w = s.request(http.MethodDelete, "/users/"+author.ID+"/follow", nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(0, testutil.Reload(s.T(), s.db, author).FollowersCount)
}

func (s *APITestSuite) TestNotificationLifecycle() {
	author := testutil.CreateProfile(s.T(), s.db)
	fan := testutil.CreateProfile(s.T(), s.db)
	authorToken := s.token(author)

	s.request(http.MethodPost, "/users/"+author.ID+"/follow", nil, s.token(fan))

	var listed struct {
		Notifications []struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			IsRead bool   `json:"is_read"`
		} `json:"notifications"`
		Total int64 `json:"total"`
	}
	testutil.Eventually(s.T(), func() bool {
		w := s.request(http.MethodGet, "/notifications", nil, authorToken)
		if w.Code != http.StatusOK {
			return false
		}
		s.decode(w, &listed)
		return listed.Total == 1
	})
	s.Require().Len(listed.Notifications, 1)
	s.Equal("follow", listed.Notifications[0].Type)
	s.False(listed.Notifications[0].IsRead)

	w := s.request(http.MethodPost, "/notifications/"+listed.Notifications[0].ID+"/read", nil, authorToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, "/notifications/unread-count", nil, authorToken)
	s.JSONEq(`{"unread_count":0}`, w.Body.String())

	w = s.request(http.MethodPost, "/notifications/mark-all-read", nil, authorToken)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodDelete, "/notifications", nil, authorToken)
	s.JSONEq(`{"cleared":true}`, w.Body.String())

	w = s.request(http.MethodGet, "/notifications", nil, authorToken)
	s.Contains(w.Body.String(), `"total":0`)
}

func (s *APITestSuite) TestTrendingAndSearch() {
	author := testutil.CreateProfile(s.T(), s.db)
	testutil.CreatePost(s.T(), s.db, author, "learning #go today")
	testutil.CreatePost(s.T(), s.db, author, "more #go and #sql")

	w := s.request(http.MethodGet, "/hashtags/trending", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var trending struct {
		Hashtags []feed.Hashtag `json:"hashtags"`
	}
	s.decode(w, &trending)
	s.Require().NotEmpty(trending.Hashtags)
	s.Equal(feed.Hashtag{Tag: "#go", Count: 2}, trending.Hashtags[0])

	w = s.request(http.MethodGet, "/search/posts", nil, "")
	s.assertError(w, http.StatusBadRequest, "Query required")

	w = s.request(http.MethodGet, "/search/posts?q=learning", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var listing feed.Listing
	s.decode(w, &listing)
	s.EqualValues(1, listing.Total)
}
