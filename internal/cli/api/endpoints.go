package api

import (
	"net/http"
	"strconv"
)

func pageQuery(page, pageSize int) map[string]string {
	q := map[string]string{}
	if page > 0 {
		q["page"] = strconv.Itoa(page)
	}
	if pageSize > 0 {
		q["page_size"] = strconv.Itoa(pageSize)
	}
	return q
}

// Register creates an account
func (c *Client) Register(email, username, password string) error {
	body := map[string]string{"email": email, "username": username, "password": password}
	return c.send(http.MethodPost, "/api/v1/auth/register", body, nil)
}

// Login exchanges a username or email and password for a session
func (c *Client) Login(identifier, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.send(http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the server-side cookie
func (c *Client) Logout() error {
	return c.send(http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Refresh trades the current token for a fresh one
func (c *Client) Refresh() (*Session, error) {
	var resp struct {
		Session Session `json:"session"`
	}
	if err := c.send(http.MethodPost, "/api/v1/auth/token/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

// ChangePassword replaces the caller's password
func (c *Client) ChangePassword(current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.send(http.MethodPost, "/api/v1/auth/change-password", body, nil)
}

// Me returns the caller's own profile
func (c *Client) Me() (*Profile, error) {
	var resp struct {
		Profile Profile `json:"profile"`
	}
	if err := c.get("/api/v1/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// UpdateMe patches the caller's profile with the given fields
func (c *Client) UpdateMe(fields map[string]string) (*Profile, error) {
	var resp struct {
		Profile Profile `json:"profile"`
	}
	if err := c.send(http.MethodPatch, "/api/v1/users/me", fields, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// User returns another user's profile
func (c *Client) User(id string) (*Profile, error) {
	var resp struct {
		Profile Profile `json:"profile"`
	}
	if err := c.get("/api/v1/users/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// Follow follows a user
func (c *Client) Follow(id string) (*FollowResult, error) {
	var resp FollowResult
	if err := c.send(http.MethodPost, "/api/v1/users/"+id+"/follow", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unfollow stops following a user
func (c *Client) Unfollow(id string) (*FollowResult, error) {
	var resp FollowResult
	if err := c.send(http.MethodDelete, "/api/v1/users/"+id+"/follow", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Feed returns one page of the follow feed
func (c *Client) Feed(page int) (*FeedPage, error) {
	var resp FeedPage
	if err := c.get("/api/v1/feed", pageQuery(page, 0), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Posts lists recent posts, optionally for one author
func (c *Client) Posts(author string, page, pageSize int) (*PostList, error) {
	q := pageQuery(page, pageSize)
	if author != "" {
		q["author"] = author
	}
	var resp PostList
	if err := c.get("/api/v1/posts", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePost publishes a post
func (c *Client) CreatePost(content, category, imageURL string) (*Post, error) {
	body := map[string]string{"content": content}
	if category != "" {
		body["category"] = category
	}
	if imageURL != "" {
		body["image_url"] = imageURL
	}
	var resp struct {
		Post Post `json:"post"`
	}
	if err := c.send(http.MethodPost, "/api/v1/posts", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Post, nil
}

// DeletePost deletes one of the caller's posts
func (c *Client) DeletePost(id string) error {
	return c.send(http.MethodDelete, "/api/v1/posts/"+id, nil, nil)
}

// Like likes a post
func (c *Client) Like(id string) (*LikeResult, error) {
	var resp LikeResult
	if err := c.send(http.MethodPost, "/api/v1/posts/"+id+"/like", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unlike removes the caller's like
func (c *Client) Unlike(id string) (*LikeResult, error) {
	var resp LikeResult
	if err := c.send(http.MethodDelete, "/api/v1/posts/"+id+"/like", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Comments lists a post's comments
func (c *Client) Comments(postID string) ([]Comment, error) {
	var resp struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.get("/api/v1/posts/"+postID+"/comments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// AddComment comments on a post
func (c *Client) AddComment(postID, content string) (*Comment, error) {
	var resp struct {
		Comment Comment `json:"comment"`
	}
	body := map[string]string{"content": content}
	if err := c.send(http.MethodPost, "/api/v1/posts/"+postID+"/comments", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Comment, nil
}

// SearchPosts finds posts matching q
func (c *Client) SearchPosts(q string, page, pageSize int) (*PostList, error) {
	query := pageQuery(page, pageSize)
	query["q"] = q
	var resp PostList
	if err := c.get("/api/v1/search/posts", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Trending returns the most used recent hashtags
func (c *Client) Trending(limit int) ([]Hashtag, error) {
	var resp struct {
		Hashtags []Hashtag `json:"hashtags"`
	}
	q := map[string]string{}
	if limit > 0 {
		q["limit"] = strconv.Itoa(limit)
	}
	if err := c.get("/api/v1/hashtags/trending", q, &resp); err != nil {
		return nil, err
	}
	return resp.Hashtags, nil
}

// Notifications returns one page of the caller's notifications
func (c *Client) Notifications(page, pageSize int) (*NotificationList, error) {
	var resp NotificationList
	if err := c.get("/api/v1/notifications", pageQuery(page, pageSize), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnreadCount returns how many notifications are unread
func (c *Client) UnreadCount() (int64, error) {
	var resp struct {
		UnreadCount int64 `json:"unread_count"`
	}
	if err := c.get("/api/v1/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkAllRead marks every notification read
func (c *Client) MarkAllRead() error {
	return c.send(http.MethodPost, "/api/v1/notifications/mark-all-read", nil, nil)
}

// AdminStats returns site totals
func (c *Client) AdminStats() (*Stats, error) {
	var resp Stats
	if err := c.get("/api/v1/admin/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminSetActive deactivates a user, or reactivates them when active is true
func (c *Client) AdminSetActive(id string, active bool) (*UserFlags, error) {
	var resp struct {
		User UserFlags `json:"user"`
	}
	body := map[string]bool{"active": active}
	if err := c.send(http.MethodPost, "/api/v1/admin/users/"+id+"/deactivate", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// AdminDeletePost removes any post
func (c *Client) AdminDeletePost(id string) error {
	return c.send(http.MethodDelete, "/api/v1/admin/posts/"+id, nil, nil)
}
