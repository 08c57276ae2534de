package api

import "time"

// Profile is a user as the API returns it
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Bio            string    `json:"bio"`
	Website        string    `json:"website"`
	Location       string    `json:"location"`
	AvatarURL      string    `json:"avatar_url"`
	Privacy        string    `json:"privacy"`
	IsAdmin        bool      `json:"is_admin"`
	Active         bool      `json:"active"`
	PostsCount     int       `json:"posts_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary is the short author form embedded in posts and comments
type Summary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Session is a bearer token and its expiry
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse is the body of POST /auth/login
type LoginResponse struct {
	User      Profile   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Post is one post with engagement counts
type Post struct {
	ID            string    `json:"id"`
	Author        string    `json:"author"`
	AuthorProfile *Summary  `json:"author_profile,omitempty"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"image_url,omitempty"`
	Category      string    `json:"category"`
	Hashtags      []string  `json:"hashtags"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedPage is the body of GET /feed
type FeedPage struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Posts    []Post `json:"posts"`
	HasMore  bool   `json:"has_more"`
}

// PostList is a paged listing with a total
type PostList struct {
	Posts    []Post `json:"posts"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int64  `json:"total"`
	HasMore  bool   `json:"has_more"`
}

// Comment on a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Profile   *Summary  `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResult is the answer to like, unlike and like-status
type LikeResult struct {
	Liked bool  `json:"liked"`
	Total int64 `json:"total"`
}

// FollowResult is the answer to follow and unfollow
type FollowResult struct {
	Status         string `json:"status"`
	FollowingCount int    `json:"following_count"`
	FollowersCount int    `json:"followers_count"`
}

// Notification with the actor's summary
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Actor        string    `json:"actor"`
	ActorProfile *Summary  `json:"actor_profile"`
	PostID       string    `json:"post_id,omitempty"`
	IsRead       bool      `json:"is_read"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationList is one page of notifications
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	HasMore       bool           `json:"has_more"`
}

// Hashtag is a trending tag and how many recent posts carry it
type Hashtag struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats is the admin dashboard summary
type Stats struct {
	TotalUsers  int64 `json:"total_users"`
	TotalPosts  int64 `json:"total_posts"`
	ActiveToday int64 `json:"active_today"`
}

// UserFlags is what admin user updates return
type UserFlags struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
	Active  bool   `json:"active"`
}
