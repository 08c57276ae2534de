package handlers

import (
	"github.com/zfogg/murmur/internal/admin"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/posts"
	"github.com/zfogg/murmur/internal/profiles"
	"github.com/zfogg/murmur/internal/search"
	"github.com/zfogg/murmur/internal/social"
	"github.com/zfogg/murmur/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth          auth.Authenticator
	profiles      *profiles.Service
	graph         *social.Graph
	feed          *feed.Aggregator
	posts         *posts.Service
	notifications *notifications.Service
	admin         *admin.Service
	search        *search.Service
	uploader      storage.ImageUploader

	siteURL      string
	cookieSecure bool
}

// Deps are the services the handlers delegate to
type Deps struct {
	Auth          auth.Authenticator
	Profiles      *profiles.Service
	Graph         *social.Graph
	Feed          *feed.Aggregator
	Posts         *posts.Service
	Notifications *notifications.Service
	Admin         *admin.Service
	Search        *search.Service
	Uploader      storage.ImageUploader

	// SiteURL is where logout redirects to
	SiteURL      string
	CookieSecure bool
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		auth:          d.Auth,
		profiles:      d.Profiles,
		graph:         d.Graph,
		feed:          d.Feed,
		posts:         d.Posts,
		notifications: d.Notifications,
		admin:         d.Admin,
		search:        d.Search,
		uploader:      d.Uploader,
		siteURL:       d.SiteURL,
		cookieSecure:  d.CookieSecure,
	}
}
