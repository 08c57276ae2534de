package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics counts what users do: posting, following, liking,
// notifications, moderation, logins, uploads and searches
type ApplicationMetrics struct {
	FollowsTotal   prometheus.Counter
	UnfollowsTotal prometheus.Counter
	LikesTotal     prometheus.Counter
	CommentsTotal  prometheus.Counter
	PostsCreated   *prometheus.CounterVec
	PostsDeleted   *prometheus.CounterVec

	NotificationsEmitted *prometheus.CounterVec
	NotificationsDropped *prometheus.CounterVec

	AdminActions   *prometheus.CounterVec
	LoginAttempts  *prometheus.CounterVec
	ImageUploads   *prometheus.CounterVec
	SearchRequests *prometheus.CounterVec
}

var (
	appInstance *ApplicationMetrics
	appOnce     sync.Once
)

func counter(name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

// App returns the application metrics, registering them on first use
func App() *ApplicationMetrics {
	appOnce.Do(func() {
		appInstance = &ApplicationMetrics{
			FollowsTotal:   counter("follows_total", "New follow edges"),
			UnfollowsTotal: counter("unfollows_total", "Unfollow requests"),
			LikesTotal:     counter("likes_total", "New likes"),
			CommentsTotal:  counter("comments_total", "Comments created"),
			PostsCreated:   counterVec("posts_created_total", "Posts created by category", "category"),
			PostsDeleted:   counterVec("posts_deleted_total", "Posts deleted, by author or admin", "by"),

			NotificationsEmitted: counterVec("notifications_emitted_total", "Notifications stored", "type"),
			NotificationsDropped: counterVec("notifications_dropped_total", "Notifications that failed to store or publish", "stage"),

			AdminActions:   counterVec("admin_actions_total", "Moderation actions", "action"),
			LoginAttempts:  counterVec("login_attempts_total", "Login attempts by outcome", "status"),
			ImageUploads:   counterVec("image_uploads_total", "Image uploads by outcome", "status"),
			SearchRequests: counterVec("search_requests_total", "Searches by backend and type", "backend", "type"),
		}
	})
	return appInstance
}
