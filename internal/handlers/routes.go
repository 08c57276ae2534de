package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/middleware"
)

// RegisterRoutes mounts every API route on api, normally the /api/v1 group
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, tokens middleware.TokenValidator, admins middleware.ProfileLoader) {
	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/token/refresh", h.RefreshToken)
		authGroup.POST("/change-password", requireAuth, h.ChangePassword)
		authGroup.POST("/password-reset", h.RequestPasswordReset)
		authGroup.POST("/password-reset-confirm", h.ConfirmPasswordReset)
	}

	api.GET("/feed", requireAuth, h.GetFeed)
	api.GET("/hashtags/trending", h.TrendingHashtags)
	api.GET("/search/posts", optionalAuth, h.SearchPosts)

	postsGroup := api.Group("/posts")
	{
		postsGroup.GET("", optionalAuth, h.ListPosts)
		postsGroup.POST("", requireAuth, h.CreatePost)
		postsGroup.GET("/:id", optionalAuth, h.GetPost)
		postsGroup.PATCH("/:id", requireAuth, h.UpdatePost)
		postsGroup.DELETE("/:id", requireAuth, h.DeletePost)

		postsGroup.POST("/:id/like", requireAuth, h.LikePost)
		postsGroup.DELETE("/:id/like", requireAuth, h.UnlikePost)
		postsGroup.GET("/:id/like-status", requireAuth, h.LikeStatus)

		postsGroup.GET("/:id/comments", optionalAuth, h.ListComments)
		postsGroup.POST("/:id/comments", requireAuth, h.CreateComment)
		postsGroup.DELETE("/:id/comments", requireAuth, h.DeletePostComment)
	}
	api.DELETE("/comments/:id", requireAuth, h.DeleteComment)

	users := api.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/me", requireAuth, h.GetMe)
		users.PATCH("/me", requireAuth, h.UpdateMe)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.GET("/:id/posts", optionalAuth, h.GetUserPosts)

		users.GET("/:id/follow", requireAuth, h.FollowStatus)
		users.POST("/:id/follow", requireAuth, h.Follow)
		users.DELETE("/:id/follow", requireAuth, h.Unfollow)
		users.GET("/:id/followers", h.Followers)
		users.GET("/:id/following", h.Following)
	}

	notificationsGroup := api.Group("/notifications")
	notificationsGroup.Use(requireAuth)
	{
		notificationsGroup.GET("", h.ListNotifications)
		notificationsGroup.DELETE("", h.ClearNotifications)
		notificationsGroup.GET("/unread-count", h.UnreadCount)
		notificationsGroup.POST("/mark-all-read", h.MarkAllNotificationsRead)
		notificationsGroup.POST("/:id/read", h.MarkNotificationRead)
	}

	api.POST("/uploads/image", requireAuth, h.UploadImage)

	adminGroup := api.Group("/admin")
	adminGroup.Use(requireAuth, middleware.RequireAdmin(admins))
	{
		adminGroup.GET("/stats", h.AdminStats)
		adminGroup.GET("/users", h.AdminListUsers)
		adminGroup.GET("/users/:id", h.AdminGetUser)
		adminGroup.PATCH("/users/:id", h.AdminUpdateUser)
		adminGroup.POST("/users/:id/deactivate", h.AdminDeactivateUser)
		adminGroup.GET("/posts", h.AdminListPosts)
		adminGroup.DELETE("/posts/:id", h.AdminDeletePost)
		adminGroup.DELETE("/comments/:id", h.AdminDeleteComment)
		adminGroup.GET("/logs", h.AdminLogs)
	}
}
