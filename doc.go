// Package murmur is a small social network API: short posts, follows,
// likes, comments and notifications, served as JSON over HTTP.
//
// The server lives in cmd/server; the packages it is built from are:
//
// - internal/handlers: HTTP handlers and the /api/v1 route table
// - internal/models: GORM models and their validation rules
// - internal/repository: database access for every model
// - internal/auth: accounts, sessions and password resets
// - internal/visibility: who may see a profile or a post
// - internal/feed: the follow feed, listings and trending hashtags
// - internal/posts: posts, likes and comments
// - internal/social: the follow graph
// - internal/notifications: notification storage and delivery
// - internal/websocket: realtime notification push
// - internal/search: Elasticsearch indexing with a database fallback
// - internal/storage: image uploads to S3 or memory
// - internal/admin: moderation and audit logging
// - internal/cleanup: periodic housekeeping
// - internal/cli: the murmur command-line client (cmd/cli)
//
// See the individual package documentation for details.
package murmur
