package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/util"
	"go.uber.org/zap"
)

// TokenValidator checks a session token
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// ProfileLoader loads the profile a token belongs to
type ProfileLoader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// UnreadCounter reports the unread badge sent in the hello frame
type UnreadCounter interface {
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

// Handler upgrades HTTP requests to notification streams
type Handler struct {
	hub            *Hub
	tokens         TokenValidator
	profiles       ProfileLoader
	unread         UnreadCounter
	allowedOrigins []string
}

// NewHandler creates a new WebSocket handler. allowedOrigins are host
// patterns accepted in the Origin header; empty allows same-origin only.
func NewHandler(hub *Hub, tokens TokenValidator, profiles ProfileLoader, unread UnreadCounter, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		profiles:       profiles,
		unread:         unread,
		allowedOrigins: allowedOrigins,
	}
}

// HandleWebSocket handles GET /ws. The session token comes from ?token=,
// the Authorization header or the session cookie.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	profile, ok := h.authenticate(c)
	if !ok {
		return
	}

	// gin's writer refuses to hijack once the 101 is written; hand over the raw one
	conn, err := websocket.Accept(rawWriter(c), c.Request, &websocket.AcceptOptions{
		OriginPatterns:  originPatterns(h.allowedOrigins),
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.WarnWithFields("Websocket upgrade failed", err, logger.WithUserID(profile.ID))
		return
	}

	client := NewClient(h.hub, conn, profile.ID, profile.Username)
	client.RemoteAddr = c.ClientIP()
	if err := h.hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server closing")
		return
	}

	hello := HelloPayload{
		UserID:     profile.ID,
		Username:   profile.Username,
		ServerTime: time.Now().UTC().UnixMilli(),
	}
	if count, err := h.unread.UnreadCount(c.Request.Context(), profile.ID); err == nil {
		hello.UnreadCount = &count
	} else {
		logger.WarnWithFields("Failed to load unread count", err, logger.WithUserID(profile.ID))
	}
	_ = client.Send(NewFrame(TypeHello, hello))

	client.Serve()
}

func (h *Handler) authenticate(c *gin.Context) (*models.Profile, bool) {
	token := c.Query("token")
	if token == "" {
		token = auth.TokenFromRequest(c)
	}
	if token == "" {
		util.RespondUnauthorized(c)
		return nil, false
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		logger.Log.Debug("Websocket token rejected", zap.Error(err))
		util.RespondUnauthorized(c)
		return nil, false
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !profile.Active {
		util.RespondUnauthorized(c, "Profile not found")
		return nil, false
	}
	return profile, true
}

// HandleMetrics reports hub counters to admins
// GET /api/v1/ws/metrics
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket": h.hub.Stats(),
		"timestamp": time.Now().UTC(),
	})
}

func rawWriter(c *gin.Context) http.ResponseWriter {
	if u, ok := c.Writer.(interface{ Unwrap() http.ResponseWriter }); ok {
		return u.Unwrap()
	}
	return c.Writer
}

// originPatterns strips schemes so CORS origins can double as websocket origin patterns
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimPrefix(origin, "https://")
		origin = strings.TrimPrefix(origin, "http://")
		if origin != "" {
			patterns = append(patterns, origin)
		}
	}
	return patterns
}

// NotificationMarker is the subset of the notification service clients may drive over the socket
type NotificationMarker interface {
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

// RegisterNotificationHandlers lets clients mark notifications read without a REST round trip
func RegisterNotificationHandlers(hub *Hub, marker NotificationMarker) {
	hub.RegisterHandler(TypeMarkRead, func(ctx context.Context, client *Client, msg *Inbound) error {
		var payload MarkReadPayload
		if err := msg.Decode(&payload); err != nil || payload.ID == "" {
			client.SendError("invalid_payload", "id required")
			return nil
		}
		return marker.MarkRead(ctx, client.UserID, payload.ID)
	})

	hub.RegisterHandler(TypeMarkAllRead, func(ctx context.Context, client *Client, msg *Inbound) error {
		return marker.MarkAllRead(ctx, client.UserID)
	})
}
