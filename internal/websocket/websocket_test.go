package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/notifications"
)

type fakeTokens map[string]string

func (f fakeTokens) ValidateToken(token string) (*auth.Claims, error) {
	if id, ok := f[token]; ok {
		return &auth.Claims{UserID: id}, nil
	}
	return nil, errors.New("bad token")
}

type fakeProfiles map[string]*models.Profile

func (f fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

type fixedUnread int64

func (u fixedUnread) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return int64(u), nil
}

type recordingMarker struct {
	read chan string
}

func (m *recordingMarker) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	m.read <- recipientID + ":" + notificationID
	return nil
}

func (m *recordingMarker) MarkAllRead(ctx context.Context, recipientID string) error {
	return nil
}

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return hub
}

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	gin.SetMode(gin.TestMode)

	profiles := fakeProfiles{
		"user-1":   {ID: "user-1", Username: "alice", Active: true},
		"inactive": {ID: "inactive", Username: "gone", Active: false},
	}
	tokens := fakeTokens{"good": "user-1", "stale": "inactive"}

	router := gin.New()
	router.GET("/ws", NewHandler(hub, tokens, profiles, fixedUnread(3), nil).HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestHubPublishReachesOnlyRecipient(t *testing.T) {
	hub := startHub(t)

	alice := NewClient(hub, nil, "alice", "alice")
	bob := NewClient(hub, nil, "bob", "bob")
	require.NoError(t, hub.Register(alice))
	require.NoError(t, hub.Register(bob))
	assert.Equal(t, 1, hub.Connections("alice"))

	n := &models.Notification{ID: "n-1", RecipientID: "alice", Type: models.NotificationFollow}
	require.NoError(t, hub.Publish(context.Background(), "alice", notifications.Change{Event: notifications.ChangeInsert, Notification: n}))

	select {
	case data := <-alice.send:
		assert.Contains(t, string(data), `"type":"notification"`)
		assert.Contains(t, string(data), `"id":"n-1"`)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the notification")
	}

	select {
	case <-bob.send:
		t.Fatal("bob received alice's notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice", "alice")
	require.NoError(t, hub.Register(client))
	second := NewClient(hub, nil, "alice", "alice")
	require.NoError(t, hub.Register(second))
	assert.Equal(t, 2, hub.Connections("alice"))

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
	assert.ErrorIs(t, client.Send(NewFrame(TypePing, nil)), errClientClosed)
	assert.EqualValues(t, 1, hub.Stats().ActiveConnections)
	assert.EqualValues(t, 2, hub.Stats().TotalConnections)
}

func TestHubRegisterHandler(t *testing.T) {
	hub := NewHub()

	hub.RegisterHandler("test_type", func(ctx context.Context, client *Client, msg *Inbound) error {
		return nil
	})

	handler, ok := hub.GetHandler("test_type")
	assert.True(t, ok)
	assert.NotNil(t, handler)

	_, ok = hub.GetHandler("nonexistent")
	assert.False(t, ok)
}

func TestHubStatsStartAtZero(t *testing.T) {
	stats := NewHub().Stats()
	assert.Equal(t, int64(0), stats.TotalConnections)
	assert.Equal(t, int64(0), stats.ActiveConnections)
	assert.Contains(t, stats.String(), "connections=0/0")
}

func TestHubShutdownSendsShutdownFrame(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "alice", "alice")
	require.NoError(t, hub.Register(client))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	data, open := <-client.send
	require.True(t, open)
	assert.Contains(t, string(data), `"type":"shutdown"`)
	_, open = <-client.send
	assert.False(t, open)

	assert.ErrorIs(t, hub.Register(NewClient(hub, nil, "bob", "bob")), ErrHubStopped)
}

func TestInboundDecode(t *testing.T) {
	var msg Inbound
	require.NoError(t, json.Unmarshal([]byte(`{"type":"ping","id":"c-1","payload":{"client_time":1234567890}}`), &msg))
	assert.Equal(t, TypePing, msg.Type)
	assert.Equal(t, "c-1", msg.ID)

	var ping PingPayload
	require.NoError(t, msg.Decode(&ping))
	assert.Equal(t, int64(1234567890), ping.ClientTime)

	empty := Inbound{Type: TypeMarkAllRead}
	var markRead MarkReadPayload
	require.NoError(t, empty.Decode(&markRead))
	assert.Empty(t, markRead.ID)
}

type helloFrame struct {
	Type    string       `json:"type"`
	Payload HelloPayload `json:"payload"`
}

type replyFrame struct {
	Type    string       `json:"type"`
	ID      string       `json:"id"`
	ReplyTo string       `json:"reply_to"`
	Payload ErrorPayload `json:"payload"`
}

func TestHandlerRejectsMissingAndInactive(t *testing.T) {
	srv := newServer(t, startHub(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.Dial(ctx, wsURL(srv, "stale"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHandlerStreamsNotifications(t *testing.T) {
	hub := startHub(t)
	marker := &recordingMarker{read: make(chan string, 1)}
	RegisterNotificationHandlers(hub, marker)
	srv := newServer(t, hub)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var hello helloFrame
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	assert.Equal(t, TypeHello, hello.Type)
	assert.Equal(t, "alice", hello.Payload.Username)
	require.NotNil(t, hello.Payload.UnreadCount)
	assert.EqualValues(t, 3, *hello.Payload.UnreadCount)

	n := &models.Notification{ID: "n-42", RecipientID: "user-1", Type: models.NotificationLike}
	require.NoError(t, hub.Publish(ctx, "user-1", notifications.Change{Event: notifications.ChangeInsert, Notification: n}))

	var frame replyFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, TypeNotification, frame.Type)
	assert.Equal(t, "n-42", frame.ID)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{
		"type":    TypeMarkRead,
		"payload": map[string]string{"id": "n-42"},
	}))

	select {
	case got := <-marker.read:
		assert.Equal(t, "user-1:n-42", got)
	case <-ctx.Done():
		t.Fatal("mark_read was not dispatched")
	}

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{"type": TypePing, "id": "c-7"}))
	var pong replyFrame
	require.NoError(t, wsjson.Read(ctx, conn, &pong))
	assert.Equal(t, TypePong, pong.Type)
	assert.Equal(t, "c-7", pong.ReplyTo)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{"type": "bogus"}))
	var rejected replyFrame
	require.NoError(t, wsjson.Read(ctx, conn, &rejected))
	assert.Equal(t, TypeError, rejected.Type)
	assert.Equal(t, "unknown_type", rejected.Payload.Code)
}
