package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/infrastructure/memstore"
	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/pkg/errors"
)

type itemOpener struct {
	store *memstore.Store
}

func (o itemOpener) OpenFeed(ctx context.Context, client *Client, feed, id string) error {
	if feed != FeedListings {
		return errors.BadRequest("Unknown feed", nil)
	}
	q := service.NewQuery("items").Order("createdAt", service.Asc)
	sub, err := subscription.Subscribe[string](ctx, o.store, q,
		func(_ map[string]interface{}, docID string) string { return docID },
		subscription.WithErrorHandler(func(err error) {
			client.SendError(feed, FeedKey(feed, id), "Feed interrupted")
		}),
	)
	if err != nil {
		return err
	}
	Attach(client, feed, id, sub)
	return nil
}

type harness struct {
	store   *memstore.Store
	manager *Manager
	conn    *websocket.Conn
	clients chan *Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{store: memstore.New(), clients: make(chan *Client, 1)}
	h.manager = NewManager(itemOpener{store: h.store})
	h.manager.Start(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(ctx, "user-1", conn)
		if !h.manager.RegisterClient(client) {
			conn.Close()
			return
		}
		h.clients <- client
		go client.ReadPump(h.manager)
		go client.WritePump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	h.conn = conn
	return h
}

func (h *harness) client(t *testing.T) *Client {
	select {
	case c := <-h.clients:
		h.clients <- c
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}
	return nil
}

func (h *harness) send(t *testing.T, msg ClientMessage) {
	require.NoError(t, h.conn.WriteJSON(msg))
}

type frame struct {
	Type  string   `json:"type"`
	Feed  string   `json:"feed"`
	Key   string   `json:"key"`
	Items []string `json:"items"`
	Error string   `json:"error"`
}

func (h *harness) read(t *testing.T) frame {
	t.Helper()
	var f frame
	h.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, h.conn.ReadJSON(&f))
	return f
}

// await reads frames until one of the given type shows up.
func (h *harness) await(t *testing.T, typ string) frame {
	t.Helper()
	for i := 0; i < 10; i++ {
		if f := h.read(t); f.Type == typ {
			return f
		}
	}
	t.Fatalf("no %s frame", typ)
	return frame{}
}

func TestManager_PingPong(t *testing.T) {
	h := newHarness(t)

	h.send(t, ClientMessage{Type: MessageTypePing})

	assert.Equal(t, MessageTypePong, h.read(t).Type)
}

func TestManager_UnknownFrame(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	f := h.read(t)
	assert.Equal(t, MessageTypeError, f.Type)
	assert.Equal(t, "Invalid message format", f.Error)

	h.send(t, ClientMessage{Type: "shout"})
	assert.Equal(t, "Unknown message type", h.read(t).Error)
}

func TestManager_SubscribeStreamsSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, "items/a", service.Record{"createdAt": 1}, false))

	h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: FeedListings})

	first := h.await(t, MessageTypeSnapshot)
	assert.Equal(t, FeedListings, first.Key)
	assert.Equal(t, []string{"a"}, first.Items)

	require.NoError(t, h.store.Set(ctx, "items/b", service.Record{"createdAt": 2}, false))

	second := h.await(t, MessageTypeSnapshot)
	assert.Equal(t, []string{"a", "b"}, second.Items)
	assert.Equal(t, 1, h.client(t).Subscriptions())
}

func TestManager_SubscribedAckPrecedesSnapshot(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(context.Background(), "items/a", service.Record{"createdAt": 1}, false))

	for i := 0; i < 5; i++ {
		h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: FeedListings})
		ack := h.read(t)
		assert.Equal(t, MessageTypeSubscribed, ack.Type)
		assert.Equal(t, FeedListings, ack.Key)
		assert.Equal(t, MessageTypeSnapshot, h.read(t).Type)

		h.send(t, ClientMessage{Type: MessageTypeUnsubscribe, Feed: FeedListings})
		assert.Equal(t, MessageTypeUnsubscribed, h.await(t, MessageTypeUnsubscribed).Type)
	}
}

func TestManager_OpenFailureSendsError(t *testing.T) {
	h := newHarness(t)

	h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: "unknown"})

	f := h.read(t)
	assert.Equal(t, MessageTypeError, f.Type)
	assert.Equal(t, "Unknown feed", f.Error)
	assert.Equal(t, 0, h.client(t).Subscriptions())
}

func TestManager_ListenerErrorKeepsFeed(t *testing.T) {
	h := newHarness(t)

	h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: FeedListings})
	h.await(t, MessageTypeSnapshot)

	h.store.InjectError("items", assert.AnError)
	f := h.await(t, MessageTypeError)
	assert.Equal(t, "Feed interrupted", f.Error)

	require.NoError(t, h.store.Set(context.Background(), "items/c", service.Record{"createdAt": 3}, false))
	assert.Equal(t, []string{"c"}, h.await(t, MessageTypeSnapshot).Items)
}

func TestManager_UnsubscribeStopsListener(t *testing.T) {
	h := newHarness(t)

	h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: FeedListings})
	h.await(t, MessageTypeSnapshot)
	require.Eventually(t, func() bool { return h.store.Watchers() == 1 }, time.Second, 10*time.Millisecond)

	h.send(t, ClientMessage{Type: MessageTypeUnsubscribe, Feed: FeedListings})
	assert.Equal(t, FeedListings, h.await(t, MessageTypeUnsubscribed).Key)

	assert.Eventually(t, func() bool { return h.store.Watchers() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.client(t).Subscriptions())
}

func TestManager_DisconnectClosesSubscriptions(t *testing.T) {
	h := newHarness(t)

	h.send(t, ClientMessage{Type: MessageTypeSubscribe, Feed: FeedListings})
	h.await(t, MessageTypeSnapshot)
	require.Equal(t, 1, h.manager.ConnectedClients())

	h.conn.Close()

	assert.Eventually(t, func() bool {
		return h.store.Watchers() == 0 && h.manager.ConnectedClients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFeedKey(t *testing.T) {
	assert.Equal(t, "rooms", FeedKey(FeedRooms, ""))
	assert.Equal(t, "messages:room-1", FeedKey(FeedMessages, "room-1"))
}
