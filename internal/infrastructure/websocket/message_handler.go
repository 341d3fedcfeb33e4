package websocket

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

// Client frame types.
const (
	MessageTypePing        = "ping"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
)

// Server frame types.
const (
	MessageTypePong         = "pong"
	MessageTypeSnapshot     = "snapshot"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypeError        = "error"
)

// Feeds a client can subscribe to.
const (
	FeedRooms         = "rooms"
	FeedMessages      = "messages"
	FeedListings      = "listings"
	FeedMyListings    = "my_listings"
	FeedAdminListings = "admin_listings"
)

type ClientMessage struct {
	Type string `json:"type"`
	Feed string `json:"feed"`
	ID   string `json:"id,omitempty"`
}

type ServerMessage struct {
	Type      string      `json:"type"`
	Feed      string      `json:"feed,omitempty"`
	Key       string      `json:"key,omitempty"`
	Items     interface{} `json:"items,omitempty"`
	Count     *int        `json:"count,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// FeedKey identifies one subscription of a client.
func FeedKey(feed, id string) string {
	if id == "" {
		return feed
	}
	return feed + ":" + id
}

func (m *Manager) HandleClientMessage(client *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("WebSocket: invalid frame from %s: %v", client.UserID, err)
		client.SendError("", "", "Invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypePing:
		client.send(ServerMessage{Type: MessageTypePong})

	case MessageTypeSubscribe:
		m.handleSubscribe(client, msg)

	case MessageTypeUnsubscribe:
		key := FeedKey(msg.Feed, msg.ID)
		if client.untrack(key) {
			client.send(ServerMessage{Type: MessageTypeUnsubscribed, Feed: msg.Feed, Key: key})
		}

	default:
		client.SendError(msg.Feed, "", "Unknown message type")
	}
}

func (m *Manager) handleSubscribe(client *Client, msg ClientMessage) {
	opener := m.opener
	if opener == nil {
		client.SendError(msg.Feed, "", "Live feeds are not available")
		return
	}

	if err := opener.OpenFeed(client.Context(), client, msg.Feed, msg.ID); err != nil {
		logger.Warn("WebSocket: %s could not open %s: %v", client.UserID, FeedKey(msg.Feed, msg.ID), err)
		client.SendError(msg.Feed, FeedKey(msg.Feed, msg.ID), errorMessage(err))
	}
}

// Attach acknowledges the subscription and then forwards every snapshot of
// sub to the client as a snapshot frame until either side closes.
func Attach[T any](client *Client, feed, id string, sub *subscription.Subscription[T]) {
	key := FeedKey(feed, id)
	client.track(key, sub)
	// The ack is queued before the forwarder starts so it is always the first frame.
	client.send(ServerMessage{Type: MessageTypeSubscribed, Feed: feed, Key: key})

	go func() {
		defer client.forget(key, sub)
		for items := range sub.Updates() {
			count := len(items)
			if !client.send(ServerMessage{Type: MessageTypeSnapshot, Feed: feed, Key: key, Items: items, Count: &count}) {
				sub.Close()
				return
			}
		}
	}()
}

// SendError queues an error frame. Listener errors use it so the client
// knows its last snapshot may be stale.
func (c *Client) SendError(feed, key, message string) {
	c.send(ServerMessage{Type: MessageTypeError, Feed: feed, Key: key, Error: message})
}

func (c *Client) send(msg ServerMessage) bool {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	frame, err := json.Marshal(msg)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s frame: %v", msg.Type, err)
		return true
	}
	return c.enqueue(frame)
}

func errorMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Failed to open feed"
}
