package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/satvik8373/Rentieo/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// FeedOpener starts a live feed for a client. Implementations attach the
// resulting subscription with Attach.
type FeedOpener interface {
	OpenFeed(ctx context.Context, client *Client, feed, id string) error
}

// Client is one WebSocket connection. Its context ends when the connection
// goes away, which closes every subscription opened for it.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[string]closer
}

type closer interface {
	Close()
}

func NewClient(parent context.Context, userID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(parent)
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]closer),
	}
}

func (c *Client) Context() context.Context {
	return c.ctx
}

// enqueue hands a frame to the write pump, waiting while the buffer is full.
// It reports false once the client is gone.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.Send <- frame:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// track stores a subscription under key, closing any previous one there.
func (c *Client) track(key string, sub closer) {
	c.mu.Lock()
	previous := c.subs[key]
	c.subs[key] = sub
	c.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
}

func (c *Client) untrack(key string) bool {
	c.mu.Lock()
	sub, ok := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()

	if ok {
		sub.Close()
	}
	return ok
}

// forget drops key only if it still maps to sub.
func (c *Client) forget(key string, sub closer) {
	c.mu.Lock()
	if c.subs[key] == sub {
		delete(c.subs, key)
	}
	c.mu.Unlock()
}

// Subscriptions reports how many feeds the client is attached to.
func (c *Client) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Client) close() {
	c.cancel()

	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]closer)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Manager tracks live connections and routes their requests to the feed
// opener.
type Manager struct {
	clients    map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	opener     FeedOpener
	mutex      sync.RWMutex
	done       chan struct{}
}

func NewManager(opener FeedOpener) *Manager {
	return &Manager{
		clients:    make(map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		opener:     opener,
		done:       make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client] = struct{}{}
				m.mutex.Unlock()
				logger.Info("WebSocket client registered: %s (%s)", client.UserID, client.ID)

			case client := <-m.Unregister:
				m.remove(client)

			case <-ctx.Done():
				m.mutex.Lock()
				clients := m.clients
				m.clients = make(map[*Client]struct{})
				m.mutex.Unlock()
				for client := range clients {
					client.close()
				}
				return
			}
		}
	}()
}

// RegisterClient hands a new connection to the manager. It reports false,
// and closes the client, once the manager has stopped.
func (m *Manager) RegisterClient(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		client.close()
		return false
	}
}

func (m *Manager) unregister(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
		client.close()
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	_, ok := m.clients[client]
	delete(m.clients, client)
	m.mutex.Unlock()

	client.close()
	if ok {
		logger.Info("WebSocket client unregistered: %s (%s)", client.UserID, client.ID)
	}
}

// ConnectedClients counts registered connections.
func (m *Manager) ConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads client frames until the connection fails, then unregisters
// the client.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump is the only writer on the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
				c.cancel()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
