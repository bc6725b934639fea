package notifications

import (
	"context"
	"errors"
	"sync"

	"boardapi/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per signed-in user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	errHubFull   = errors.New("server connection limit reached")
	errUserLimit = errors.New("user connection limit reached")
	errHubClosed = errors.New("hub is shutting down")
)

// Hub tracks the clients watching the live board feed. Anonymous viewers
// register with userID 0 and are only bound by the global limit.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	perUser map[uint]int
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		perUser: make(map[uint]int),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "board feed" }

// Register adds a connection. It fails when the hub or the user is at capacity.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errHubClosed
	}
	if len(h.clients) >= maxTotalConns {
		return nil, errHubFull
	}
	if userID != 0 && h.perUser[userID] >= maxConnsPerUser {
		return nil, errUserLimit
	}

	client := NewClient(h, conn, userID)
	h.clients[client] = struct{}{}
	if userID != 0 {
		h.perUser[userID]++
	}
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send channel. Calling
// it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if client.UserID != 0 {
		if h.perUser[client.UserID]--; h.perUser[client.UserID] <= 0 {
			delete(h.perUser, client.UserID)
		}
	}
	close(client.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

// ClientCount reports the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// StartWiring subscribes the hub to board events published by any instance.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartBoardSubscriber(ctx, h.BroadcastAll)
}

// Shutdown closes every connection with a going-away frame and refuses new
// registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	// WritePump owns the connection; it sends the close frame once Send
	// is closed.
	for client := range h.clients {
		close(client.Send)
		observability.WebSocketConnectionsTotal.Dec()
	}
	h.clients = make(map[*Client]struct{})
	h.perUser = make(map[uint]int)
	return nil
}
