package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// StorageEvent mirrors the browser storage event: a key in the visitor's
// area was written. Origin is the connection that caused it, if known, so it
// can skip its own echo.
type StorageEvent struct {
	Key    string `json:"key"`
	WorkID string `json:"workId"`
	Origin string `json:"origin,omitempty"`
}

type envelope struct {
	visitorID string
	origin    string
	payload   []byte
}

// StorageHub tracks websocket clients per visitor and delivers storage events
// to every connection owned by that visitor.
type StorageHub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
	done       chan struct{}
}

// NewStorageHub creates a hub. backlog bounds queued events; Publish drops
// events once it is full.
func NewStorageHub(backlog int, logger *logging.ChanneledLogger) *StorageHub {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if backlog < 1 {
		backlog = 1
	}
	return &StorageHub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, backlog),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing every
// client's send channel.
func (h *StorageHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for visitorID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, visitorID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.VisitorID]; !ok {
				h.clients[client.VisitorID] = make(map[*Client]bool)
			}
			h.clients[client.VisitorID][client] = true
			h.mu.Unlock()
			h.logger.Messaging().Debug("Storage client registered",
				"visitorId", logging.SanitizeVisitorID(client.VisitorID), "connection", client.ID)

		case client := <-h.unregister:
			h.remove(client)

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// Done is closed once Run has returned.
func (h *StorageHub) Done() <-chan struct{} { return h.done }

func (h *StorageHub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.VisitorID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.VisitorID)
	}
	h.logger.Messaging().Debug("Storage client unregistered",
		"visitorId", logging.SanitizeVisitorID(client.VisitorID), "connection", client.ID)
}

func (h *StorageHub) deliver(env envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[env.visitorID] {
		if env.origin != "" && client.ID == env.origin {
			continue
		}
		select {
		case client.Send <- env.payload:
		default:
			h.logger.Messaging().Warn("Storage client send buffer full, event dropped",
				"visitorId", logging.SanitizeVisitorID(env.visitorID), "connection", client.ID)
		}
	}
}

// Register queues a client for registration.
func (h *StorageHub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister queues a client for removal.
func (h *StorageHub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish implements StoragePublisher. It never blocks.
func (h *StorageHub) Publish(visitorID string, event StorageEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Messaging().Error("Failed to encode storage event", "error", err.Error())
		return
	}

	select {
	case h.broadcast <- envelope{visitorID: visitorID, origin: event.Origin, payload: payload}:
	default:
		h.logger.Messaging().Warn("Storage event backlog full, event dropped",
			"visitorId", logging.SanitizeVisitorID(visitorID), "key", event.Key)
	}
}

// ConnectionCount returns the number of open connections for visitorID.
func (h *StorageHub) ConnectionCount(visitorID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[visitorID])
}
