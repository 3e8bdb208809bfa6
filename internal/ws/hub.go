// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the wire format pushed to connected agents.
type Event struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

const (
	EventClientChanged = "client.changed"
	EventClientsMerged = "clients.merged"
	EventConnected     = "connected"
)

// Hub fans domain events out to every connected agent session. Events are
// advisory: a dropped message only delays the next list refresh.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// ClientChanged notifies agents that a client record was created or modified.
func (h *Hub) ClientChanged(clientID int64) {
	h.publish(&Event{
		Type:      EventClientChanged,
		Data:      map[string]any{"client_id": clientID},
		Timestamp: time.Now().UTC(),
	})
}

// ClientsMerged notifies agents that a duplicate was absorbed, so open views
// of the secondary client can redirect to the surviving record.
func (h *Hub) ClientsMerged(mainID, secondaryID int64) {
	h.publish(&Event{
		Type: EventClientsMerged,
		Data: map[string]any{
			"main_client_id":      mainID,
			"secondary_client_id": secondaryID,
		},
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) publish(event *Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Event broadcast buffer full, dropping event", zap.String("type", event.Type))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info("Websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.Int("total", h.totalClients()))

	client.send <- mustMarshal(&Event{
		Type:      EventConnected,
		Data:      map[string]any{"user_id": client.userID},
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Info("Websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", h.totalClients()))
		}
	}
}

func (h *Hub) broadcastEvent(event *Event) {
	data := mustMarshal(event)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Slow consumer, let its write pump die
			}
		}
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}

func mustMarshal(event *Event) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		// Event payloads are plain maps of scalars, this cannot fail
		return []byte(`{"type":"error"}`)
	}
	return data
}
