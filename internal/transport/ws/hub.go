package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/telemetry"
)

// Hub manages all active WebSocket clients and routes events to users.
// A user may be connected from several clients at once.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	direct     chan *directMsg
	stopped    chan struct{}
}

type directMsg struct {
	userID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *directMsg, 256),
		stopped:    make(chan struct{}),
	}
}

// Run starts the Hub's main event loop and returns when ctx is done.
// Call this in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			return

		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			telemetry.WSConnections.Inc()
			slog.Info("ws client connected", "user_id", client.userID, "users", len(h.clients))

		case client := <-h.unregister:
			if h.remove(client) {
				slog.Info("ws client disconnected", "user_id", client.userID, "users", len(h.clients))
			}

		case msg := <-h.direct:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					slog.Warn("ws client too slow, dropping", "user_id", client.userID)
					h.remove(client)
				}
			}
		}
	}
}

// remove drops a client and closes its channels. Only called from Run.
func (h *Hub) remove(client *Client) bool {
	set, ok := h.clients[client.userID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}

	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
	close(client.done)
	telemetry.WSConnections.Dec()
	return true
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

// BroadcastToUser sends an event to every connection of a user.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("ws hub: marshal event", "type", event.Type, "err", err)
		return
	}

	select {
	case h.direct <- &directMsg{userID: userID, data: data}:
	default:
		slog.Warn("ws hub: queue full, dropping event", "type", event.Type, "user_id", userID)
	}
}
