package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/service"
	"go.uber.org/zap"
)

// Hub fans activity events out to dashboard clients subscribed to a
// workspace. It implements service.EventPublisher.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	logger     *zap.Logger
	mu         sync.RWMutex
}

type envelope struct {
	workspaceID uuid.UUID
	payload     []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.workspaceID != msg.workspaceID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop the event rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and waits for Run to exit.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// PublishActivity implements service.EventPublisher.
func (h *Hub) PublishActivity(workspaceID uuid.UUID, event service.ActivityEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode activity event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- envelope{workspaceID: workspaceID, payload: payload}:
	case <-h.done:
	}
}

// Register attaches a connected client to the hub. After Stop the client is
// closed instead; nothing drains the register channel anymore.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister detaches a client. Safe to call after Stop, when the run loop no
// longer drains the channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
