// Package realtime streams new registrations to connected admin dashboards.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/models"
)

// Event names pushed over the feed.
const (
	EventVisitorRegistered = "visitor.registered"
)

// WSMessage is the wire envelope for feed messages.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher fans a registration event out to other instances.
type Publisher interface {
	PublishRegistration(payload []byte) error
}

// Subscriber receives registration events from other instances.
type Subscriber interface {
	SubscribeRegistrations(handler func(payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected admin clients and broadcasts
// registration events to them. Cross-instance fan-out goes through Redis.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	cancel  func()
}

// NewHub creates the feed hub and starts the cross-instance subscription.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
	}
	if sub != nil {
		cancel, err := sub.SubscribeRegistrations(func(payload []byte) {
			h.broadcast(EventVisitorRegistered, payload)
		})
		if err != nil {
			logger.Warn("registration feed subscription failed", zap.Error(err))
		} else {
			h.cancel = cancel
		}
	}
	return h
}

// Close stops the cross-instance subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("feed client joined", zap.String("client_id", c.ID), zap.Int("clients", n))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("feed client left", zap.String("client_id", c.ID))
}

// VisitorRegistered announces a new registration. Implements the
// registration service's notifier contract. Delivery is best-effort.
func (h *Hub) VisitorRegistered(v *models.Visitor) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishRegistration(payload); err != nil {
			h.logger.Warn("publish registration failed", zap.Error(err))
			// Redis down: still deliver to locally connected clients.
			h.broadcast(EventVisitorRegistered, payload)
		}
		return
	}
	h.broadcast(EventVisitorRegistered, payload)
}

func (h *Hub) broadcast(event string, data []byte) {
	msg, err := json.Marshal(WSMessage{Event: event, Data: data})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer; drop the message rather than block the hub.
		}
	}
}
