package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/status"
	"candy-bianca-backend/internal/timer"
)

// Hub maintains active websocket clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger *zap.Logger
	now    func() time.Time
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("WebSocket client registered", zap.String("client", c.id), zap.Int("total_clients", total))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("WebSocket client unregistered", zap.String("client", c.id))

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					close(c.send)
					delete(h.clients, c)
					h.logger.Warn("Client send buffer full, unregistering", zap.String("client", c.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues msg for every client. Messages are dropped when the
// queue is full.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = h.now().UTC()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Hub broadcast channel full, message dropped", zap.String("message_type", string(msg.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnStatus broadcasts every poll result.
func (h *Hub) OnStatus(_ context.Context, deviceID string, raw status.Raw) {
	h.Broadcast(Message{Type: MessageTypeStatus, DeviceID: deviceID, Data: status.Interpret(raw)})
}

// CountdownChanged broadcasts countdown updates.
func (h *Hub) CountdownChanged(deviceID string, action timer.Action, c timer.Countdown) {
	h.Broadcast(Message{
		Type:     MessageTypeCountdown,
		DeviceID: deviceID,
		Data: CountdownData{
			Action:    string(action),
			Active:    c.Active,
			Duration:  c.Duration,
			EndsAt:    c.EndsAt,
			UpdatedAt: c.UpdatedAt,
		},
	})
}

// Finished broadcasts finish notifications.
func (h *Hub) Finished(deviceID, message string) {
	h.Broadcast(Message{Type: MessageTypeFinished, DeviceID: deviceID, Data: FinishedData{Message: message}})
}

// ActionCompleted broadcasts start, stop and refresh results.
func (h *Hub) ActionCompleted(deviceID string, result entry.ActionResult) {
	h.Broadcast(Message{Type: MessageTypeAction, DeviceID: deviceID, Data: result})
}
