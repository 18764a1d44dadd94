package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// DashboardRoom receives every event regardless of activity.
	DashboardRoom int64 = 0
)

// Change events pushed to live clients.
const (
	EventActivityCreated     = "activity_created"
	EventActivityUpdated     = "activity_updated"
	EventActivityDeleted     = "activity_deleted"
	EventRegistrationCreated = "registration_created"
	EventRegistrationDeleted = "registration_deleted"
)

// Message is the WebSocket message envelope and the Redis payload.
type Message struct {
	Event      string          `json:"event"`
	ActivityID int64           `json:"activity_id"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Publisher fans a message out to every instance (including this one).
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber delivers messages published by any instance until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Message)) error
}

// Hub maintains activity_id -> set of connections and broadcasts change events.
// With a Publisher, events go through Redis and each instance's subscriber does the
// local broadcast, so every client gets exactly one copy.
type Hub struct {
	rooms  map[int64]map[string]*Client
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
}

// NewHub creates a new WebSocket hub. pub may be nil for single-instance deployments.
func NewHub(logger *zap.Logger, pub Publisher) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[int64]map[string]*Client),
		logger: logger,
		pub:    pub,
	}
}

// Register adds a client to its room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.ActivityID] == nil {
		h.rooms[c.ActivityID] = make(map[string]*Client)
	}
	h.rooms[c.ActivityID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("live client joined", zap.String("client_id", c.ID), zap.Int64("activity_id", c.ActivityID))
}

// Unregister removes a client from its room.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.ActivityID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.ActivityID)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("live client left", zap.String("client_id", c.ID), zap.Int64("activity_id", c.ActivityID))
}

// Broadcast sends msg to the dashboard room and to the activity's room (local only).
func (h *Hub) Broadcast(msg Message) {
	// Sends happen under the read lock: a client's channel is closed only after Unregister.
	h.mu.RLock()
	defer h.mu.RUnlock()
	deliver(h.rooms[DashboardRoom], msg)
	if msg.ActivityID != DashboardRoom {
		deliver(h.rooms[msg.ActivityID], msg)
	}
}

func deliver(room map[string]*Client, msg Message) {
	for _, c := range room {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Notify publishes a change event. It never fails the caller: a publish error
// degrades to a local broadcast.
func (h *Hub) Notify(ctx context.Context, activityID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal live event", zap.String("event", event), zap.Error(err))
		return
	}
	msg := Message{Event: event, ActivityID: activityID, Data: data}
	if h.pub != nil {
		err := h.pub.Publish(ctx, msg)
		if err == nil {
			return
		}
		h.logger.Warn("publish live event failed, broadcasting locally", zap.String("event", event), zap.Error(err))
	}
	h.Broadcast(msg)
}

// Run relays messages from sub to local clients until ctx is done.
func (h *Hub) Run(ctx context.Context, sub Subscriber) error {
	h.logger.Info("live feed relay started")
	return sub.Subscribe(ctx, h.Broadcast)
}

// RoomSize returns the number of connected clients in a room.
func (h *Hub) RoomSize(activityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[activityID])
}
