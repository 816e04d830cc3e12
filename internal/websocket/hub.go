package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"notetrack-be/internal/pkg/logger"
	"notetrack-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	hubModule       = "FeedHub"
	clusterChannel  = "note_feed_events"
	broadcastTarget = "*"
)

// Frame is what a connected client receives for every note event.
type Frame struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// clusterMessage carries a frame between instances sharing the Redis channel.
type clusterMessage struct {
	Origin  string          `json:"origin"`
	Targets []string        `json:"targets"`
	Message json.RawMessage `json:"message"`
}

// Hub keeps the live connections of every user and pushes note events to the
// users they concern: the author and the assignee. Events without an addressee,
// such as a stage deletion, go to everyone.
type Hub struct {
	// UserID -> connections (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Optional; fans frames out to other instances
	rdb    *redis.Client
	origin string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run owns the client map until ctx is cancelled. Send channels are closed here only.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for userId, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, userId)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info(hubModule, "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

// leave hands the client back to Run, or drops it if the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// join registers the client, reporting false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// ConnectedUsers reports how many distinct users hold a live connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers the event to local clients and, when Redis is configured,
// to the other instances. It never blocks on a slow client.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(Frame{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}

	targets := Recipients(event)
	h.deliver(targets, data)

	if h.rdb == nil {
		return nil
	}
	msg := clusterMessage{Origin: h.origin, Message: data}
	if len(targets) == 0 {
		msg.Targets = []string{broadcastTarget}
	}
	for _, t := range targets {
		msg.Targets = append(msg.Targets, t.String())
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, clusterChannel, payload).Err()
}

// deliver pushes data to the targets' connections, or to everyone when targets is empty.
func (h *Hub) deliver(targets []uuid.UUID, data []byte) {
	var stale []*Client

	h.mu.RLock()
	if len(targets) == 0 {
		for _, clients := range h.clients {
			stale = append(stale, trySend(clients, data)...)
		}
	} else {
		for _, userId := range targets {
			stale = append(stale, trySend(h.clients[userId], data)...)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.logger.Warn(hubModule, "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": c.UserID})
		go h.leave(c)
	}
}

func trySend(clients []*Client, data []byte) []*Client {
	var stale []*Client
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
			stale = append(stale, c)
		}
	}
	return stale
}

// Recipients returns the distinct users a note event is addressed to.
// A nil result means broadcast.
func Recipients(event events.Event) []uuid.UUID {
	var out []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, key := range []string{"author_id", "assignee_id"} {
		id, ok := payloadUUID(event.Payload(), key)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// payloadUUID accepts both the in-process form (uuid.UUID) and the decoded JSON form (string).
func payloadUUID(data map[string]interface{}, key string) (uuid.UUID, bool) {
	switch v := data[key].(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, *v != uuid.Nil
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil && id != uuid.Nil
	}
	return uuid.Nil, false
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn(hubModule, "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.origin {
		return
	}

	var targets []uuid.UUID
	broadcast := false
	for _, t := range payload.Targets {
		if t == broadcastTarget {
			broadcast = true
			break
		}
		if id, err := uuid.Parse(t); err == nil {
			targets = append(targets, id)
		}
	}
	if broadcast {
		targets = nil
	} else if len(targets) == 0 {
		return
	}
	h.deliver(targets, payload.Message)
}
