// Package realtime pushes group events to browsers over websockets.
//
// Every group is a room. Clients connect to /ws/groups/{id} and receive a
// JSON Event whenever the cart, the group or its order changes:
//
//	hub := realtime.NewHub(log)
//	go hub.Run(ctx)
//	hub.Publish(ctx, realtime.Event{Type: realtime.CartUpdated, GroupID: id})
//
// Delivery is best effort. A slow client whose buffer fills is dropped and
// must reconnect.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/groupcart/pkg/metrics"
)

// Event types.
const (
	CartUpdated  = "cart.updated"
	GroupUpdated = "group.updated"
	OrderPlaced  = "order.placed"
	InvoicesSent = "invoices.sent"
)

// Event is one message pushed to a group's room.
type Event struct {
	Type    string    `json:"type"`
	GroupID string    `json:"groupId"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher accepts events. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every published event, in order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub tracks connected clients per group and fans events out to them.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	events   chan Event

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		events: make(chan Event, 256),
		rooms:  make(map[string]map[*client]struct{}),
	}
}

// SetCheckOrigin replaces the default allow-all origin check.
func (h *Hub) SetCheckOrigin(fn func(r *http.Request) bool) {
	h.upgrader.CheckOrigin = fn
}

// Publish queues e for delivery. When the queue is full the event is dropped.
func (h *Hub) Publish(_ context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case h.events <- e:
	default:
		h.log.Warn("realtime: event queue full, dropping", "type", e.Type, "group_id", e.GroupID)
	}
}

// Run delivers queued events until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case e := <-h.events:
			h.broadcast(e)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) broadcast(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("realtime: marshal event", "type", e.Type, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.rooms[e.GroupID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("realtime: client too slow, disconnecting", "group_id", e.GroupID)
		h.unregister(c)
	}
}

// ClientCount returns the number of clients connected to groupID.
func (h *Hub) ClientCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.groupID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.groupID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	room := h.rooms[c.groupID]
	_, ok := room[c]
	if ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.groupID)
		}
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		metrics.RealtimeConnections.Dec()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var all []*client
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.mu.Unlock()
	for _, c := range all {
		h.unregister(c)
	}
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub     *Hub
	groupID string
	conn    *websocket.Conn
	send    chan []byte
}

// Serve upgrades the request and subscribes the connection to groupID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, groupID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("realtime: upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, groupID: groupID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go c.writePump()
	go c.readPump()
}

// readPump only exists to process pongs and notice disconnects; clients
// never send anything meaningful.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("realtime: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
