package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event kinds pushed to connected clients.
const (
	EventWeekUpdated  = "week.updated"
	EventFoodsUpdated = "foods.updated"
	EventStoreImport  = "store.imported"
)

type WSClient struct {
	User string
	Conn *websocket.Conn

	writeMu sync.Mutex
}

// writeWait bounds every websocket write.
var writeWait = 10 * time.Second

// Write serialises writes; a websocket connection allows one writer at a time.
// A client that stops reading fails the write once writeWait passes.
func (c *WSClient) Write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

// RealtimeHub fans change events out to every open connection of a user.
// A nil hub drops everything.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.User] == nil {
		h.clients[c.User] = make(map[*WSClient]struct{})
	}
	h.clients[c.User][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.User]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.User)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Connections reports how many clients user has open.
func (h *RealtimeHub) Connections(user string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[user])
}

// Broadcast writes outside the lock. Clients whose write fails are dropped.
func (h *RealtimeHub) Broadcast(user, kind string, payload any) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(map[string]any{"kind": kind, "data": payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[user]))
	for c := range h.clients[user] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(websocket.TextMessage, msg); err != nil {
			h.Unregister(c)
		}
	}
}

// BroadcastAll sends an event to every connected user.
func (h *RealtimeHub) BroadcastAll(kind string, payload any) {
	if h == nil {
		return
	}
	h.mu.RLock()
	users := make([]string, 0, len(h.clients))
	for u := range h.clients {
		users = append(users, u)
	}
	h.mu.RUnlock()
	for _, u := range users {
		h.Broadcast(u, kind, payload)
	}
}
