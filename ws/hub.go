package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const sendBuffer = 64

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	// types filters the event feed; empty means every type.
	types map[string]bool
}

func (c *Client) wants(eventType string) bool {
	return len(c.types) == 0 || c.types[eventType]
}

// Hub fans quiz events out to live connections. Events carrying a user_id
// reach only that user's connections; the rest go to everyone.
type Hub struct {
	clients map[*websocket.Conn]*Client
	byUser  map[string]map[*websocket.Conn]*Client
	mu      sync.RWMutex
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*Client),
		byUser:  make(map[string]map[*websocket.Conn]*Client),
		now:     time.Now,
	}
}

// Event is the JSON frame sent to clients.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Register tracks a connection and starts its pumps. userID may be empty.
func (h *Hub) Register(conn *websocket.Conn, userID string, types []string) *Client {
	c := &Client{Conn: conn, Send: make(chan []byte, sendBuffer), UserID: userID}
	if len(types) > 0 {
		c.types = make(map[string]bool, len(types))
		for _, t := range types {
			c.types[t] = true
		}
	}

	h.mu.Lock()
	h.clients[conn] = c
	if userID != "" {
		if h.byUser[userID] == nil {
			h.byUser[userID] = make(map[*websocket.Conn]*Client)
		}
		h.byUser[userID][conn] = c
	}
	h.mu.Unlock()

	go h.readPump(c)
	go h.writePump(c)
	return c
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[conn]
	if !ok {
		return
	}
	close(c.Send)
	delete(h.clients, conn)
	if peers := h.byUser[c.UserID]; peers != nil {
		delete(peers, conn)
		if len(peers) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

// Notify implements services.Notifier.
func (h *Hub) Notify(eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Data: payload, Timestamp: h.now().Unix()})
	if err != nil {
		log.Println("ws event marshal error:", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	targets := h.clients
	if userID := recipient(payload); userID != "" {
		targets = h.byUser[userID]
	}
	for _, c := range targets {
		if !c.wants(eventType) {
			continue
		}
		// a slow client misses the frame rather than stalling the request
		select {
		case c.Send <- data:
		default:
		}
	}
}

func recipient(payload any) string {
	m, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["user_id"].(string)
	return id
}

func (h *Hub) GetStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int{
		"connections": len(h.clients),
		"users":       len(h.byUser),
	}
}

func (h *Hub) readPump(c *Client) {
	defer h.Unregister(c.Conn)
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
