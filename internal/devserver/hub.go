package devserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventType mirrors the Postgres change-feed event kinds the realtime
// channel forwards.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventDelete EventType = "DELETE"
)

// Event is one table change pushed to subscribed clients.
type Event struct {
	Type      EventType `json:"eventType"`
	Table     string    `json:"table"`
	New       Row       `json:"new,omitempty"`
	Old       Row       `json:"old,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans table-change events out to every connected websocket client.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan *Event
	mu         sync.RWMutex
}

// NewHub creates a hub; callers must start Run in a goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Event, 256),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			log.Printf("realtime: client connected (total: %d)", len(h.clients))
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Printf("realtime: client disconnected (remaining: %d)", len(h.clients))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("realtime: failed to marshal event: %v", err)
				continue
			}

			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow client; drop it rather than block the loop.
					go func(c *client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastInsert announces a newly inserted row.
func (h *Hub) BroadcastInsert(table string, row Row) {
	h.broadcast <- &Event{
		Type:      EventInsert,
		Table:     table,
		New:       row,
		Timestamp: time.Now().UnixMilli(),
	}
}

// BroadcastDelete announces a deleted row.
func (h *Hub) BroadcastDelete(table string, row Row) {
	h.broadcast <- &Event{
		Type:      EventDelete,
		Table:     table,
		Old:       row,
		Timestamp: time.Now().UnixMilli(),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleRealtime upgrades the connection and streams events until the
// client goes away.
func (s *Server) HandleRealtime(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) && r.URL.Query().Get("apikey") != s.apiKey {
		respondError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	c := &client{hub: s.hub, conn: conn, send: make(chan []byte, 64)}
	s.hub.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; its job is to notice the close.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
