// Package websocket pushes live race updates to browser clients. Clients
// subscribe to one race; every resolved turn is broadcast as a race state
// snapshot.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mwegmann/gridrace/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message represents a WebSocket message.
type Message struct {
	RaceID string            `json:"race_id"`
	State  *engine.RaceState `json:"state,omitempty"`
	Event  string            `json:"event,omitempty"`
	Data   interface{}       `json:"data,omitempty"`
}

// Client represents a WebSocket client subscribed to one race.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	raceID string
}

// Hub maintains the set of active clients per race and broadcasts messages.
// All map access happens on the Run goroutine.
type Hub struct {
	// Registered clients by race ID
	races map[string]map[*Client]bool

	// Outbound messages to race subscribers
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		races:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades an HTTP request and subscribes the client to a race.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, raceID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		raceID: raceID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToRace sends a race state update to all subscribers of a race.
func (h *Hub) BroadcastToRace(raceID string, state *engine.RaceState) {
	h.broadcast <- &Message{
		RaceID: raceID,
		State:  state,
		Event:  "state_update",
	}
}

// BroadcastEvent sends a custom event to all subscribers of a race.
func (h *Hub) BroadcastEvent(raceID string, event string, data interface{}) {
	h.broadcast <- &Message{
		RaceID: raceID,
		Event:  event,
		Data:   data,
	}
}

// registerClient adds a client to a race.
func (h *Hub) registerClient(client *Client) {
	if h.races[client.raceID] == nil {
		h.races[client.raceID] = make(map[*Client]bool)
	}
	h.races[client.raceID][client] = true

	log.Printf("Client registered for race %s (total clients: %d)",
		client.raceID, len(h.races[client.raceID]))
}

// unregisterClient removes a client from a race.
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.races[client.raceID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.races, client.raceID)
			}

			log.Printf("Client unregistered from race %s (remaining clients: %d)",
				client.raceID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients subscribed to its race.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.races[message.RaceID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, drop it
				h.unregisterClient(client)
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming client messages are not processed; the read loop only
		// keeps the connection alive.
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
