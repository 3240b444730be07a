package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// WSMessage is the JSON envelope for every event sent to clients.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	limiter *rate.Limiter
}

func (c *client) send(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks every connection by ephemeral client id and the set of
// clients inside each room. It is the only thing that touches
// websocket connections; game code goes through Broadcast/Unicast.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
}

func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientID] = &client{
		conn:    conn,
		limiter: rate.NewLimiter(5, 10),
	}
	log.Debug().Str("client", clientID).Msg("ws: client connected")
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.conn.Close()
		delete(h.clients, clientID)
	}
	for code, members := range h.rooms {
		if _, ok := members[clientID]; ok {
			delete(members, clientID)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	log.Debug().Str("client", clientID).Msg("ws: client disconnected")
}

func (h *Hub) JoinRoom(roomCode, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[string]*client)
	}
	h.rooms[roomCode][clientID] = c
}

func (h *Hub) LeaveRoom(roomCode, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomCode]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// Allow reports whether the client is within its command rate budget.
func (h *Hub) Allow(clientID string) bool {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.limiter.Allow()
}

// Broadcast sends an event to everyone in the room. A room that no
// longer exists is a no-op, which makes late deliveries harmless.
func (h *Hub) Broadcast(roomCode, event string, payload any) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[roomCode]))
	for _, c := range h.rooms[roomCode] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	msg := WSMessage{Type: event, Data: payload}
	for _, c := range members {
		if err := c.send(msg); err != nil {
			log.Warn().Err(err).Str("room", roomCode).Msg("ws: write error")
		}
	}
}

// Unicast sends an event to a single client.
func (h *Hub) Unicast(clientID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.send(WSMessage{Type: event, Data: payload}); err != nil {
		log.Warn().Err(err).Str("client", clientID).Msg("ws: write error")
	}
}
