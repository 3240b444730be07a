package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Kingvinu7/Riddly-sub000/internal/game"
	"github.com/Kingvinu7/Riddly-sub000/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientCommand is the inbound message envelope, mirroring the
// outbound WSMessage shape.
type ClientCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type createRoomData struct {
	Name string `json:"name"`
}

type joinRoomData struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type roomOnlyData struct {
	Code string `json:"code"`
}

type submitAnswerData struct {
	Code   string `json:"code"`
	Answer string `json:"answer"`
}

type submitChoiceData struct {
	Code     string `json:"code"`
	OptionID string `json:"option_id"`
}

// WSHandler owns the websocket lifecycle: assigns the ephemeral client
// id, routes game commands to the registry and tears the player down
// on disconnect. Command errors go back to the sender only.
type WSHandler struct {
	hub      *ws.Hub
	registry *game.Registry

	mu        sync.Mutex
	roomsByID map[string]string // clientID -> room code
}

func NewWSHandler(hub *ws.Hub, registry *game.Registry) *WSHandler {
	return &WSHandler{
		hub:       hub,
		registry:  registry,
		roomsByID: make(map[string]string),
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws: upgrade failed")
		return
	}

	clientID := uuid.NewString()
	h.hub.Register(clientID, conn)
	h.hub.Unicast(clientID, "connected", gin.H{"client_id": clientID})

	defer h.disconnect(clientID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !h.hub.Allow(clientID) {
			continue
		}

		var cmd ClientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendError(clientID, "invalid message")
			continue
		}
		h.dispatch(clientID, cmd)
	}
}

func (h *WSHandler) dispatch(clientID string, cmd ClientCommand) {
	switch cmd.Type {
	case "create_room":
		var d createRoomData
		if err := json.Unmarshal(cmd.Data, &d); err != nil || d.Name == "" {
			h.sendError(clientID, "name is required")
			return
		}
		session, code := h.registry.CreateRoom(clientID, d.Name)
		h.setRoom(clientID, code)
		h.hub.JoinRoom(code, clientID)
		state := session.State()
		h.hub.Unicast(clientID, game.EventRoomCreated, game.RoomCreatedPayload{
			Code:   code,
			Player: state.Roster[0],
			Roster: state.Roster,
		})

	case "join_room":
		var d joinRoomData
		if err := json.Unmarshal(cmd.Data, &d); err != nil || d.Code == "" || d.Name == "" {
			h.sendError(clientID, "code and name are required")
			return
		}
		_, roster, err := h.registry.JoinRoom(d.Code, clientID, d.Name)
		if err != nil {
			h.sendError(clientID, err.Error())
			return
		}
		h.setRoom(clientID, d.Code)
		h.hub.JoinRoom(d.Code, clientID)
		h.hub.Unicast(clientID, game.EventJoinResult, game.JoinResultPayload{
			Code:   d.Code,
			Player: roster[len(roster)-1],
			Roster: roster,
		})

	case "start_game":
		h.withSession(clientID, cmd.Data, func(s *game.Session) error {
			return s.Start(clientID)
		})

	case "submit_answer":
		var d submitAnswerData
		if err := json.Unmarshal(cmd.Data, &d); err != nil || d.Code == "" {
			h.sendError(clientID, "code is required")
			return
		}
		session, err := h.registry.Get(d.Code)
		if err != nil {
			h.sendError(clientID, err.Error())
			return
		}
		if err := session.SubmitAnswer(clientID, d.Answer); err != nil {
			h.sendError(clientID, err.Error())
		}

	case "submit_choice":
		var d submitChoiceData
		if err := json.Unmarshal(cmd.Data, &d); err != nil || d.Code == "" {
			h.sendError(clientID, "code is required")
			return
		}
		session, err := h.registry.Get(d.Code)
		if err != nil {
			h.sendError(clientID, err.Error())
			return
		}
		if err := session.SubmitChoice(clientID, d.OptionID); err != nil {
			h.sendError(clientID, err.Error())
		}

	case "play_again":
		h.withSession(clientID, cmd.Data, func(s *game.Session) error {
			return s.PlayAgain(clientID)
		})

	default:
		h.sendError(clientID, "unknown command")
	}
}

func (h *WSHandler) withSession(clientID string, data json.RawMessage, fn func(*game.Session) error) {
	var d roomOnlyData
	if err := json.Unmarshal(data, &d); err != nil || d.Code == "" {
		h.sendError(clientID, "code is required")
		return
	}
	session, err := h.registry.Get(d.Code)
	if err != nil {
		h.sendError(clientID, err.Error())
		return
	}
	if err := fn(session); err != nil {
		h.sendError(clientID, err.Error())
	}
}

func (h *WSHandler) disconnect(clientID string) {
	h.mu.Lock()
	code, ok := h.roomsByID[clientID]
	delete(h.roomsByID, clientID)
	h.mu.Unlock()

	if ok {
		h.registry.RemovePlayer(code, clientID)
		h.hub.LeaveRoom(code, clientID)
	}
	h.hub.Unregister(clientID)
}

func (h *WSHandler) setRoom(clientID, code string) {
	h.mu.Lock()
	h.roomsByID[clientID] = code
	h.mu.Unlock()
}

func (h *WSHandler) sendError(clientID, message string) {
	h.hub.Unicast(clientID, "error", ErrorResponse{Error: message})
}
