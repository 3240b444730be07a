package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kingvinu7/Riddly-sub000/internal/archive"
	"github.com/Kingvinu7/Riddly-sub000/internal/game"
)

// RoomHandler serves the read-only REST surface. All game commands go
// over the websocket; this is for lobby screens and ops.
type RoomHandler struct {
	registry *game.Registry
	store    archive.Store
}

func NewRoomHandler(registry *game.Registry, store archive.Store) *RoomHandler {
	return &RoomHandler{registry: registry, store: store}
}

func (h *RoomHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": h.registry.Count()})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	session, err := h.registry.Get(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, session.State())
}

func (h *RoomHandler) ListGames(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := h.store.ListGames(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": records})
}
