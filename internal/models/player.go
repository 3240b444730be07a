package models

// Player is one connected participant in a room. ClientID is the
// ephemeral per-connection identity, Name is unique within the room
// and immutable once set.
type Player struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}
