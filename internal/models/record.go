package models

import "time"

// GameRecord is the archived result of one finished game. Live room
// state is never persisted; only completed games are written.
type GameRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RoomCode  string         `gorm:"size:8;index" json:"room_code"`
	Rounds    int            `gorm:"not null" json:"rounds"`
	Winner    string         `gorm:"size:100" json:"winner"`
	Results   []PlayerResult `gorm:"foreignKey:GameRecordID" json:"results,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type PlayerResult struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	GameRecordID uint   `gorm:"not null;index" json:"game_record_id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Score        int    `gorm:"not null;default:0" json:"score"`
	Wins         int    `gorm:"not null;default:0" json:"wins"`
	Losses       int    `gorm:"not null;default:0" json:"losses"`
	Position     int    `gorm:"not null;default:0" json:"position"`
}
