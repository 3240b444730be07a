package game

import (
	"context"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// Broadcaster delivers events to connected clients. Implemented by the
// websocket hub; sessions never talk to connections directly.
type Broadcaster interface {
	Broadcast(roomCode, event string, payload any)
	Unicast(clientID, event string, payload any)
}

// NarrativeOracle produces puzzle content and outcome narrations. It
// may be backed by a remote model or by the static fallback table; a
// session must behave identically with either.
type NarrativeOracle interface {
	GeneratePuzzle(ctx context.Context) (*models.PuzzleChallenge, error)
	GenerateNarrations(ctx context.Context, puzzle *models.PuzzleChallenge, groups map[string][]string) ([]models.Narration, error)
}

// RiddleSource hands out riddles and oracle flavor lines.
type RiddleSource interface {
	Draw() models.Riddle
	IntroLine() string
}

// Archiver stores the result of a finished game.
type Archiver interface {
	SaveGame(record *models.GameRecord) error
}
