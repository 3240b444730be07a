package game

import (
	"context"
	"errors"
	"sync"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

type eventRecord struct {
	Room    string
	Client  string
	Event   string
	Payload any
}

type fakeBus struct {
	mu     sync.Mutex
	events []eventRecord
}

func (b *fakeBus) Broadcast(roomCode, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventRecord{Room: roomCode, Event: event, Payload: payload})
}

func (b *fakeBus) Unicast(clientID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventRecord{Client: clientID, Event: event, Payload: payload})
}

func (b *fakeBus) byType(event string) []eventRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventRecord
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (b *fakeBus) last(event string) (eventRecord, bool) {
	matches := b.byType(event)
	if len(matches) == 0 {
		return eventRecord{}, false
	}
	return matches[len(matches)-1], true
}

type fakeRiddles struct {
	riddle models.Riddle
}

func (f *fakeRiddles) Draw() models.Riddle { return f.riddle }
func (f *fakeRiddles) IntroLine() string   { return "The Oracle stirs." }

// fakeOracle serves a scripted puzzle and derives narrations from the
// puzzle's own survival flags, mirroring the fallback contract.
type fakeOracle struct {
	puzzle       *models.PuzzleChallenge
	puzzleErr    error
	narrationErr error
}

func (f *fakeOracle) GeneratePuzzle(ctx context.Context) (*models.PuzzleChallenge, error) {
	if f.puzzleErr != nil {
		return nil, f.puzzleErr
	}
	p := *f.puzzle
	p.Options = append([]models.PuzzleOption(nil), f.puzzle.Options...)
	return &p, nil
}

func (f *fakeOracle) GenerateNarrations(ctx context.Context, puzzle *models.PuzzleChallenge, groups map[string][]string) ([]models.Narration, error) {
	if f.narrationErr != nil {
		return nil, f.narrationErr
	}
	verdicts := make(map[string]bool)
	for _, o := range puzzle.Options {
		verdicts[o.ID] = o.Survival
	}
	var out []models.Narration
	for _, id := range []string{"A", "B", "C"} {
		players, ok := groups[id]
		if !ok {
			continue
		}
		out = append(out, models.Narration{
			OptionID: id,
			Players:  players,
			Survived: verdicts[id],
			Text:     "fate of option " + id,
		})
	}
	return out, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	records []*models.GameRecord
}

func (a *fakeArchive) SaveGame(record *models.GameRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

var errOracleDown = errors.New("oracle down")

func testPuzzle() *models.PuzzleChallenge {
	return &models.PuzzleChallenge{
		Scenario: "The bridge sways over the chasm.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Dash across", Survival: true},
			{ID: "B", Text: "Crawl slowly", Survival: false},
			{ID: "C", Text: "Turn back", Survival: false},
		},
	}
}
