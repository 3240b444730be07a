package oracle

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// Fallback is the deterministic, non-AI oracle. Puzzles come from a
// fixed table and narrations are templated; survival verdicts are read
// straight off the puzzle's own option flags. It needs no network and
// never fails, which is what the game leans on when the remote model
// is unconfigured or misbehaving.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

var fallbackPuzzles = []models.PuzzleChallenge{
	{
		Scenario: "The temple doors slam shut behind you and sand begins pouring from the ceiling.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Climb the crumbling statue toward the skylight", Survival: true},
			{ID: "B", Text: "Dig into the sand looking for a trapdoor", Survival: false},
			{ID: "C", Text: "Brace the doors open with your torch", Survival: false},
		},
	},
	{
		Scenario: "Your raft splinters mid-river and three currents pull in different directions.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Swim for the rocky outcrop upstream", Survival: false},
			{ID: "B", Text: "Ride the calm current toward the reeds", Survival: true},
			{ID: "C", Text: "Dive under to pass beneath the rapids", Survival: false},
		},
	},
	{
		Scenario: "The rope bridge frays as fog swallows both ends of the canyon.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Sprint across before it gives way", Survival: false},
			{ID: "B", Text: "Crawl back slowly the way you came", Survival: true},
			{ID: "C", Text: "Cut the bridge and swing to the cliff face", Survival: false},
		},
	},
	{
		Scenario: "A growl echoes through the market ruins and the only lantern gutters out.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Freeze in place until the growling passes", Survival: false},
			{ID: "B", Text: "Throw your rations one way and run the other", Survival: true},
			{ID: "C", Text: "Climb into the nearest empty stall", Survival: false},
		},
	},
	{
		Scenario: "The lift cage shudders to a halt between floors of the abandoned mine.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Pry the cage open and jump to the ledge", Survival: false},
			{ID: "B", Text: "Wait and ration your water", Survival: false},
			{ID: "C", Text: "Climb the greased cable to the floor above", Survival: true},
		},
	},
	{
		Scenario: "Lightning sets the windmill ablaze while the storm cellar is already flooding.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Shelter in the flooding cellar anyway", Survival: true},
			{ID: "B", Text: "Run for the tree line through open field", Survival: false},
			{ID: "C", Text: "Stay low inside the burning windmill", Survival: false},
		},
	},
}

var survivalTemplates = []string{
	"%s chose wisely — the Oracle nods as they walk out unscathed.",
	"Against all odds, %s emerge on the other side, hearts pounding but alive.",
	"The Oracle smiles. %s live to face another riddle.",
}

var doomTemplates = []string{
	"A hush falls. %s made their choice, and the Oracle claims them.",
	"The path betrays %s — their tale ends here, at least for this round.",
	"%s vanish into the dark. The Oracle whispers: a bold choice, but a wrong one.",
}

func (f *Fallback) GeneratePuzzle(ctx context.Context) (*models.PuzzleChallenge, error) {
	picked := fallbackPuzzles[rand.Intn(len(fallbackPuzzles))]
	puzzle := picked
	puzzle.Options = append([]models.PuzzleOption(nil), picked.Options...)
	return &puzzle, nil
}

func (f *Fallback) GenerateNarrations(ctx context.Context, puzzle *models.PuzzleChallenge, groups map[string][]string) ([]models.Narration, error) {
	verdicts := make(map[string]bool, len(puzzle.Options))
	for _, o := range puzzle.Options {
		verdicts[o.ID] = o.Survival
	}

	out := make([]models.Narration, 0, len(groups))
	for i, id := range sortedKeys(groups) {
		names := strings.Join(groups[id], ", ")
		survived := verdicts[id]
		template := doomTemplates[i%len(doomTemplates)]
		if survived {
			template = survivalTemplates[i%len(survivalTemplates)]
		}
		out = append(out, models.Narration{
			OptionID: id,
			Players:  groups[id],
			Survived: survived,
			Text:     fmt.Sprintf(template, names),
		})
	}
	return out, nil
}
