package models

// PuzzleOption is one of the three survival choices. The survival
// verdict is fixed when the puzzle is generated; picking an option
// never changes its outcome. The flag is hidden from clients until
// narration time.
type PuzzleOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Survival bool   `json:"-"`
}

// PuzzleChallenge is the follow-up scenario presented to everyone
// except the riddle winner. Options always has exactly three entries
// with ids A, B and C.
type PuzzleChallenge struct {
	Scenario string         `json:"scenario"`
	Options  []PuzzleOption `json:"options"`
}

// Narration is the oracle's verdict for one group of players that
// picked the same option.
type Narration struct {
	OptionID string   `json:"option_id"`
	Players  []string `json:"players"`
	Survived bool     `json:"survived"`
	Text     string   `json:"narration"`
}
