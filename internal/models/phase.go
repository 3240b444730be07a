package models

// Phase is one stage of a room's round lifecycle.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseRiddle
	PhasePuzzle
	PhaseEvaluating
	PhaseRoundSummary
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseWaiting:      "waiting",
	PhaseRiddle:       "riddle",
	PhasePuzzle:       "puzzle",
	PhaseEvaluating:   "evaluating",
	PhaseRoundSummary: "round_summary",
	PhaseGameOver:     "game_over",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}
