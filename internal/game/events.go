package game

import "github.com/Kingvinu7/Riddly-sub000/internal/models"

// Event names sent through the hub. Payload shapes are the structs
// below; all of them are safe to marshal as-is.
const (
	EventRoomCreated     = "room_created"
	EventJoinResult      = "join_result"
	EventRosterChanged   = "roster_changed"
	EventPhaseStarted    = "phase_started"
	EventOracleIntro     = "oracle_intro"
	EventRiddleRevealed  = "riddle_revealed"
	EventTimerTick       = "timer_tick"
	EventSubmissionCount = "submission_count"
	EventRiddleResults   = "riddle_results"
	EventPuzzleResult    = "puzzle_result"
	EventRoundSummary    = "round_summary"
	EventGameOver        = "game_over"
)

type RoomCreatedPayload struct {
	Code   string           `json:"code"`
	Player *models.Player   `json:"player"`
	Roster []*models.Player `json:"roster"`
}

type JoinResultPayload struct {
	Code   string           `json:"code"`
	Player *models.Player   `json:"player"`
	Roster []*models.Player `json:"roster"`
}

type RosterChangedPayload struct {
	Code   string           `json:"code"`
	Roster []*models.Player `json:"roster"`
}

type PhaseStartedPayload struct {
	Phase        models.Phase          `json:"phase"`
	Round        int                   `json:"round"`
	MaxRounds    int                   `json:"max_rounds"`
	Duration     int                   `json:"duration"`
	Scenario     string                `json:"scenario,omitempty"`
	Options      []models.PuzzleOption `json:"options,omitempty"`
	Participants int                   `json:"participants,omitempty"`
}

type OracleIntroPayload struct {
	Text string `json:"text"`
}

type RiddleRevealedPayload struct {
	Question string `json:"question"`
}

type TimerTickPayload struct {
	Phase     models.Phase `json:"phase"`
	Remaining int          `json:"remaining"`
}

type SubmissionCountPayload struct {
	Count    int `json:"count"`
	Expected int `json:"expected"`
}

// RiddleSubmissionResult is one ledger entry with its evaluation flags,
// reported in timestamp order.
type RiddleSubmissionResult struct {
	Player   string `json:"player"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	IsWinner bool   `json:"is_winner"`
}

type RiddleResultsPayload struct {
	Submissions []RiddleSubmissionResult `json:"submissions"`
	Winner      string                   `json:"winner,omitempty"`
	Answer      string                   `json:"answer"`
}

type RoundSummaryPayload struct {
	Round    int                              `json:"round"`
	Roster   []*models.Player                 `json:"roster"`
	History  map[string][]models.RoundOutcome `json:"history"`
	Winner   string                           `json:"riddle_winner,omitempty"`
	Outcomes map[string]models.RoundOutcome   `json:"outcomes"`
}

type GameOverPayload struct {
	Standings []*models.Player `json:"standings"`
	Winner    string           `json:"winner,omitempty"`
	Message   string           `json:"message"`
}
