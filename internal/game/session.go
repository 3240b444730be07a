package game

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// Options holds the tunable knobs of a session. Delays model dramatic
// pacing and carry no correctness weight; a non-positive delay makes
// the corresponding step run inline, which the tests rely on.
type Options struct {
	MaxRounds  int
	MaxPlayers int
	PhaseTicks int
	CodeLength int

	TickInterval   time.Duration
	RevealDelay    time.Duration
	NarrationDelay time.Duration
	SummaryHold    time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxRounds:      5,
		MaxPlayers:     8,
		PhaseTicks:     30,
		CodeLength:     4,
		TickInterval:   time.Second,
		RevealDelay:    3 * time.Second,
		NarrationDelay: 4 * time.Second,
		SummaryHold:    8 * time.Second,
	}
}

// Deps are the collaborators a session talks to. Oracle and Archive
// may be nil; Fallback must not be.
type Deps struct {
	Bus      Broadcaster
	Oracle   NarrativeOracle
	Fallback NarrativeOracle
	Riddles  RiddleSource
	Archive  Archiver
}

// Session owns one room's full game lifecycle. All state is guarded by
// mu; client commands and timer-fired transitions take the same lock,
// so they can never interleave unsafely. Oracle calls run with the
// lock released and re-validate the phase generation before applying
// their result, which also covers the room being deleted mid-call.
type Session struct {
	mu   sync.Mutex
	code string
	opts Options
	deps Deps

	phase    models.Phase
	players  []*models.Player
	round    int
	riddle   models.Riddle
	winnerID string
	winner   string
	puzzle   *models.PuzzleChallenge
	timeLeft int
	history  map[string][]models.RoundOutcome

	riddleLedger *SubmissionLedger
	choiceLedger *SubmissionLedger

	timer  *PhaseTimer
	gen    uint64
	closed bool
}

func NewSession(code string, creator *models.Player, deps Deps, opts Options) *Session {
	return &Session{
		code:    code,
		opts:    opts,
		deps:    deps,
		phase:   models.PhaseWaiting,
		players: []*models.Player{creator},
		history: make(map[string][]models.RoundOutcome),
	}
}

func (s *Session) Code() string { return s.code }

// RoomState is the snapshot served over REST and sent on join.
type RoomState struct {
	Code      string           `json:"code"`
	Phase     models.Phase     `json:"phase"`
	Round     int              `json:"round"`
	MaxRounds int              `json:"max_rounds"`
	TimeLeft  int              `json:"time_left"`
	Roster    []*models.Player `json:"roster"`
}

func (s *Session) State() RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RoomState{
		Code:      s.code,
		Phase:     s.phase,
		Round:     s.round,
		MaxRounds: s.opts.MaxRounds,
		TimeLeft:  s.timeLeft,
		Roster:    s.rosterLocked(),
	}
}

// Join adds a player while the room is still waiting. Returns the
// updated roster. Names are unique case-sensitively and immutable.
func (s *Session) Join(clientID, name string) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrRoomNotFound
	}
	if s.phase != models.PhaseWaiting {
		return nil, ErrGameInProgress
	}
	if len(s.players) >= s.opts.MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range s.players {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}

	s.players = append(s.players, &models.Player{ClientID: clientID, Name: name})
	roster := s.rosterLocked()
	s.deps.Bus.Broadcast(s.code, EventRosterChanged, RosterChangedPayload{Code: s.code, Roster: roster})
	return roster, nil
}

// Remove drops a player from the roster. The second return reports
// whether the room became empty; the registry then deletes it. On an
// empty room the session is closed and its timer cancelled, so no
// scheduled fire can touch it afterwards.
func (s *Session) Remove(clientID string) (removed, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.players {
		if p.ClientID == clientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}

	name := s.players[idx].Name
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	delete(s.history, name)

	if len(s.players) == 0 {
		s.closeLocked()
		return true, true
	}
	s.deps.Bus.Broadcast(s.code, EventRosterChanged, RosterChangedPayload{Code: s.code, Roster: s.rosterLocked()})
	return true, false
}

func (s *Session) closeLocked() {
	s.closed = true
	s.gen++
	s.stopTimerLocked()
}

// Start begins round one. Requires at least two players and a room
// still in the waiting phase.
func (s *Session) Start(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if s.playerByIDLocked(clientID) == nil {
		return ErrNotInRoom
	}
	if s.phase != models.PhaseWaiting {
		return ErrAlreadyStarted
	}
	if len(s.players) < 2 {
		return ErrInsufficientPlayers
	}

	s.beginRoundLocked()
	return nil
}

// PlayAgain re-arms a finished session: scores, round counter and
// history reset, roster and room code preserved.
func (s *Session) PlayAgain(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if s.playerByIDLocked(clientID) == nil {
		return ErrNotInRoom
	}
	if s.phase != models.PhaseGameOver {
		return ErrWrongPhase
	}

	for _, p := range s.players {
		p.Score = 0
	}
	s.round = 0
	s.history = make(map[string][]models.RoundOutcome)
	s.winnerID = ""
	s.winner = ""
	s.puzzle = nil
	s.timeLeft = 0
	s.phase = models.PhaseWaiting
	s.gen++

	s.deps.Bus.Broadcast(s.code, EventRosterChanged, RosterChangedPayload{Code: s.code, Roster: s.rosterLocked()})
	return nil
}

// SubmitAnswer records a riddle answer. First answer per player wins;
// a duplicate is a silent no-op. Answers arriving after the ledger
// closed (timer already fired) are rejected.
func (s *Session) SubmitAnswer(clientID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if s.phase != models.PhaseRiddle {
		return ErrWrongPhase
	}
	if s.playerByIDLocked(clientID) == nil {
		return ErrNotInRoom
	}
	if s.riddleLedger.Closed() {
		return ErrWrongPhase
	}
	if s.riddleLedger.Has(clientID) {
		return nil
	}

	s.riddleLedger.Record(clientID, strings.TrimSpace(text))
	s.deps.Bus.Broadcast(s.code, EventSubmissionCount, SubmissionCountPayload{
		Count:    s.riddleLedger.Len(),
		Expected: len(s.players),
	})
	return nil
}

// SubmitChoice records a puzzle option pick. The riddle winner is
// excluded from this phase entirely.
func (s *Session) SubmitChoice(clientID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if s.phase != models.PhasePuzzle {
		return ErrWrongPhase
	}
	if s.playerByIDLocked(clientID) == nil {
		return ErrNotInRoom
	}
	if clientID == s.winnerID {
		return ErrWrongPhase
	}
	if s.puzzle == nil || !validOption(s.puzzle, optionID) {
		return ErrWrongPhase
	}
	if s.choiceLedger.Closed() {
		return ErrWrongPhase
	}
	if s.choiceLedger.Has(clientID) {
		return nil
	}

	s.choiceLedger.Record(clientID, optionID)
	expected := len(s.players)
	if s.winnerID != "" {
		expected--
	}
	s.deps.Bus.Broadcast(s.code, EventSubmissionCount, SubmissionCountPayload{
		Count:    s.choiceLedger.Len(),
		Expected: expected,
	})
	return nil
}

func validOption(p *models.PuzzleChallenge, id string) bool {
	for _, o := range p.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// beginRoundLocked enters the riddle phase of the next round. Round
// one also seeds an empty history record per player.
func (s *Session) beginRoundLocked() {
	s.round++
	s.riddle = s.deps.Riddles.Draw()
	s.riddleLedger = NewSubmissionLedger()
	s.choiceLedger = nil
	s.winnerID = ""
	s.winner = ""
	s.puzzle = nil

	if s.round == 1 {
		for _, p := range s.players {
			s.history[p.Name] = []models.RoundOutcome{}
		}
	}

	s.phase = models.PhaseRiddle
	s.gen++
	s.timeLeft = s.opts.PhaseTicks

	s.deps.Bus.Broadcast(s.code, EventPhaseStarted, PhaseStartedPayload{
		Phase:     models.PhaseRiddle,
		Round:     s.round,
		MaxRounds: s.opts.MaxRounds,
		Duration:  s.opts.PhaseTicks,
	})
	s.deps.Bus.Broadcast(s.code, EventOracleIntro, OracleIntroPayload{Text: s.deps.Riddles.IntroLine()})

	// The riddle text stays hidden for a beat after the intro line.
	question := s.riddle.Question
	if s.opts.RevealDelay > 0 {
		gen := s.gen
		time.AfterFunc(s.opts.RevealDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed || s.gen != gen {
				return
			}
			s.deps.Bus.Broadcast(s.code, EventRiddleRevealed, RiddleRevealedPayload{Question: question})
		})
	} else {
		s.deps.Bus.Broadcast(s.code, EventRiddleRevealed, RiddleRevealedPayload{Question: question})
	}

	s.startTimerLocked(s.handleRiddleExpiry)

	log.Info().Str("room", s.code).Int("round", s.round).Msg("round started")
}

// startTimerLocked supersedes any previous countdown; at most one
// timer is ever live per session.
func (s *Session) startTimerLocked(onExpire func(gen uint64)) {
	s.stopTimerLocked()
	gen := s.gen
	s.timer = NewPhaseTimer(s.opts.PhaseTicks, s.opts.TickInterval,
		func(remaining int) { s.handleTick(gen, remaining) },
		func() { onExpire(gen) },
	)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) handleTick(gen uint64, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return
	}
	s.timeLeft = remaining
	s.deps.Bus.Broadcast(s.code, EventTimerTick, TimerTickPayload{Phase: s.phase, Remaining: remaining})
}

// handleRiddleExpiry closes the riddle ledger, determines the winner
// and either moves on to the puzzle phase or, when nobody is left to
// face the puzzle, completes the round with an empty result set.
func (s *Session) handleRiddleExpiry(gen uint64) {
	s.mu.Lock()
	if s.closed || s.gen != gen || s.phase != models.PhaseRiddle {
		s.mu.Unlock()
		return
	}

	s.riddleLedger.Close()
	snap := s.riddleLedger.Snapshot()

	// Earliest correct answer wins; the snapshot is timestamp-ordered
	// with arrival order breaking exact ties.
	for _, e := range snap {
		if strings.EqualFold(e.Value, s.riddle.Answer) {
			s.winnerID = e.PlayerID
			if p := s.playerByIDLocked(e.PlayerID); p != nil {
				s.winner = p.Name
				ApplyDelta(p, 1)
			}
			break
		}
	}

	results := make([]RiddleSubmissionResult, 0, len(snap))
	for _, e := range snap {
		name := ""
		if p := s.playerByIDLocked(e.PlayerID); p != nil {
			name = p.Name
		}
		results = append(results, RiddleSubmissionResult{
			Player:   name,
			Answer:   e.Value,
			Correct:  strings.EqualFold(e.Value, s.riddle.Answer),
			IsWinner: e.PlayerID == s.winnerID && s.winnerID != "",
		})
	}
	s.deps.Bus.Broadcast(s.code, EventRiddleResults, RiddleResultsPayload{
		Submissions: results,
		Winner:      s.winner,
		Answer:      s.riddle.Answer,
	})

	participants := 0
	for _, p := range s.players {
		if p.ClientID != s.winnerID {
			participants++
		}
	}
	if participants == 0 {
		s.mu.Unlock()
		s.finishEvaluation(gen, nil)
		return
	}

	s.choiceLedger = NewSubmissionLedger()
	s.mu.Unlock()

	// Generating the puzzle may block on the oracle; the lock is
	// released so ticks and commands for other rooms keep flowing.
	puzzle := s.generatePuzzle()

	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.puzzle = puzzle
	s.phase = models.PhasePuzzle
	s.gen++
	s.timeLeft = s.opts.PhaseTicks

	expected := len(s.players)
	if s.winnerID != "" {
		expected--
	}
	s.deps.Bus.Broadcast(s.code, EventPhaseStarted, PhaseStartedPayload{
		Phase:        models.PhasePuzzle,
		Round:        s.round,
		MaxRounds:    s.opts.MaxRounds,
		Duration:     s.opts.PhaseTicks,
		Scenario:     puzzle.Scenario,
		Options:      puzzle.Options,
		Participants: expected,
	})

	s.startTimerLocked(s.handlePuzzleExpiry)
	s.mu.Unlock()
}

// handlePuzzleExpiry groups the recorded choices, asks the oracle for
// narrations and completes the round.
func (s *Session) handlePuzzleExpiry(gen uint64) {
	s.mu.Lock()
	if s.closed || s.gen != gen || s.phase != models.PhasePuzzle {
		s.mu.Unlock()
		return
	}

	s.choiceLedger.Close()
	snap := s.choiceLedger.Snapshot()
	groups := make(map[string][]string)
	for _, e := range snap {
		if p := s.playerByIDLocked(e.PlayerID); p != nil {
			groups[e.Value] = append(groups[e.Value], p.Name)
		}
	}
	puzzle := s.puzzle
	s.mu.Unlock()

	var narrations []models.Narration
	if len(groups) > 0 {
		narrations = s.narrate(puzzle, groups)
	}
	s.finishEvaluation(gen, narrations)
}

// finishEvaluation applies scores and history for the completed round,
// paces out the narrations and broadcasts the round summary, then
// either loops to the next round or ends the game.
func (s *Session) finishEvaluation(gen uint64, narrations []models.Narration) {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.phase = models.PhaseEvaluating
	s.gen++
	gen = s.gen
	s.stopTimerLocked()

	survived := make(map[string]bool)
	for _, n := range narrations {
		if !n.Survived {
			continue
		}
		for _, name := range n.Players {
			survived[name] = true
		}
	}

	outcomes := make(map[string]models.RoundOutcome, len(s.players))
	for _, p := range s.players {
		if p.Name == s.winner && s.winner != "" {
			outcomes[p.Name] = models.OutcomeWin
			continue
		}
		if survived[p.Name] {
			outcomes[p.Name] = models.OutcomeWin
			ApplyDelta(p, 1)
			continue
		}
		outcomes[p.Name] = models.OutcomeLoss
	}
	AppendRoundOutcome(s.history, s.players, outcomes)

	summary := RoundSummaryPayload{
		Round:    s.round,
		Roster:   s.rosterLocked(),
		History:  s.historyLocked(),
		Winner:   s.winner,
		Outcomes: outcomes,
	}
	s.mu.Unlock()

	for i, n := range narrations {
		if i > 0 && s.opts.NarrationDelay > 0 {
			time.Sleep(s.opts.NarrationDelay)
		}
		s.deps.Bus.Broadcast(s.code, EventPuzzleResult, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen {
		return
	}
	s.phase = models.PhaseRoundSummary
	s.gen++
	s.deps.Bus.Broadcast(s.code, EventRoundSummary, summary)

	if s.round >= s.opts.MaxRounds {
		s.finishGameLocked()
		return
	}

	if s.opts.SummaryHold > 0 {
		next := s.gen
		time.AfterFunc(s.opts.SummaryHold, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed || s.gen != next || s.phase != models.PhaseRoundSummary {
				return
			}
			s.beginRoundLocked()
		})
		return
	}
	s.beginRoundLocked()
}

// finishGameLocked broadcasts final standings and parks the session in
// the terminal phase until someone asks to play again.
func (s *Session) finishGameLocked() {
	s.phase = models.PhaseGameOver
	s.gen++
	s.stopTimerLocked()
	s.timeLeft = 0

	standings := s.rosterLocked()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	winner := ""
	message := "The Oracle keeps its secrets. Nobody scored a single point."
	if len(standings) > 0 && standings[0].Score > 0 {
		winner = standings[0].Name
		message = "Congratulations, champion of the Oracle's trial!"
	}

	s.deps.Bus.Broadcast(s.code, EventGameOver, GameOverPayload{
		Standings: standings,
		Winner:    winner,
		Message:   message,
	})

	log.Info().Str("room", s.code).Str("winner", winner).Msg("game over")

	if s.deps.Archive != nil {
		record := s.buildRecordLocked(standings, winner)
		go func() {
			if err := s.deps.Archive.SaveGame(record); err != nil {
				log.Warn().Err(err).Str("room", record.RoomCode).Msg("failed to archive game")
			}
		}()
	}
}

func (s *Session) buildRecordLocked(standings []*models.Player, winner string) *models.GameRecord {
	record := &models.GameRecord{
		RoomCode: s.code,
		Rounds:   s.round,
		Winner:   winner,
	}
	for i, p := range standings {
		wins := 0
		for _, o := range s.history[p.Name] {
			if o == models.OutcomeWin {
				wins++
			}
		}
		record.Results = append(record.Results, models.PlayerResult{
			Name:     p.Name,
			Score:    p.Score,
			Wins:     wins,
			Losses:   len(s.history[p.Name]) - wins,
			Position: i + 1,
		})
	}
	return record
}

// generatePuzzle asks the configured oracle and falls back to the
// static table on any failure; the phase always completes.
func (s *Session) generatePuzzle() *models.PuzzleChallenge {
	ctx := context.Background()
	if s.deps.Oracle != nil {
		puzzle, err := s.deps.Oracle.GeneratePuzzle(ctx)
		if err == nil {
			return puzzle
		}
		log.Warn().Err(err).Str("room", s.code).Msg("oracle puzzle generation failed, using fallback")
	}
	puzzle, err := s.deps.Fallback.GeneratePuzzle(ctx)
	if err != nil {
		log.Error().Err(err).Str("room", s.code).Msg("fallback puzzle generation failed")
		return defaultPuzzle()
	}
	return puzzle
}

func (s *Session) narrate(puzzle *models.PuzzleChallenge, groups map[string][]string) []models.Narration {
	ctx := context.Background()
	if s.deps.Oracle != nil {
		narrations, err := s.deps.Oracle.GenerateNarrations(ctx, puzzle, groups)
		if err == nil {
			return narrations
		}
		log.Warn().Err(err).Str("room", s.code).Msg("oracle narration failed, using fallback")
	}
	narrations, err := s.deps.Fallback.GenerateNarrations(ctx, puzzle, groups)
	if err != nil {
		log.Error().Err(err).Str("room", s.code).Msg("fallback narration failed")
		return nil
	}
	return narrations
}

// defaultPuzzle is the last-resort challenge if even the fallback
// table misbehaves.
func defaultPuzzle() *models.PuzzleChallenge {
	return &models.PuzzleChallenge{
		Scenario: "The cavern splits into three passages and the torchlight is failing.",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "Take the left passage, following the draft", Survival: true},
			{ID: "B", Text: "Take the middle passage, straight and silent", Survival: false},
			{ID: "C", Text: "Take the right passage, down toward the water", Survival: false},
		},
	}
}

func (s *Session) playerByIDLocked(clientID string) *models.Player {
	for _, p := range s.players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

// rosterLocked returns defensive copies so broadcast payloads cannot
// race with later score mutations.
func (s *Session) rosterLocked() []*models.Player {
	out := make([]*models.Player, len(s.players))
	for i, p := range s.players {
		c := *p
		out[i] = &c
	}
	return out
}

func (s *Session) historyLocked() map[string][]models.RoundOutcome {
	out := make(map[string][]models.RoundOutcome, len(s.history))
	for name, outcomes := range s.history {
		out[name] = append([]models.RoundOutcome(nil), outcomes...)
	}
	return out
}
