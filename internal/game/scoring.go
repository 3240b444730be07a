package game

import "github.com/Kingvinu7/Riddly-sub000/internal/models"

// ApplyDelta adjusts a player's score. Deltas in this game are always
// +1; scores never decrease within a game.
func ApplyDelta(p *models.Player, delta int) {
	p.Score += delta
}

// AppendRoundOutcome writes exactly one outcome per roster player for
// the completed round. A player present in the roster but absent from
// the outcome map defaults to a loss rather than being dropped.
func AppendRoundOutcome(history map[string][]models.RoundOutcome, players []*models.Player, outcomes map[string]models.RoundOutcome) {
	for _, p := range players {
		outcome, ok := outcomes[p.Name]
		if !ok {
			outcome = models.OutcomeLoss
		}
		history[p.Name] = append(history[p.Name], outcome)
	}
}
