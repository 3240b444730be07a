package models

// RoundOutcome is a single win/loss entry in a player's round history.
type RoundOutcome string

const (
	OutcomeWin  RoundOutcome = "win"
	OutcomeLoss RoundOutcome = "loss"
)
