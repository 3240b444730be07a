package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrNameTaken           = errors.New("name already taken in this room")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrWrongPhase          = errors.New("command not valid in current phase")
	ErrNotInRoom           = errors.New("player not in this room")
)
