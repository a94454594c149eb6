package model

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrOutOfBounds     = errors.New("coordinate out of bounds")
	ErrGameFull        = errors.New("game is full")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrPlayerNotInGame = errors.New("player not in game")
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrAlreadyQueued   = errors.New("player already in queue")
	ErrNotQueued       = errors.New("player not in matchmaking")
)
