package game

import "errors"

var (
	ErrEmptyDeck           = errors.New("no cards left in deck")
	ErrInsufficientCards   = errors.New("not enough cards in deck")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrWrongPhase          = errors.New("action not valid in current phase")
	ErrIllegalAction       = errors.New("illegal action")
)
