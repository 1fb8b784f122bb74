package engine

import (
	"errors"

	"tricktable/internal/game/card"
)

var (
	// ErrIllegalActor is returned when a seat acts out of turn.
	ErrIllegalActor = errors.New("illegal actor")
	// ErrIllegalPlay is returned when an action breaks the rules. The rejected
	// seat sees the reason in its next status.
	ErrIllegalPlay = card.ErrIllegalPlay
	// ErrConstruction is returned when a table cannot be seated.
	ErrConstruction = errors.New("cannot construct table")
	// ErrGameLogic marks an internal inconsistency. The table stops accepting actions.
	ErrGameLogic = errors.New("game logic error")
	// ErrGameOver is returned for actions on a finished table.
	ErrGameOver = errors.New("game is over")
)
