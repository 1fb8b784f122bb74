package engine

import "tricktable/internal/game/card"

// Play is one card contributed to a trick.
type Play struct {
	Seat int
	Card card.Card
}

// Outcome tells the table what a variant made of an action.
type Outcome int

const (
	// OutcomePlay is an ordinary card play; the table removes the card from
	// the hand and runs trick bookkeeping.
	OutcomePlay Outcome = iota + 1
	// OutcomeHandled means the variant consumed the action itself (a bid,
	// a discard, a skip) and already positioned the turn.
	OutcomeHandled
)

// RoundLifecycle deals a round and says when it is over.
type RoundLifecycle interface {
	StartRound(t *Table)
	RoundOver(t *Table) bool
}

// TurnLegality interprets a seat's action and drives seat order and tricks.
type TurnLegality interface {
	Interpret(t *Table, seat int, c card.Card) (Outcome, error)
	NextSeat(t *Table, seat int) int
	TrickSize(t *Table) int
	TrickWinner(t *Table, trick []Play) int
}

// Scoring tallies completed rounds and decides whether play continues.
type Scoring interface {
	ScoreRound(t *Table) ([NumSeats]int, error)
	IsActive(t *Table) bool
}

// Rules is a complete variant.
type Rules interface {
	RoundLifecycle
	TurnLegality
	Scoring
	Type() GameType
}

// StatusAugmenter is implemented by variants that add to the per-seat
// status projection.
type StatusAugmenter interface {
	Augment(t *Table, viewer int, st *Status)
}
