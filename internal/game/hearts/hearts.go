// Package hearts is the reference trick-taking variant: a full deck, no
// bidding, and any held card is a legal play.
package hearts

import (
	"fmt"
	"math/rand/v2"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

const (
	// GameOverScore ends the game once any seat reaches it.
	GameOverScore = 100
	queenOfSpades = 13
)

type Rules struct{}

// New seats players and deals the first hand.
func New(id int, players [engine.NumSeats]engine.Player, rng *rand.Rand) (*engine.Table, error) {
	return engine.NewTable(id, players, &Rules{}, rng)
}

func (r *Rules) Type() engine.GameType { return engine.Hearts }

func (r *Rules) StartRound(t *engine.Table) {
	deck := card.NewDeck(nil, nil)
	deck.Shuffle(t.Rand())
	for seat := engine.Clockwise(t.Dealer()); ; seat = engine.Clockwise(seat) {
		c, ok := deck.Next()
		if !ok {
			break
		}
		t.Hand(seat).AddCard(c)
	}
	for seat := 0; seat < engine.NumSeats; seat++ {
		t.Hand(seat).Sort(card.Less)
	}
}

func (r *Rules) RoundOver(t *engine.Table) bool {
	for seat := 0; seat < engine.NumSeats; seat++ {
		if t.Hand(seat).Size() > 0 {
			return false
		}
	}
	return true
}

// Interpret accepts any held card. Suit following and passing are not
// enforced.
func (r *Rules) Interpret(t *engine.Table, seat int, c card.Card) (engine.Outcome, error) {
	if c.IsAction() {
		return 0, fmt.Errorf("%w: hearts has no bidding", engine.ErrIllegalPlay)
	}
	if !t.Hand(seat).Contains(c) {
		return 0, fmt.Errorf("%w: %s is not in your hand", engine.ErrIllegalPlay, c)
	}
	return engine.OutcomePlay, nil
}

func (r *Rules) NextSeat(t *engine.Table, seat int) int { return engine.Clockwise(seat) }

func (r *Rules) TrickSize(t *engine.Table) int { return engine.NumSeats }

// TrickWinner is the highest card of the suit led.
func (r *Rules) TrickWinner(t *engine.Table, trick []engine.Play) int {
	best := trick[0]
	for _, p := range trick[1:] {
		if p.Card.Suit == best.Card.Suit && p.Card.Value > best.Card.Value {
			best = p
		}
	}
	return best.Seat
}

// ScoreRound charges one point per heart taken and thirteen for the queen
// of spades.
func (r *Rules) ScoreRound(t *engine.Table) ([engine.NumSeats]int, error) {
	var points [engine.NumSeats]int
	for seat := range points {
		points[seat] = penalty(t.Captured(seat))
	}
	return points, nil
}

func (r *Rules) IsActive(t *engine.Table) bool {
	for seat := 0; seat < engine.NumSeats; seat++ {
		if t.Total(seat) >= GameOverScore {
			return false
		}
	}
	return true
}

func penalty(cards []card.Card) int {
	pts := 0
	for _, c := range cards {
		switch {
		case c.Suit == card.Heart:
			pts++
		case c.Suit == card.Spade && c.Value == card.Queen:
			pts += queenOfSpades
		}
	}
	return pts
}
