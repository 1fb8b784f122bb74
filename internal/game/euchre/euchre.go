// Package euchre implements four-handed partnership Euchre: a 24-card deck,
// two bidding rounds over the turned-up kitty card, optional loners, and
// bower ranking once trump is fixed.
package euchre

import (
	"fmt"
	"math/rand/v2"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

const (
	handSize      = 5
	tricksInRound = 5
	// WinningScore ends the game once a partnership reaches it.
	WinningScore = 10
)

var deckValues = []card.Value{card.Nine, card.Ten, card.Jack, card.Queen, card.King, card.Ace}

// Options are the house rules of a table.
type Options struct {
	// ScrewTheDealer forbids the dealer from passing in the second bidding
	// round. When off, four passes in the second round throw the hand in.
	ScrewTheDealer bool
}

func DefaultOptions() Options {
	return Options{ScrewTheDealer: true}
}

// Rules holds the per-round bidding and trump state of one table.
type Rules struct {
	opts Options

	kitty           card.Card
	biddingRound    int
	biddingComplete bool
	discardPending  bool

	trump    card.Suit
	trumpSet bool
	bidder   int
	alone    bool
	// sittingOut is the loner's partner, or -1.
	sittingOut int
}

// New seats players and deals the first hand with the given house rules.
func New(id int, players [engine.NumSeats]engine.Player, opts Options, rng *rand.Rand) (*engine.Table, error) {
	return engine.NewTable(id, players, &Rules{opts: opts, bidder: -1, sittingOut: -1}, rng)
}

func (r *Rules) Type() engine.GameType { return engine.Euchre }

// Trump returns the trump suit once bidding has fixed it.
func (r *Rules) Trump() (card.Suit, bool) { return r.trump, r.trumpSet }

func (r *Rules) StartRound(t *engine.Table) {
	r.biddingRound = 1
	r.biddingComplete = false
	r.discardPending = false
	r.trumpSet = false
	r.bidder = -1
	r.alone = false
	r.sittingOut = -1

	deck := card.NewDeck(deckValues, nil)
	deck.Shuffle(t.Rand())
	dealer := t.Dealer()
	for i := 0; i < handSize*engine.NumSeats; i++ {
		c, _ := deck.Next()
		t.Hand((dealer + 1 + i) % engine.NumSeats).AddCard(c)
	}
	r.kitty, _ = deck.Next()
	for seat := 0; seat < engine.NumSeats; seat++ {
		t.Hand(seat).Sort(card.Less)
	}
	t.SetCenter(r.kitty)
	t.SetCurrent(engine.Clockwise(dealer))
}

func (r *Rules) RoundOver(t *engine.Table) bool {
	return t.TrickCount() == tricksInRound
}

func (r *Rules) Interpret(t *engine.Table, seat int, c card.Card) (engine.Outcome, error) {
	if !r.biddingComplete {
		return r.bid(t, seat, c)
	}
	if c.IsAction() {
		return 0, illegal("bidding is over, play a card")
	}
	hand := t.Hand(seat)
	if !hand.Contains(c) {
		return 0, illegal("%s is not in your hand", c)
	}
	if lead, ok := t.Lead(); ok {
		want := r.effectiveSuit(lead)
		follows := func(h card.Card) bool { return r.effectiveSuit(h) == want }
		if !follows(c) && hand.Any(follows) {
			return 0, illegal("you must follow %s", want)
		}
	}
	return engine.OutcomePlay, nil
}

// NextSeat skips the partner of a loner.
func (r *Rules) NextSeat(t *engine.Table, seat int) int {
	next := engine.Clockwise(seat)
	if next == r.sittingOut {
		next = engine.Clockwise(next)
	}
	return next
}

func (r *Rules) TrickSize(t *engine.Table) int {
	if r.sittingOut >= 0 {
		return engine.NumSeats - 1
	}
	return engine.NumSeats
}

func (r *Rules) TrickWinner(t *engine.Table, trick []engine.Play) int {
	lead := r.effectiveSuit(trick[0].Card)
	best, bestRank := trick[0].Seat, r.rank(trick[0].Card, lead)
	for _, p := range trick[1:] {
		if rank := r.rank(p.Card, lead); rank > bestRank {
			best, bestRank = p.Seat, rank
		}
	}
	return best
}

// ScoreRound awards the makers 1 point for three or four tricks, 2 for a
// march and 5 for a lone march. Euchred makers give the defenders 2.
func (r *Rules) ScoreRound(t *engine.Table) ([engine.NumSeats]int, error) {
	var out [engine.NumSeats]int
	if r.bidder < 0 || !r.trumpSet {
		return out, fmt.Errorf("%w: round scored without a maker", engine.ErrGameLogic)
	}
	var tricks [2]int
	for seat := 0; seat < engine.NumSeats; seat++ {
		tricks[team(seat)] += t.TricksTaken(seat)
	}
	if tricks[0]+tricks[1] != tricksInRound {
		return out, fmt.Errorf("%w: %d tricks recorded", engine.ErrGameLogic, tricks[0]+tricks[1])
	}

	makers := team(r.bidder)
	var points [2]int
	switch won := tricks[makers]; {
	case won == tricksInRound && r.alone:
		points[makers] = 5
	case won == tricksInRound:
		points[makers] = 2
	case won*2 > tricksInRound:
		points[makers] = 1
	default:
		points[1-makers] = 2
	}
	for seat := range out {
		out[seat] = points[team(seat)]
	}
	return out, nil
}

// IsActive is false once either partnership reaches the winning score.
// Both partners carry the same totals, so seats 0 and 1 stand for the teams.
func (r *Rules) IsActive(t *engine.Table) bool {
	return t.Total(0) < WinningScore && t.Total(1) < WinningScore
}

func team(seat int) int { return seat % 2 }

func illegal(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{engine.ErrIllegalPlay}, args...)...)
}
