package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"tricktable/internal/game/card"
)

// allSeats addresses an advisory message to every viewer.
const allSeats = -2

// Table is one running game: four fixed players, their hands and scores, and
// the trick in progress. A Table is not safe for concurrent use; the owner
// must apply actions one at a time.
type Table struct {
	id      int
	rules   Rules
	players [NumSeats]Player
	hands   [NumSeats]*card.Hand
	scores  [NumSeats][]int

	current int
	round   int
	over    bool
	failure error

	center []card.Card
	played [NumSeats]*card.Card

	trick      []Play
	trickCount int
	taken      [NumSeats]int
	captured   [NumSeats][]card.Card

	message     string
	messageSeat int

	rng *rand.Rand
}

// NewTable seats players in turn order and deals the first round. A nil rng
// is seeded from the clock.
func NewTable(id int, players [NumSeats]Player, rules Rules, rng *rand.Rand) (*Table, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: no rules", ErrConstruction)
	}
	seen := make(map[Player]int, NumSeats)
	for seat, p := range players {
		if p.IsZero() {
			return nil, fmt.Errorf("%w: %s is empty", ErrConstruction, SeatName(seat))
		}
		if other, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: %s sits at both %s and %s",
				ErrConstruction, p.Display(), SeatName(other), SeatName(seat))
		}
		seen[p] = seat
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(id)))
	}

	t := &Table{
		id:          id,
		rules:       rules,
		players:     players,
		messageSeat: -1,
		rng:         rng,
	}
	for i := range t.hands {
		t.hands[i] = card.NewHand()
	}
	t.startRound()
	return t, nil
}

func (t *Table) ID() int { return t.id }
func (t *Table) Type() GameType { return t.rules.Type() }
func (t *Table) Rand() *rand.Rand { return t.rng }
func (t *Table) Round() int { return t.round }
func (t *Table) Dealer() int { return t.round % NumSeats }
func (t *Table) Current() int { return t.current }
func (t *Table) SetCurrent(seat int) { t.current = ((seat % NumSeats) + NumSeats) % NumSeats }

// IsActive is false once the game has ended.
func (t *Table) IsActive() bool { return !t.over }

// Err returns the internal failure that stopped the table, if any.
func (t *Table) Err() error { return t.failure }

func (t *Table) Player(seat int) Player { return t.players[seat] }
func (t *Table) Players() [NumSeats]Player { return t.players }
func (t *Table) Hand(seat int) *card.Hand { return t.hands[seat] }
func (t *Table) TrickCount() int { return t.trickCount }
func (t *Table) TricksTaken(seat int) int { return t.taken[seat] }
func (t *Table) Captured(seat int) []card.Card { return t.captured[seat] }

// SeatOf returns the seat of p, or -1.
func (t *Table) SeatOf(p Player) int {
	for seat, sp := range t.players {
		if sp.Equal(p) {
			return seat
		}
	}
	return -1
}

// Scores returns the per-round points of a seat.
func (t *Table) Scores(seat int) []int {
	out := make([]int, len(t.scores[seat]))
	copy(out, t.scores[seat])
	return out
}

// Total returns the cumulative score of a seat.
func (t *Table) Total(seat int) int {
	sum := 0
	for _, pts := range t.scores[seat] {
		sum += pts
	}
	return sum
}

func (t *Table) Center() []card.Card {
	out := make([]card.Card, len(t.center))
	copy(out, t.center)
	return out
}

// SetCenter replaces the shared cards visible to every seat.
func (t *Table) SetCenter(cards ...card.Card) {
	t.center = append(t.center[:0], cards...)
}

// Lead returns the first card of the trick in progress.
func (t *Table) Lead() (card.Card, bool) {
	if len(t.trick) == 0 {
		return card.Card{}, false
	}
	return t.trick[0].Card, true
}

// Trick returns the plays of the trick in progress.
func (t *Table) Trick() []Play {
	out := make([]Play, len(t.trick))
	copy(out, t.trick)
	return out
}

// Announce sets a one-shot message shown to every seat until the next
// accepted action.
func (t *Table) Announce(format string, args ...any) {
	t.message = fmt.Sprintf(format, args...)
	t.messageSeat = allSeats
}

// Redeal throws in the current round without scoring it and deals again.
// The deal passes to the next seat.
func (t *Table) Redeal() {
	t.round++
	t.startRound()
}

// Action applies one seat's play or bid. Rejected actions leave the turn
// where it was.
func (t *Table) Action(p Player, c card.Card) error {
	if t.over {
		return ErrGameOver
	}
	seat := t.SeatOf(p)
	if seat < 0 {
		return fmt.Errorf("%w: %s is not seated", ErrIllegalActor, p.Display())
	}
	if seat != t.current {
		return fmt.Errorf("%w: %s acted while it is %s's turn",
			ErrIllegalActor, p.Display(), t.players[t.current].Display())
	}

	t.clearMessage()
	outcome, err := t.rules.Interpret(t, seat, c)
	if err != nil {
		t.advise(seat, err)
		return err
	}

	switch outcome {
	case OutcomeHandled:
		return nil
	case OutcomePlay:
		return t.play(seat, c)
	}
	return t.fail(fmt.Errorf("%w: unknown outcome %d", ErrGameLogic, outcome))
}

func (t *Table) play(seat int, c card.Card) error {
	played := card.New(c.Suit, c.Value)
	if err := t.hands[seat].PlayCard(played); err != nil {
		t.advise(seat, err)
		return err
	}
	t.played[seat] = &played
	t.trick = append(t.trick, Play{Seat: seat, Card: played})

	if len(t.trick) < t.rules.TrickSize(t) {
		t.current = t.rules.NextSeat(t, seat)
		return nil
	}

	winner := t.rules.TrickWinner(t, t.trick)
	if winner < 0 || winner >= NumSeats {
		return t.fail(fmt.Errorf("%w: trick winner %d", ErrGameLogic, winner))
	}
	t.taken[winner]++
	for _, pl := range t.trick {
		t.captured[winner] = append(t.captured[winner], pl.Card)
	}
	t.trick = nil
	t.trickCount++
	t.current = winner
	t.Announce("%s takes trick %d", t.players[winner].Display(), t.trickCount)

	if t.rules.RoundOver(t) {
		return t.finishRound()
	}
	return nil
}

func (t *Table) finishRound() error {
	points, err := t.rules.ScoreRound(t)
	if err != nil {
		if !errors.Is(err, ErrGameLogic) {
			err = fmt.Errorf("%w: %v", ErrGameLogic, err)
		}
		return t.fail(err)
	}
	for seat := range t.scores {
		t.scores[seat] = append(t.scores[seat], points[seat])
	}
	t.round++
	if !t.rules.IsActive(t) {
		t.over = true
		t.Announce("Game over")
		return nil
	}
	t.startRound()
	return nil
}

func (t *Table) startRound() {
	for _, h := range t.hands {
		h.Clear()
	}
	t.center = nil
	t.played = [NumSeats]*card.Card{}
	t.trick = nil
	t.trickCount = 0
	t.taken = [NumSeats]int{}
	t.captured = [NumSeats][]card.Card{}
	t.current = Clockwise(t.Dealer())
	t.rules.StartRound(t)
}

func (t *Table) fail(err error) error {
	t.over = true
	t.failure = err
	t.Announce("Game aborted: %v", err)
	return err
}

func (t *Table) advise(seat int, err error) {
	t.message = err.Error()
	t.messageSeat = seat
}

func (t *Table) clearMessage() {
	t.message = ""
	t.messageSeat = -1
}
