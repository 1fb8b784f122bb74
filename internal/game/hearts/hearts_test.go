package hearts

import (
	"errors"
	"math/rand/v2"
	"testing"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

func newTable(t *testing.T) *engine.Table {
	t.Helper()
	players := [engine.NumSeats]engine.Player{
		engine.NewPlayer("north"), engine.NewPlayer("east"),
		engine.NewPlayer("south"), engine.NewPlayer("west"),
	}
	tbl, err := New(1, players, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestDealsThirteenEach(t *testing.T) {
	tbl := newTable(t)
	seen := map[int]bool{}
	for seat := 0; seat < engine.NumSeats; seat++ {
		h := tbl.Hand(seat)
		if h.Size() != 13 {
			t.Fatalf("seat %d holds %d cards", seat, h.Size())
		}
		for _, c := range h.Cards() {
			if seen[c.Key()] {
				t.Fatalf("card %s dealt twice", c)
			}
			seen[c.Key()] = true
		}
	}
}

func TestAnyHeldCardIsLegal(t *testing.T) {
	tbl := newTable(t)
	lead := tbl.Current()
	leadCard := tbl.Hand(lead).Cards()[0]
	if err := tbl.Action(tbl.Player(lead), leadCard); err != nil {
		t.Fatalf("lead: %v", err)
	}

	next := tbl.Current()
	var offSuit *card.Card
	for _, c := range tbl.Hand(next).Cards() {
		if c.Suit != leadCard.Suit {
			c := c
			offSuit = &c
			break
		}
	}
	if offSuit == nil {
		t.Skip("next seat holds only the led suit")
	}
	if err := tbl.Action(tbl.Player(next), *offSuit); err != nil {
		t.Fatalf("off-suit play should be accepted, got %v", err)
	}
}

func TestRejectsCardsNotHeldAndBids(t *testing.T) {
	tbl := newTable(t)
	seat := tbl.Current()
	other := tbl.Hand(engine.Clockwise(seat)).Cards()[0]
	if err := tbl.Action(tbl.Player(seat), other); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("expected ErrIllegalPlay, got %v", err)
	}
	if err := tbl.Action(tbl.Player(seat), card.NewAction(card.ActionSkip, card.Club)); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("expected pseudo-card rejection, got %v", err)
	}
}

func TestFullRoundScoresTwentySix(t *testing.T) {
	tbl := newTable(t)
	for tbl.Round() == 0 {
		seat := tbl.Current()
		c := tbl.Hand(seat).Cards()[0]
		if err := tbl.Action(tbl.Player(seat), c); err != nil {
			t.Fatalf("play %s: %v", c, err)
		}
	}
	sum := 0
	for seat := 0; seat < engine.NumSeats; seat++ {
		s := tbl.Scores(seat)
		if len(s) != 1 {
			t.Fatalf("seat %d has %d score entries", seat, len(s))
		}
		sum += s[0]
	}
	if sum != 26 {
		t.Fatalf("round penalty total = %d, want 26", sum)
	}
	if tbl.Hand(0).Size() != 13 {
		t.Fatalf("next round should be dealt")
	}
}

func TestPlaysUntilSomeoneReachesHundred(t *testing.T) {
	tbl := newTable(t)
	for i := 0; tbl.IsActive(); i++ {
		if i > 52*100 {
			t.Fatalf("game did not finish")
		}
		seat := tbl.Current()
		if err := tbl.Action(tbl.Player(seat), tbl.Hand(seat).Cards()[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
	}
	top := 0
	for seat := 0; seat < engine.NumSeats; seat++ {
		if tbl.Total(seat) > top {
			top = tbl.Total(seat)
		}
	}
	if top < GameOverScore {
		t.Fatalf("game ended with top score %d", top)
	}
}

func TestPenalty(t *testing.T) {
	got := penalty([]card.Card{
		card.New(card.Heart, card.Two), card.New(card.Spade, card.Queen),
		card.New(card.Club, card.Ace), card.New(card.Heart, card.Ace),
	})
	if got != 15 {
		t.Fatalf("penalty = %d, want 15", got)
	}
}
