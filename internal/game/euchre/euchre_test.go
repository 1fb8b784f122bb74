package euchre

import (
	"errors"
	"math/rand/v2"
	"testing"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

func players() [engine.NumSeats]engine.Player {
	return [engine.NumSeats]engine.Player{
		engine.NewPlayer("north"), engine.NewPlayer("east"),
		engine.NewPlayer("south"), engine.NewPlayer("west"),
	}
}

func newTable(t *testing.T, opts Options) (*engine.Table, *Rules) {
	t.Helper()
	r := &Rules{opts: opts, bidder: -1, sittingOut: -1}
	tbl, err := engine.NewTable(1, players(), r, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl, r
}

func act(t *testing.T, tbl *engine.Table, seat int, c card.Card) {
	t.Helper()
	if err := tbl.Action(tbl.Player(seat), c); err != nil {
		t.Fatalf("%s plays %s: %v", engine.SeatName(seat), c, err)
	}
}

// rig replaces the deal with fixed hands after bidding, East to lead.
func rig(tbl *engine.Table, r *Rules, trump card.Suit, bidder int, alone bool, hands [engine.NumSeats][]card.Card) {
	r.trump, r.trumpSet = trump, true
	r.biddingComplete, r.discardPending = true, false
	r.bidder, r.alone, r.sittingOut = bidder, alone, -1
	if alone {
		r.sittingOut = engine.Partner(bidder)
	}
	for seat := 0; seat < engine.NumSeats; seat++ {
		tbl.Hand(seat).Clear()
		for _, c := range hands[seat] {
			tbl.Hand(seat).AddCard(c)
		}
	}
	tbl.SetCenter()
	tbl.SetCurrent(engine.East)
}

// playOut plays the first legal card of the seat to act until the round ends.
func playOut(t *testing.T, tbl *engine.Table) {
	t.Helper()
	round := tbl.Round()
	for tbl.Round() == round && tbl.IsActive() {
		seat := tbl.Current()
		played := false
		for _, c := range tbl.Hand(seat).Cards() {
			err := tbl.Action(tbl.Player(seat), c)
			if err == nil {
				played = true
				break
			}
			if !errors.Is(err, engine.ErrIllegalPlay) {
				t.Fatalf("%s: %v", engine.SeatName(seat), err)
			}
		}
		if !played {
			t.Fatalf("%s has no legal card", engine.SeatName(seat))
		}
	}
}

func cards(specs ...card.Card) []card.Card { return specs }

func spadeSweepHands() [engine.NumSeats][]card.Card {
	s, h, d, c := card.Spade, card.Heart, card.Diamond, card.Club
	return [engine.NumSeats][]card.Card{
		cards(card.New(h, card.Nine), card.New(h, card.Ten), card.New(h, card.Jack), card.New(h, card.Queen), card.New(h, card.King)),
		cards(card.New(s, card.Jack), card.New(c, card.Jack), card.New(s, card.Ace), card.New(s, card.King), card.New(s, card.Queen)),
		cards(card.New(d, card.Nine), card.New(d, card.Ten), card.New(d, card.Jack), card.New(d, card.Queen), card.New(d, card.King)),
		cards(card.New(h, card.Ace), card.New(d, card.Ace), card.New(c, card.Nine), card.New(c, card.Ten), card.New(c, card.Queen)),
	}
}

func TestDeal(t *testing.T) {
	tbl, r := newTable(t, DefaultOptions())
	seen := map[int]bool{r.kitty.Key(): true}
	for seat := 0; seat < engine.NumSeats; seat++ {
		if n := tbl.Hand(seat).Size(); n != 5 {
			t.Fatalf("seat %d holds %d cards", seat, n)
		}
		for _, c := range tbl.Hand(seat).Cards() {
			if c.Value < card.Nine {
				t.Fatalf("%s is not a euchre card", c)
			}
			if seen[c.Key()] {
				t.Fatalf("%s dealt twice", c)
			}
			seen[c.Key()] = true
		}
	}
	if center := tbl.Center(); len(center) != 1 || !center[0].Equal(r.kitty) {
		t.Fatalf("center = %v, want the kitty %s", center, r.kitty)
	}
	if tbl.Current() != engine.East {
		t.Fatalf("bidding should open left of the dealer")
	}
}

func TestScrewTheDealer(t *testing.T) {
	tbl, r := newTable(t, DefaultOptions())
	skip := card.NewAction(card.ActionSkip, r.kitty.Suit)
	for _, seat := range []int{engine.East, engine.South, engine.West, engine.North} {
		act(t, tbl, seat, skip)
	}
	if r.biddingRound != 2 || tbl.Current() != engine.East {
		t.Fatalf("bidding round %d, current %d after four passes", r.biddingRound, tbl.Current())
	}
	for _, seat := range []int{engine.East, engine.South, engine.West} {
		act(t, tbl, seat, skip)
	}

	if err := tbl.Action(tbl.Player(engine.North), skip); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("dealer pass: expected ErrIllegalPlay, got %v", err)
	}
	if err := tbl.Action(tbl.Player(engine.North), card.NewAction(card.ActionNameTrump, r.kitty.Suit)); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("turned-down suit: expected ErrIllegalPlay, got %v", err)
	}

	st := tbl.Status(engine.North)
	for _, c := range st.CenterActionCards {
		if c.Is(card.ActionSkip) {
			t.Fatalf("dealer offered a pass under screw the dealer")
		}
	}

	trump := r.kitty.Suit.SameColor()
	act(t, tbl, engine.North, card.NewAction(card.ActionNameTrump, trump))
	if got, ok := r.Trump(); !ok || got != trump {
		t.Fatalf("trump = %v, %v", got, ok)
	}
	if tbl.Current() != engine.East || len(tbl.Center()) != 0 {
		t.Fatalf("play should open left of the dealer with an empty center")
	}
}

func TestAllPassThrowsIn(t *testing.T) {
	tbl, r := newTable(t, Options{ScrewTheDealer: false})
	skip := card.NewAction(card.ActionSkip, r.kitty.Suit)
	for i := 0; i < 8; i++ {
		act(t, tbl, tbl.Current(), skip)
	}
	if tbl.Dealer() != engine.East || tbl.Current() != engine.South {
		t.Fatalf("dealer %d current %d after throw-in", tbl.Dealer(), tbl.Current())
	}
	if r.biddingRound != 1 || r.trumpSet {
		t.Fatalf("bidding should restart")
	}
	if len(tbl.Scores(engine.North)) != 0 {
		t.Fatalf("thrown-in hand must not be scored")
	}
}

func TestPickupAndDiscard(t *testing.T) {
	tbl, r := newTable(t, DefaultOptions())
	kitty := r.kitty
	act(t, tbl, engine.East, card.NewAction(card.ActionPickup, kitty.Suit))

	if tbl.Current() != engine.North || tbl.Hand(engine.North).Size() != 6 {
		t.Fatalf("dealer should hold six cards and discard")
	}
	if !tbl.Hand(engine.North).Contains(kitty) {
		t.Fatalf("dealer did not take the kitty")
	}
	if phase := tbl.Status(engine.South).CurrentGameStatus; phase == "" {
		t.Fatalf("expected an announcement")
	}
	if err := tbl.Action(tbl.Player(engine.North), card.NewAction(card.ActionSkip, kitty.Suit)); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("expected a discard to be required, got %v", err)
	}

	discard := tbl.Hand(engine.North).Cards()[0]
	act(t, tbl, engine.North, discard)
	if tbl.Hand(engine.North).Size() != 5 || tbl.Hand(engine.North).Contains(discard) {
		t.Fatalf("discard not removed")
	}
	if !r.biddingComplete || r.bidder != engine.East || tbl.Current() != engine.East {
		t.Fatalf("bidding should be complete with East to lead")
	}
}

func TestFollowSuitWithLeftBower(t *testing.T) {
	tbl, r := newTable(t, DefaultOptions())
	h, d, c := card.Heart, card.Diamond, card.Club
	rig(tbl, r, h, engine.East, false, [engine.NumSeats][]card.Card{
		cards(card.New(c, card.Ace)),
		cards(card.New(d, card.Jack)),
		cards(card.New(d, card.Ace), card.New(h, card.Nine)),
		cards(card.New(c, card.Nine)),
	})

	act(t, tbl, engine.East, card.New(d, card.Jack))
	if err := tbl.Action(tbl.Player(engine.South), card.New(d, card.Ace)); !errors.Is(err, engine.ErrIllegalPlay) {
		t.Fatalf("left bower leads trump: expected ErrIllegalPlay, got %v", err)
	}
	act(t, tbl, engine.South, card.New(h, card.Nine))
	act(t, tbl, engine.West, card.New(c, card.Nine))
	act(t, tbl, engine.North, card.New(c, card.Ace))
	if tbl.TricksTaken(engine.East) != 1 {
		t.Fatalf("left bower should win the trick")
	}
}

func TestRanking(t *testing.T) {
	r := &Rules{trump: card.Spade, trumpSet: true}
	lead := card.Heart
	order := []card.Card{
		card.New(card.Heart, card.Ten),
		card.New(card.Heart, card.Ace),
		card.New(card.Spade, card.Nine),
		card.New(card.Spade, card.Ace),
		card.New(card.Club, card.Jack),
		card.New(card.Spade, card.Jack),
	}
	for i := 1; i < len(order); i++ {
		if r.rank(order[i-1], lead) >= r.rank(order[i], lead) {
			t.Fatalf("%s should rank below %s", order[i-1], order[i])
		}
	}
	if r.rank(card.New(card.Diamond, card.Ace), lead) != 0 {
		t.Fatalf("off-suit cards cannot win")
	}
}

// oneTrickShortHands leaves the makers East and West four tricks: South's
// ace of diamonds takes the last one.
func oneTrickShortHands() [engine.NumSeats][]card.Card {
	s, h, d, c := card.Spade, card.Heart, card.Diamond, card.Club
	return [engine.NumSeats][]card.Card{
		cards(card.New(h, card.Nine), card.New(h, card.Ten), card.New(h, card.Jack), card.New(h, card.Queen), card.New(h, card.King)),
		cards(card.New(s, card.Jack), card.New(c, card.Jack), card.New(s, card.Ace), card.New(s, card.King), card.New(d, card.Nine)),
		cards(card.New(d, card.Ten), card.New(d, card.Jack), card.New(d, card.Queen), card.New(d, card.King), card.New(d, card.Ace)),
		cards(card.New(h, card.Ace), card.New(c, card.Nine), card.New(c, card.Ten), card.New(c, card.Queen), card.New(s, card.Queen)),
	}
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name       string
		bidder     int
		alone      bool
		hands  func() [engine.NumSeats][]card.Card
		want   [engine.NumSeats]int
	}{
		{"march", engine.East, false, spadeSweepHands, [engine.NumSeats]int{0, 2, 0, 2}},
		{"lone march", engine.East, true, spadeSweepHands, [engine.NumSeats]int{0, 5, 0, 5}},
		{"four tricks", engine.East, false, oneTrickShortHands, [engine.NumSeats]int{0, 1, 0, 1}},
		{"euchred", engine.North, false, spadeSweepHands, [engine.NumSeats]int{0, 2, 0, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl, r := newTable(t, DefaultOptions())
			hands := tc.hands()
			if tc.alone {
				hands[engine.Partner(tc.bidder)] = nil
			}
			rig(tbl, r, card.Spade, tc.bidder, tc.alone, hands)
			if tc.alone && r.TrickSize(tbl) != 3 {
				t.Fatalf("lone hand plays three-card tricks")
			}
			playOut(t, tbl)
			for seat, want := range tc.want {
				got := tbl.Scores(seat)
				if len(got) != 1 || got[0] != want {
					t.Fatalf("seat %d scores %v, want [%d]", seat, got, want)
				}
			}
		})
	}
}

type bid struct {
	seat int
	card func(kitty card.Suit) card.Card
}

func skipBid(seat int) bid {
	return bid{seat, func(k card.Suit) card.Card { return card.NewAction(card.ActionSkip, k) }}
}

func TestGoAloneThroughBidding(t *testing.T) {
	aloneOnKitty := func(k card.Suit) card.Card { return card.NewAction(card.ActionAlone, k) }
	aloneOnOther := func(k card.Suit) card.Card { return card.NewAction(card.ActionAlone, k.SameColor()) }
	tests := []struct {
		name        string
		bids        []bid
		loner       int
		wantDiscard bool
		otherSuit   bool
	}{
		{"partner of dealer orders up alone", []bid{{engine.East, aloneOnKitty}}, engine.East, true, false},
		{"dealer sits out", []bid{skipBid(engine.East), {engine.South, aloneOnKitty}}, engine.South, false, false},
		{"dealer goes alone", []bid{skipBid(engine.East), skipBid(engine.South), skipBid(engine.West), {engine.North, aloneOnKitty}}, engine.North, false, false},
		{"alone in the second round", []bid{
			skipBid(engine.East), skipBid(engine.South), skipBid(engine.West), skipBid(engine.North),
			{engine.East, aloneOnOther},
		}, engine.East, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl, r := newTable(t, DefaultOptions())
			kitty := r.kitty
			for _, b := range tc.bids {
				act(t, tbl, b.seat, b.card(kitty.Suit))
			}

			partner := engine.Partner(tc.loner)
			if r.sittingOut != partner || !r.alone || r.bidder != tc.loner {
				t.Fatalf("sitting out %d, alone %v, bidder %d", r.sittingOut, r.alone, r.bidder)
			}
			if n := tbl.Hand(partner).Size(); n != 0 {
				t.Fatalf("partner still holds %d cards", n)
			}
			wantTrump := kitty.Suit
			if tc.otherSuit {
				wantTrump = kitty.Suit.SameColor()
			}
			if got, ok := r.Trump(); !ok || got != wantTrump {
				t.Fatalf("trump = %v, %v, want %v", got, ok, wantTrump)
			}

			dealer := tbl.Dealer()
			if tc.wantDiscard {
				if !r.discardPending || tbl.Current() != dealer || tbl.Hand(dealer).Size() != 6 {
					t.Fatalf("dealer should owe a discard: pending %v, current %d, holds %d",
						r.discardPending, tbl.Current(), tbl.Hand(dealer).Size())
				}
				act(t, tbl, dealer, tbl.Hand(dealer).Cards()[0])
			} else if partner != dealer && tbl.Hand(dealer).Size() != 5 {
				t.Fatalf("dealer took the kitty: holds %d", tbl.Hand(dealer).Size())
			}

			if !r.biddingComplete || r.discardPending {
				t.Fatalf("bidding should be complete")
			}
			if tbl.Current() != engine.East || len(tbl.Center()) != 0 {
				t.Fatalf("East should lead with an empty center, current %d center %v", tbl.Current(), tbl.Center())
			}
			if r.TrickSize(tbl) != 3 {
				t.Fatalf("lone hand plays three-card tricks")
			}
			playOut(t, tbl)
			if len(tbl.Scores(tc.loner)) != 1 {
				t.Fatalf("lone round was not scored")
			}
		})
	}
}

func TestGameEndsAtTen(t *testing.T) {
	tbl, r := newTable(t, DefaultOptions())
	for round := 0; tbl.IsActive(); round++ {
		if round > 5 {
			t.Fatalf("game did not end")
		}
		rig(tbl, r, card.Spade, engine.East, true, func() [engine.NumSeats][]card.Card {
			h := spadeSweepHands()
			h[engine.West] = nil
			return h
		}())
		playOut(t, tbl)
	}
	if tbl.Total(engine.East) != 10 || tbl.Total(engine.North) != 0 {
		t.Fatalf("totals %d / %d", tbl.Total(engine.East), tbl.Total(engine.North))
	}
}

func TestRandomRoundsFinish(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		tbl, err := New(1, players(), DefaultOptions(), rand.New(rand.NewPCG(seed, 1)))
		if err != nil {
			t.Fatal(err)
		}
		dealer := tbl.Dealer()
		// three passes, then the dealer picks up.
		for i := 0; i < 3; i++ {
			act(t, tbl, tbl.Current(), card.NewAction(card.ActionSkip, tbl.Center()[0].Suit))
		}
		act(t, tbl, dealer, card.NewAction(card.ActionPickup, tbl.Center()[0].Suit))
		act(t, tbl, dealer, tbl.Hand(dealer).Cards()[0])
		playOut(t, tbl)
		var sum int
		for seat := 0; seat < engine.NumSeats; seat++ {
			sum += tbl.Scores(seat)[0]
		}
		// one partnership scores 1 or 2 points per seat
		if sum != 2 && sum != 4 {
			t.Fatalf("seed %d: unexpected points %d", seed, sum)
		}
	}
}
