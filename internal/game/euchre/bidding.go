package euchre

import (
	"fmt"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

func (r *Rules) bid(t *engine.Table, seat int, c card.Card) (engine.Outcome, error) {
	dealer := t.Dealer()

	if r.discardPending {
		if c.IsAction() && !c.Is(card.ActionDiscard) {
			return 0, illegal("the dealer must discard a card")
		}
		if err := t.Hand(seat).PlayCard(card.New(c.Suit, c.Value)); err != nil {
			return 0, err
		}
		r.discardPending = false
		r.finishBidding(t)
		return engine.OutcomeHandled, nil
	}

	switch r.biddingRound {
	case 1:
		switch {
		case c.Is(card.ActionPickup):
			r.orderUp(t, seat, false)
		case c.Is(card.ActionAlone):
			r.orderUp(t, seat, true)
		case c.Is(card.ActionSkip):
			if seat == dealer {
				r.biddingRound = 2
				t.Announce("%s turned down the %s", t.Player(dealer).Display(), r.kitty)
			}
			t.SetCurrent(engine.Clockwise(seat))
		default:
			return 0, illegal("order up, go alone or skip")
		}
	case 2:
		switch {
		case c.Is(card.ActionNameTrump), c.Is(card.ActionAlone):
			if c.Suit == r.kitty.Suit {
				return 0, illegal("%s was turned down", r.kitty.Suit)
			}
			if !c.Suit.Valid() {
				return 0, fmt.Errorf("%w: unknown trump suit %d", engine.ErrGameLogic, int(c.Suit))
			}
			r.makeTrump(t, seat, c.Suit, c.Is(card.ActionAlone))
			r.finishBidding(t)
		case c.Is(card.ActionSkip):
			if seat != dealer {
				t.SetCurrent(engine.Clockwise(seat))
				break
			}
			if r.opts.ScrewTheDealer {
				return 0, illegal("the dealer must name trump")
			}
			t.Redeal()
			t.Announce("Everyone passed, the hand is thrown in")
		default:
			return 0, illegal("name trump, go alone or skip")
		}
	default:
		return 0, fmt.Errorf("%w: bidding round %d", engine.ErrGameLogic, r.biddingRound)
	}
	return engine.OutcomeHandled, nil
}

// orderUp makes the kitty's suit trump. The dealer takes the kitty and owes
// a discard, unless the dealer is the loner or sits out.
func (r *Rules) orderUp(t *engine.Table, seat int, alone bool) {
	dealer := t.Dealer()
	r.makeTrump(t, seat, r.kitty.Suit, alone)
	if (alone && seat == dealer) || r.sittingOut == dealer {
		r.finishBidding(t)
		return
	}
	t.Hand(dealer).AddCard(r.kitty)
	t.SetCenter()
	r.discardPending = true
	t.SetCurrent(dealer)
}

func (r *Rules) makeTrump(t *engine.Table, seat int, suit card.Suit, alone bool) {
	r.trump = suit
	r.trumpSet = true
	r.bidder = seat
	r.alone = alone
	if !alone {
		t.Announce("%s made %s trump", t.Player(seat).Display(), suit)
		return
	}
	r.sittingOut = engine.Partner(seat)
	t.Hand(r.sittingOut).Clear()
	t.Announce("%s made %s trump and goes alone", t.Player(seat).Display(), suit)
}

func (r *Rules) finishBidding(t *engine.Table) {
	r.biddingComplete = true
	for seat := 0; seat < engine.NumSeats; seat++ {
		t.Hand(seat).Sort(r.less)
	}
	t.SetCenter()
	t.SetCurrent(r.NextSeat(t, t.Dealer()))
}

// Augment shows the seat to act the bids it may make, so clients never need
// to know the bidding rules.
func (r *Rules) Augment(t *engine.Table, viewer int, st *engine.Status) {
	if r.trumpSet {
		trump := r.trump
		st.Trump = &trump
	}
	if r.biddingComplete {
		return
	}
	dealer := t.Dealer()
	if r.discardPending {
		st.Phase = fmt.Sprintf("%s must discard", t.Player(dealer).Display())
		return
	}
	st.Phase = fmt.Sprintf("Bidding round %d: waiting for %s", r.biddingRound, t.Player(t.Current()).Display())
	if viewer != t.Current() {
		return
	}
	st.CenterActionCards = append(st.CenterActionCards, r.legalBids(viewer, dealer)...)
}

func (r *Rules) legalBids(seat, dealer int) []card.Card {
	if r.biddingRound == 1 {
		return []card.Card{
			card.NewAction(card.ActionPickup, r.kitty.Suit),
			card.NewAction(card.ActionAlone, r.kitty.Suit),
			card.NewAction(card.ActionSkip, r.kitty.Suit),
		}
	}
	var bids []card.Card
	for _, s := range card.Suits {
		if s != r.kitty.Suit {
			bids = append(bids, card.NewAction(card.ActionNameTrump, s))
		}
	}
	for _, s := range card.Suits {
		if s != r.kitty.Suit {
			bids = append(bids, card.NewAction(card.ActionAlone, s))
		}
	}
	if seat != dealer || !r.opts.ScrewTheDealer {
		bids = append(bids, card.NewAction(card.ActionSkip, r.kitty.Suit))
	}
	return bids
}
