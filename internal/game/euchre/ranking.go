package euchre

import "tricktable/internal/game/card"

const (
	rightBower = 200
	leftBower  = 199
	trumpBase  = 100
)

// effectiveSuit treats the left bower as a trump card.
func (r *Rules) effectiveSuit(c card.Card) card.Suit {
	if r.trumpSet && c.Value == card.Jack && c.Suit == r.trump.SameColor() {
		return r.trump
	}
	return c.Suit
}

// rank orders cards within a trick led in lead. Cards that neither follow
// nor trump rank zero.
func (r *Rules) rank(c card.Card, lead card.Suit) int {
	if r.trumpSet && c.Value == card.Jack {
		switch c.Suit {
		case r.trump:
			return rightBower
		case r.trump.SameColor():
			return leftBower
		}
	}
	switch suit := r.effectiveSuit(c); {
	case r.trumpSet && suit == r.trump:
		return trumpBase + int(c.Value)
	case suit == lead:
		return int(c.Value)
	}
	return 0
}

// less sorts a hand by effective suit with trump last, then by rank.
func (r *Rules) less(a, b card.Card) bool {
	return r.sortKey(a) < r.sortKey(b)
}

func (r *Rules) sortKey(c card.Card) int {
	suit := r.effectiveSuit(c)
	group := int(suit)
	if r.trumpSet && suit == r.trump {
		group = len(card.Suits)
	}
	return group*1000 + r.rank(c, suit)
}
