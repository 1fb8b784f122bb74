package card

import (
	"math/rand/v2"
)

// Deck is a fixed set of cards with a deal cursor.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck builds the Cartesian product of values and suits. A nil slice
// selects the full range.
func NewDeck(values []Value, suits []Suit) *Deck {
	if values == nil {
		values = Values
	}
	if suits == nil {
		suits = Suits
	}
	cards := make([]Card, 0, len(values)*len(suits))
	for _, s := range suits {
		for _, v := range values {
			cards = append(cards, New(s, v))
		}
	}
	return &Deck{cards: cards}
}

// Size returns the total number of cards in the deck.
func (d *Deck) Size() int {
	if d == nil {
		return 0
	}
	return len(d.cards)
}

// Remaining returns how many cards Next can still yield.
func (d *Deck) Remaining() int { return d.Size() - d.next }

// Shuffle is an unbiased Fisher-Yates shuffle. It resets the deal cursor.
func (d *Deck) Shuffle(r *rand.Rand) {
	n := d.Size()
	for i := n - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.next = 0
}

// Next deals the next card. ok is false once the deck is exhausted.
func (d *Deck) Next() (c Card, ok bool) {
	if d.next >= d.Size() {
		return Card{}, false
	}
	c = d.cards[d.next]
	d.next++
	return c, true
}

// Cards returns a copy of the deck in its current order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
