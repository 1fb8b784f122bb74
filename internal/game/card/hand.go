package card

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalPlay is returned when a card is played that the seat does not hold
// or the rules do not allow.
var ErrIllegalPlay = errors.New("illegal play")

// Hand is the ordered set of cards owned by one seat.
type Hand struct {
	cards []Card
}

func NewHand(cards ...Card) *Hand {
	h := &Hand{}
	for _, c := range cards {
		h.AddCard(c)
	}
	return h
}

func (h *Hand) Size() int {
	if h == nil {
		return 0
	}
	return len(h.cards)
}

func (h *Hand) AddCard(c Card) {
	h.cards = append(h.cards, Card{Suit: c.Suit, Value: c.Value})
}

// Contains matches on suit and value only.
func (h *Hand) Contains(c Card) bool {
	return h.indexOf(c) >= 0
}

// PlayCard removes c from the hand.
func (h *Hand) PlayCard(c Card) error {
	i := h.indexOf(c)
	if i < 0 {
		return fmt.Errorf("%w: %s not in hand", ErrIllegalPlay, c)
	}
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return nil
}

// Any reports whether some held card satisfies pred.
func (h *Hand) Any(pred func(Card) bool) bool {
	for _, c := range h.cards {
		if pred(c) {
			return true
		}
	}
	return false
}

func (h *Hand) Clear() { h.cards = h.cards[:0] }

// Sort orders the hand in place.
func (h *Hand) Sort(less func(a, b Card) bool) { Sort(h.cards, less) }

// Cards returns a copy of the held cards.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) String() string {
	if h.Size() == 0 {
		return "(Empty)"
	}
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (h *Hand) indexOf(c Card) int {
	if c.IsAction() {
		return -1
	}
	for i, held := range h.cards {
		if held.Equal(c) {
			return i
		}
	}
	return -1
}
