package card

import (
	"fmt"
	"strings"
)

type Suit int

const (
	Club Suit = iota
	Diamond
	Spade
	Heart
)

// Suits lists every suit in default sort order.
var Suits = []Suit{Club, Diamond, Spade, Heart}

func (s Suit) Valid() bool { return s >= Club && s <= Heart }

func (s Suit) String() string {
	switch s {
	case Club:
		return "Club"
	case Diamond:
		return "Diamond"
	case Spade:
		return "Spade"
	case Heart:
		return "Heart"
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

// Red reports whether the suit is a red suit.
func (s Suit) Red() bool { return s == Diamond || s == Heart }

// SameColor returns the other suit of the same color.
func (s Suit) SameColor() Suit {
	switch s {
	case Club:
		return Spade
	case Spade:
		return Club
	case Diamond:
		return Heart
	default:
		return Diamond
	}
}

type Value int

const (
	Two Value = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Values lists every rank from Two to Ace.
var Values = []Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (v Value) Valid() bool { return v >= Two && v <= Ace }

func (v Value) String() string {
	switch v {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if v.Valid() {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("Value(%d)", int(v))
}

type Action int

const (
	ActionPickup Action = iota + 1
	ActionAlone
	ActionSkip
	ActionNameTrump
	ActionDiscard
)

func (a Action) Valid() bool { return a >= ActionPickup && a <= ActionDiscard }

func (a Action) String() string {
	switch a {
	case ActionPickup:
		return "pickup"
	case ActionAlone:
		return "alone"
	case ActionSkip:
		return "skip"
	case ActionNameTrump:
		return "trump"
	case ActionDiscard:
		return "discard"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Card is a playing card, or an action pseudo-card when ActionTag is set.
// Action pseudo-cards carry a bid or skip over the same message as a play
// and are never held in a Hand.
type Card struct {
	Suit      Suit    `json:"Suit"`
	Value     Value   `json:"Value"`
	ActionTag *Action `json:"ActionTag,omitempty"`
}

func New(suit Suit, value Value) Card {
	return Card{Suit: suit, Value: value}
}

// NewAction builds an action pseudo-card. The suit is meaningful for
// pickup, alone and trump bids; value is ignored.
func NewAction(action Action, suit Suit) Card {
	a := action
	return Card{Suit: suit, ActionTag: &a}
}

func (c Card) IsAction() bool { return c.ActionTag != nil }

// Action returns the action tag, or zero for an ordinary card.
func (c Card) Action() Action {
	if c.ActionTag == nil {
		return 0
	}
	return *c.ActionTag
}

// Is reports whether c carries the given action tag.
func (c Card) Is(a Action) bool { return c.ActionTag != nil && *c.ActionTag == a }

// Equal compares suit and value only.
func (c Card) Equal(o Card) bool { return c.Suit == o.Suit && c.Value == o.Value }

// Key is the default suit-major ordering key.
func (c Card) Key() int { return int(c.Suit)*32 + int(c.Value) }

func (c Card) String() string {
	if c.IsAction() {
		return fmt.Sprintf("<%s %s>", c.Action(), strings.ToLower(c.Suit.String()))
	}
	return c.Value.String() + c.Suit.String()[:1]
}

// Validate checks that the card is well formed for the wire.
func (c Card) Validate() error {
	validators := []cardValidator{validateSuit}
	if c.IsAction() {
		validators = append(validators, validateAction)
	} else {
		validators = append(validators, validateValue)
	}
	for _, v := range validators {
		if err := v(c); err != nil {
			return err
		}
	}
	return nil
}

type cardValidator func(Card) error

func validateSuit(c Card) error {
	if !c.Suit.Valid() {
		return fmt.Errorf("invalid card suit: %d", int(c.Suit))
	}
	return nil
}

func validateValue(c Card) error {
	if !c.Value.Valid() {
		return fmt.Errorf("invalid card value: %d (must be 2-14)", int(c.Value))
	}
	return nil
}

func validateAction(c Card) error {
	if !c.Action().Valid() {
		return fmt.Errorf("invalid action tag: %d", int(c.Action()))
	}
	return nil
}
