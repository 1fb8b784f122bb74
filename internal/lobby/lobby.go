// Package lobby seats four players before a table is dealt.
package lobby

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"tricktable/internal/game/engine"
	"tricktable/internal/game/euchre"
	"tricktable/internal/game/hearts"
)

var (
	ErrSeatTaken     = errors.New("seat is taken")
	ErrAlreadySeated = errors.New("player already holds a seat")
	ErrNotReady      = errors.New("lobby is not full")
	ErrBadSeat       = errors.New("no such seat")
)

// HouseRules are optional table rules chosen when the lobby is opened.
type HouseRules struct {
	ScrewTheDealer bool
}

func DefaultHouseRules() HouseRules {
	return HouseRules{ScrewTheDealer: euchre.DefaultOptions().ScrewTheDealer}
}

// Lobby is a table waiting for players. Lobbies are owned by the session
// hub and are not safe for concurrent use.
type Lobby struct {
	ID       int
	GameType engine.GameType
	Created  time.Time
	Rules    HouseRules

	seats [engine.NumSeats]*engine.Player
}

func New(id int, gameType engine.GameType, rules HouseRules, now time.Time) (*Lobby, error) {
	if !gameType.Valid() {
		return nil, fmt.Errorf("%w: unknown game type %d", engine.ErrConstruction, int(gameType))
	}
	return &Lobby{ID: id, GameType: gameType, Created: now, Rules: rules}, nil
}

// Join seats p at seat.
func (l *Lobby) Join(p engine.Player, seat int) error {
	if seat < 0 || seat >= engine.NumSeats {
		return fmt.Errorf("%w: %d", ErrBadSeat, seat)
	}
	if l.SeatOf(p) >= 0 {
		return fmt.Errorf("%w: %s", ErrAlreadySeated, p.Display())
	}
	if l.seats[seat] != nil {
		return fmt.Errorf("%w: %s", ErrSeatTaken, engine.SeatName(seat))
	}
	l.seats[seat] = &p
	return nil
}

// Leave frees the seat p holds. It reports whether p was seated.
func (l *Lobby) Leave(p engine.Player) bool {
	seat := l.SeatOf(p)
	if seat < 0 {
		return false
	}
	l.seats[seat] = nil
	return true
}

// SeatOf returns the seat held by p, or -1.
func (l *Lobby) SeatOf(p engine.Player) int {
	for seat, sp := range l.seats {
		if sp != nil && sp.Equal(p) {
			return seat
		}
	}
	return -1
}

// Seats returns the seated players; empty seats are nil.
func (l *Lobby) Seats() [engine.NumSeats]*engine.Player {
	var out [engine.NumSeats]*engine.Player
	for i, p := range l.seats {
		if p != nil {
			cp := *p
			out[i] = &cp
		}
	}
	return out
}

func (l *Lobby) Ready() bool {
	for _, p := range l.seats {
		if p == nil {
			return false
		}
	}
	return true
}

// Empty reports whether nobody is seated.
func (l *Lobby) Empty() bool {
	for _, p := range l.seats {
		if p != nil {
			return false
		}
	}
	return true
}

// Idle reports whether the lobby has waited at least ttl without filling.
func (l *Lobby) Idle(now time.Time, ttl time.Duration) bool {
	return !l.Ready() && now.Sub(l.Created) >= ttl
}

// CreateGame deals a table for the seated players in seat order. The table
// takes the lobby's ID.
func (l *Lobby) CreateGame(rng *rand.Rand) (*engine.Table, error) {
	if !l.Ready() {
		return nil, ErrNotReady
	}
	var players [engine.NumSeats]engine.Player
	for i, p := range l.seats {
		players[i] = *p
	}
	return NewTable(l.ID, l.GameType, players, l.Rules, rng)
}

// NewTable builds a table of the given variant.
func NewTable(id int, gameType engine.GameType, players [engine.NumSeats]engine.Player, rules HouseRules, rng *rand.Rand) (*engine.Table, error) {
	switch gameType {
	case engine.Hearts:
		return hearts.New(id, players, rng)
	case engine.Euchre:
		return euchre.New(id, players, euchre.Options{ScrewTheDealer: rules.ScrewTheDealer}, rng)
	}
	return nil, fmt.Errorf("%w: unknown game type %d", engine.ErrConstruction, int(gameType))
}
