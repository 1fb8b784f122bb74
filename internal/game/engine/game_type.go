package engine

import (
	"fmt"
	"strings"
)

const NumSeats = 4

// Seat names in turn order.
const (
	North = iota
	East
	South
	West
)

var seatNames = [NumSeats]string{"North", "East", "South", "West"}

func SeatName(seat int) string {
	if seat < 0 || seat >= NumSeats {
		return fmt.Sprintf("Seat(%d)", seat)
	}
	return seatNames[seat]
}

// Clockwise returns the seat after seat.
func Clockwise(seat int) int { return (seat + 1) % NumSeats }

// Partner returns the seat across the table.
func Partner(seat int) int { return (seat + 2) % NumSeats }

type GameType int

const (
	GameTypeInvalid GameType = iota
	Hearts
	Euchre
)

func (g GameType) Valid() bool { return g == Hearts || g == Euchre }

func (g GameType) String() string {
	switch g {
	case Hearts:
		return "Hearts"
	case Euchre:
		return "Euchre"
	}
	return "Invalid"
}

// ParseGameType accepts a variant name in any case.
func ParseGameType(s string) (GameType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hearts":
		return Hearts, nil
	case "euchre":
		return Euchre, nil
	}
	return GameTypeInvalid, fmt.Errorf("unknown game type %q", s)
}
