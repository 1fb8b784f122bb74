package engine

import (
	"fmt"

	"tricktable/internal/game/card"
)

// Spectator is the viewer seat for a projection that hides every hand.
const Spectator = -1

// Status is the per-seat projection of a table. Everyone's name, score and
// hand size is visible; only the viewer's own cards are filled in.
type Status struct {
	GameID            int
	GameType          GameType
	Players           [NumSeats]string
	Hands             [NumSeats][]card.Card
	HandSizes         [NumSeats]int
	PlayedCardsBySeat [NumSeats]*card.Card
	CenterActionCards []card.Card
	Scores            [NumSeats][]int
	CurrentGameStatus string
	CurrentPlayer     int
	Dealer            int
	Round             int
	Active            bool
	Trump             *card.Suit

	// Phase is set by variants to describe what the table waits for.
	Phase string
}

// Status projects the table for viewer.
func (t *Table) Status(viewer int) Status {
	st := Status{
		GameID:            t.id,
		GameType:          t.Type(),
		CenterActionCards: t.Center(),
		CurrentPlayer:     t.current,
		Dealer:            t.Dealer(),
		Round:             t.round,
		Active:            !t.over,
	}
	for seat := range t.players {
		st.Players[seat] = t.players[seat].Display()
		st.HandSizes[seat] = t.hands[seat].Size()
		st.Scores[seat] = t.Scores(seat)
		if seat == viewer {
			st.Hands[seat] = t.hands[seat].Cards()
		} else {
			st.Hands[seat] = []card.Card{}
		}
		if c := t.played[seat]; c != nil {
			cp := *c
			st.PlayedCardsBySeat[seat] = &cp
		}
	}
	if aug, ok := t.rules.(StatusAugmenter); ok && !t.over {
		aug.Augment(t, viewer, &st)
	}
	st.CurrentGameStatus = t.describe(viewer, st.Phase)
	return st
}

func (t *Table) describe(viewer int, phase string) string {
	if t.message != "" && (t.messageSeat == viewer || t.messageSeat == allSeats) {
		return t.message
	}
	if t.over {
		return "Game over"
	}
	if phase != "" {
		return phase
	}
	return fmt.Sprintf("Trick %d: waiting for %s", t.trickCount+1, t.players[t.current].Display())
}
