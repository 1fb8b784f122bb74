package main

import (
	"fmt"
	"strings"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
	"tricktable/internal/network"
)

func renderResponse(r *network.ServerResponse) string {
	code := map[network.ResponseCode]string{
		network.ResponseOK:           "ok",
		network.ResponseFail:         "failed",
		network.ResponseUnauthorized: "unauthorized",
	}[r.ResponseCode]
	if r.Message != "" {
		return fmt.Sprintf("[%s] %s", code, r.Message)
	}
	return fmt.Sprintf("[%s] %s", code, r.User)
}

func renderList(l *network.GameList) string {
	var sb strings.Builder
	sb.WriteString("games:")
	for _, g := range l.Games {
		fmt.Fprintf(&sb, " %d(%s)", g.ID, g.GameType)
	}
	sb.WriteString("\nlobbies:")
	for _, g := range l.Lobbies {
		fmt.Fprintf(&sb, " %d(%s)", g.ID, g.GameType)
	}
	return sb.String()
}

func renderLobby(l *network.LobbyStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "lobby %d (%s)", l.GameID, l.GameType)
	for seat, p := range l.Players {
		name := "-"
		if p != nil {
			name = *p
		}
		fmt.Fprintf(&sb, "\n  %d %-5s %s", seat, engine.SeatName(seat), name)
	}
	if l.LobbyReady {
		sb.WriteString("\n  ready")
	}
	return sb.String()
}

func renderStatus(st *network.GameStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "game %d (%s) round %d", st.GameID, st.GameType, st.Round+1)
	if st.TrumpSuit != nil {
		fmt.Fprintf(&sb, ", trump %s", st.TrumpSuit)
	}
	for seat, name := range st.Players {
		marker := " "
		if seat == st.CurrentPlayer {
			marker = "*"
		}
		played := ""
		if c := st.PlayedCardsBySeat[seat]; c != nil {
			played = c.String()
		}
		fmt.Fprintf(&sb, "\n %s %-5s %-8s cards %2d  score %3d  %s",
			marker, engine.SeatName(seat), name, st.HandSizes[seat], sum(st.Scores[seat]), played)
	}
	if center := center(st); len(center) > 0 {
		fmt.Fprintf(&sb, "\n  center: %s", joinCards(center))
	}
	if hand := ownHand(st); len(hand) > 0 {
		fmt.Fprintf(&sb, "\n  hand:   %s", numbered(hand))
	}
	if b := bids(st); len(b) > 0 {
		fmt.Fprintf(&sb, "\n  bids:   %s", numbered(b))
	}
	fmt.Fprintf(&sb, "\n  %s", st.CurrentGameStatus)
	return sb.String()
}

func ownHand(st *network.GameStatus) []card.Card {
	for _, h := range st.Hands {
		if len(h) > 0 {
			return h
		}
	}
	return nil
}

func bids(st *network.GameStatus) []card.Card {
	var out []card.Card
	for _, c := range st.CenterActionCards {
		if c.IsAction() {
			out = append(out, c)
		}
	}
	return out
}

func center(st *network.GameStatus) []card.Card {
	var out []card.Card
	for _, c := range st.CenterActionCards {
		if !c.IsAction() {
			out = append(out, c)
		}
	}
	return out
}

func numbered(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = fmt.Sprintf("%d:%s", i, c)
	}
	return strings.Join(parts, " ")
}

func joinCards(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
