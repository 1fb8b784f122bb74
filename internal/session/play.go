package session

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tricktable/internal/game/engine"
	"tricktable/internal/network"
	"tricktable/internal/services/events"
)

// handleGamePlay applies a card or bid from the session's own player.
func handleGamePlay(h *GameHandler, session *PlayerSession, play *network.GamePlay) {
	g, ok := h.games[play.GameID]
	if !ok {
		session.fail("no game %d", play.GameID)
		return
	}
	if !engine.NewPlayer(play.Player).Equal(session.Player) {
		session.send(network.Response(network.ResponseUnauthorized, session.Name(),
			"cannot play for %s", play.Player))
		return
	}

	table := g.table
	err := table.Action(session.Player, play.Card)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrIllegalPlay):
		// The advisory travels in the actor's own status.
		seat := table.SeatOf(session.Player)
		session.send(network.NewGameStatus(table.Status(seat)))
		return
	case errors.Is(err, engine.ErrIllegalActor), errors.Is(err, engine.ErrGameOver):
		session.fail("%v", err)
		return
	case errors.Is(err, engine.ErrGameLogic):
		h.log.Error("game aborted", zap.Int("game", table.ID()), zap.Error(err))
	default:
		h.log.Error("unexpected action error", zap.Int("game", table.ID()), zap.Error(err))
		session.fail("%v", err)
		return
	}

	h.dirty = true
	h.events.Publish(events.New(events.GamePlayed, table.ID(), session.Name(), play.Card.String()))
	if !table.IsActive() && g.finished.IsZero() {
		g.finished = h.now()
		h.log.Info("game over", zap.Int("game", table.ID()), zap.Error(table.Err()))
		h.events.Publish(events.New(events.GameFinished, table.ID(), "", finalScores(table)))
	}
	h.pushStatus(table)
}

// pushStatus sends every connected seat its own view and mirrors the
// spectator view to the snapshot store.
func (h *GameHandler) pushStatus(table *engine.Table) {
	for seat, p := range table.Players() {
		if s := h.byName[p.Name()]; s != nil {
			s.send(network.NewGameStatus(table.Status(seat)))
		}
	}
	h.snapshots.Put(table.ID(), network.NewGameStatus(table.Status(engine.Spectator)))
}

func finalScores(table *engine.Table) string {
	parts := make([]string, 0, engine.NumSeats)
	for seat, p := range table.Players() {
		parts = append(parts, fmt.Sprintf("%s=%d", p.Display(), table.Total(seat)))
	}
	return strings.Join(parts, " ")
}
