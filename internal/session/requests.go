package session

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"tricktable/internal/game/engine"
	"tricktable/internal/lobby"
	"tricktable/internal/network"
	"tricktable/internal/services/events"
)

func handleAvailableGames(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	list := &network.GameList{Games: []network.GameSummary{}, Lobbies: []network.GameSummary{}}
	for id, g := range h.games {
		list.Games = append(list.Games, network.GameSummary{ID: id, GameType: g.table.Type()})
	}
	for id, l := range h.lobbies {
		list.Lobbies = append(list.Lobbies, network.GameSummary{ID: id, GameType: l.GameType})
	}
	sort.Slice(list.Games, func(i, j int) bool { return list.Games[i].ID < list.Games[j].ID })
	sort.Slice(list.Lobbies, func(i, j int) bool { return list.Lobbies[i].ID < list.Lobbies[j].ID })
	session.send(list)
}

func handleGameStatus(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	g, ok := h.games[req.GameID]
	if !ok {
		session.fail("no game %d", req.GameID)
		return
	}
	seat := g.table.SeatOf(session.Player)
	if seat < 0 {
		seat = engine.Spectator
	}
	session.send(network.NewGameStatus(g.table.Status(seat)))
}

func handleLobbyStatus(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	l, ok := h.lobbies[req.GameID]
	if !ok {
		session.fail("no lobby %d", req.GameID)
		return
	}
	session.send(lobbyStatus(l))
}

// handleNewLobby opens a lobby. The creator is seated when Data names a seat.
func handleNewLobby(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	data, err := decodeData(req.Data)
	if err != nil {
		session.fail("%v", err)
		return
	}
	gt, err := parseGameType(data.GameType)
	if err != nil {
		session.fail("%v", err)
		return
	}
	rules := h.cfg.HouseRules
	if data.ScrewTheDealer != nil {
		rules.ScrewTheDealer = *data.ScrewTheDealer
	}

	l, err := lobby.New(h.allocID(), gt, rules, h.now())
	if err != nil {
		session.fail("%v", err)
		return
	}
	if data.Seat != nil {
		seat, err := data.seat()
		if err != nil {
			session.fail("%v", err)
			return
		}
		if err := l.Join(session.Player, seat); err != nil {
			session.fail("%v", err)
			return
		}
	}
	h.lobbies[l.ID] = l
	h.dirty = true
	h.log.Info("lobby opened", zap.Int("lobby", l.ID), zap.Stringer("type", gt), zap.String("player", session.Name()))
	h.events.Publish(events.New(events.LobbyOpened, l.ID, session.Name(), gt.String()))
	session.send(lobbyStatus(l))
}

func handleJoinLobby(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	l, ok := h.lobbies[req.GameID]
	if !ok {
		session.fail("no lobby %d", req.GameID)
		return
	}
	data, err := decodeData(req.Data)
	if err != nil {
		session.fail("%v", err)
		return
	}
	seat, err := data.seat()
	if err != nil {
		session.fail("%v", err)
		return
	}
	if err := l.Join(session.Player, seat); err != nil {
		session.fail("%v", err)
		return
	}
	h.dirty = true
	h.log.Info("player joined lobby", zap.Int("lobby", l.ID), zap.String("player", session.Name()), zap.Int("seat", seat))

	if l.Ready() {
		h.promote(l)
		return
	}
	h.broadcastLobby(l)
}

func handleLeaveLobby(h *GameHandler, session *PlayerSession, req *network.ClientRequest) {
	l, ok := h.lobbies[req.GameID]
	if !ok {
		session.fail("no lobby %d", req.GameID)
		return
	}
	if !l.Leave(session.Player) {
		session.fail("not seated in lobby %d", l.ID)
		return
	}
	h.dirty = true
	h.log.Info("player left lobby", zap.Int("lobby", l.ID), zap.String("player", session.Name()))
	session.ok("left lobby %d", l.ID)
	h.broadcastLobby(l)
}

// promote deals the table for a full lobby. The game keeps the lobby's ID.
func (h *GameHandler) promote(l *lobby.Lobby) {
	table, err := l.CreateGame(h.rng)
	if err != nil {
		h.log.Error("create game", zap.Int("lobby", l.ID), zap.Error(err))
		for _, p := range l.Seats() {
			if s := h.sessionOf(p); s != nil {
				s.fail("could not start game %d: %v", l.ID, err)
			}
		}
		if errors.Is(err, engine.ErrConstruction) {
			delete(h.lobbies, l.ID)
		}
		return
	}
	delete(h.lobbies, l.ID)
	h.games[table.ID()] = &game{table: table, started: h.now()}
	h.dirty = true
	h.log.Info("game started", zap.Int("game", table.ID()), zap.Stringer("type", table.Type()))
	h.events.Publish(events.New(events.GameStarted, table.ID(), "", table.Type().String()))
	h.pushStatus(table)
}

func (h *GameHandler) broadcastLobby(l *lobby.Lobby) {
	st := lobbyStatus(l)
	for _, p := range l.Seats() {
		if s := h.sessionOf(p); s != nil {
			s.send(st)
		}
	}
}

func (h *GameHandler) sessionOf(p *engine.Player) *PlayerSession {
	if p == nil {
		return nil
	}
	return h.byName[p.Name()]
}

func lobbyStatus(l *lobby.Lobby) *network.LobbyStatus {
	st := &network.LobbyStatus{GameID: l.ID, GameType: l.GameType, LobbyReady: l.Ready()}
	for seat, p := range l.Seats() {
		if p != nil {
			name := p.Display()
			st.Players[seat] = &name
		}
	}
	return st
}
