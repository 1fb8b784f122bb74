package session

import (
	"sort"
	"sync"
	"time"

	"tricktable/internal/game/engine"
)

type GameInfo struct {
	ID       int       `json:"id"`
	GameType string    `json:"gameType"`
	Players  []string  `json:"players"`
	Totals   []int     `json:"totals"`
	Round    int       `json:"round"`
	Active   bool      `json:"active"`
	Started  time.Time `json:"started"`
}

type LobbyInfo struct {
	ID       int       `json:"id"`
	GameType string    `json:"gameType"`
	Seats    []string  `json:"seats"`
	Ready    bool      `json:"ready"`
	Created  time.Time `json:"created"`
}

// Listing is an immutable snapshot of the hub's tables for readers on
// other goroutines.
type Listing struct {
	Games    []GameInfo            `json:"games"`
	Lobbies  []LobbyInfo           `json:"lobbies"`
	Sessions int                   `json:"sessions"`
	Updated  time.Time             `json:"updated"`
	views    map[int]engine.Status // spectator views by game ID
}

// View returns the spectator projection of a game.
func (l Listing) View(id int) (engine.Status, bool) {
	st, ok := l.views[id]
	return st, ok
}

// Directory publishes listings from the hub goroutine to HTTP handlers.
type Directory struct {
	mu      sync.RWMutex
	listing Listing
}

func NewDirectory() *Directory {
	return &Directory{listing: Listing{Games: []GameInfo{}, Lobbies: []LobbyInfo{}}}
}

func (d *Directory) Snapshot() Listing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.listing
}

func (d *Directory) publish(l Listing) {
	d.mu.Lock()
	d.listing = l
	d.mu.Unlock()
}

func (h *GameHandler) listing(now time.Time) Listing {
	l := Listing{
		Games:    make([]GameInfo, 0, len(h.games)),
		Lobbies:  make([]LobbyInfo, 0, len(h.lobbies)),
		Sessions: len(h.sessions),
		Updated:  now,
		views:    make(map[int]engine.Status, len(h.games)),
	}
	for id, g := range h.games {
		info := GameInfo{
			ID:       id,
			GameType: g.table.Type().String(),
			Round:    g.table.Round(),
			Active:   g.table.IsActive(),
			Started:  g.started,
		}
		for seat, p := range g.table.Players() {
			info.Players = append(info.Players, p.Display())
			info.Totals = append(info.Totals, g.table.Total(seat))
		}
		l.Games = append(l.Games, info)
		l.views[id] = g.table.Status(engine.Spectator)
	}
	for id, lb := range h.lobbies {
		info := LobbyInfo{ID: id, GameType: lb.GameType.String(), Ready: lb.Ready(), Created: lb.Created}
		for _, p := range lb.Seats() {
			name := ""
			if p != nil {
				name = p.Display()
			}
			info.Seats = append(info.Seats, name)
		}
		l.Lobbies = append(l.Lobbies, info)
	}
	sort.Slice(l.Games, func(i, j int) bool { return l.Games[i].ID < l.Games[j].ID })
	sort.Slice(l.Lobbies, func(i, j int) bool { return l.Lobbies[i].ID < l.Lobbies[j].ID })
	return l
}
