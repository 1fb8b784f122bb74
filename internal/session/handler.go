// Package session routes client envelopes to lobbies and running tables.
// All state is owned by the network hub goroutine.
package session

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"tricktable/internal/game/engine"
	"tricktable/internal/lobby"
	"tricktable/internal/network"
	"tricktable/internal/services/events"
	"tricktable/internal/services/snapshot"
)

// RequestHandlerFunc handles one ClientRequest kind.
type RequestHandlerFunc func(h *GameHandler, session *PlayerSession, req *network.ClientRequest)

type Config struct {
	// LobbyTTL is how long an unfilled lobby or a finished game is kept.
	LobbyTTL time.Duration
	// HouseRules apply to lobbies that do not choose their own.
	HouseRules lobby.HouseRules
}

// game is a running or finished table.
type game struct {
	table    *engine.Table
	started  time.Time
	finished time.Time
}

type GameHandler struct {
	cfg Config
	log *zap.Logger
	rng *rand.Rand
	now func() time.Time

	sessions map[*network.Client]*PlayerSession
	byName   map[string]*PlayerSession
	lobbies  map[int]*lobby.Lobby
	games    map[int]*game
	nextID   int

	requestRouter map[network.RequestKind]RequestHandlerFunc

	events    events.Publisher
	snapshots snapshot.Writer
	directory *Directory
	dirty     bool
}

type Option func(*GameHandler)

func WithEvents(p events.Publisher) Option { return func(h *GameHandler) { h.events = p } }

func WithSnapshots(w snapshot.Writer) Option { return func(h *GameHandler) { h.snapshots = w } }

// WithRand fixes the shuffle source, for tests.
func WithRand(r *rand.Rand) Option { return func(h *GameHandler) { h.rng = r } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(h *GameHandler) { h.now = now } }

func NewGameHandler(cfg Config, log *zap.Logger, opts ...Option) *GameHandler {
	if cfg.LobbyTTL <= 0 {
		cfg.LobbyTTL = 15 * time.Minute
	}
	h := &GameHandler{
		cfg:           cfg,
		log:           log.Named("session"),
		now:           time.Now,
		sessions:      make(map[*network.Client]*PlayerSession),
		byName:        make(map[string]*PlayerSession),
		lobbies:       make(map[int]*lobby.Lobby),
		games:         make(map[int]*game),
		requestRouter: make(map[network.RequestKind]RequestHandlerFunc),
		events:        events.Nop{},
		snapshots:     snapshot.Nop{},
		directory:     NewDirectory(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		seed := uint64(h.now().UnixNano())
		h.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	h.registerRequestHandlers()
	return h
}

// Directory exposes the listing published on every tick.
func (h *GameHandler) Directory() *Directory { return h.directory }

func (h *GameHandler) registerRequestHandlers() {
	h.requestRouter[network.RequestAvailableGames] = handleAvailableGames
	h.requestRouter[network.RequestGameStatus] = handleGameStatus
	h.requestRouter[network.RequestLobbyStatus] = handleLobbyStatus
	h.requestRouter[network.RequestNewLobby] = handleNewLobby
	h.requestRouter[network.RequestJoinLobby] = handleJoinLobby
	h.requestRouter[network.RequestLeaveLobby] = handleLeaveLobby
}

// OnConnect binds the client's identity. A second login for the same
// player replaces the first connection.
func (h *GameHandler) OnConnect(c *network.Client) {
	session := NewPlayerSession(c, h.now())
	if old, ok := h.byName[session.Name()]; ok {
		h.log.Info("replacing session", zap.String("player", session.Name()), zap.String("old", old.ID))
		old.Client.Close()
	}
	h.sessions[c] = session
	h.byName[session.Name()] = session
	h.dirty = true
	h.log.Info("session created", zap.String("player", session.Name()), zap.String("session", session.ID),
		zap.Stringer("remote", c.RemoteAddr()), zap.Int("sessions", len(h.sessions)))
	h.events.Publish(events.New(events.PlayerLogin, 0, session.Name(), ""))

	// Resume any table the player is seated at.
	for _, g := range h.games {
		if seat := g.table.SeatOf(session.Player); seat >= 0 {
			session.send(network.NewGameStatus(g.table.Status(seat)))
		}
	}
}

// OnDisconnect forgets the session. Seats in lobbies and games are kept.
func (h *GameHandler) OnDisconnect(c *network.Client) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}
	delete(h.sessions, c)
	if h.byName[session.Name()] == session {
		delete(h.byName, session.Name())
	}
	h.dirty = true
	h.log.Info("session closed", zap.String("player", session.Name()),
		zap.Duration("connected", h.now().Sub(session.Connected)), zap.Int("sessions", len(h.sessions)))
}

func (h *GameHandler) OnMessage(c *network.Client, m network.Message) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}
	switch msg := m.(type) {
	case *network.ClientRequest:
		handler, found := h.requestRouter[msg.Request]
		if !found {
			session.fail("unknown request %s", msg.Request)
			return
		}
		handler(h, session, msg)
	case *network.GamePlay:
		handleGamePlay(h, session, msg)
	case *network.UserLogin:
		session.fail("already logged in as %s", session.Name())
	default:
		h.log.Debug("ignoring message", zap.Stringer("type", m.Type()), zap.String("player", session.Name()))
	}
}

// OnTick reaps stale lobbies and finished games and republishes the
// listing when anything changed.
func (h *GameHandler) OnTick(now time.Time) {
	h.reap(now)
	if h.dirty {
		h.directory.publish(h.listing(now))
		h.dirty = false
	}
}

func (h *GameHandler) reap(now time.Time) {
	ttl := h.cfg.LobbyTTL
	for id, l := range h.lobbies {
		if l.Idle(now, ttl) {
			delete(h.lobbies, id)
			h.dirty = true
			h.log.Info("lobby reaped", zap.Int("lobby", id))
			h.events.Publish(events.New(events.LobbyClosed, id, "", "idle"))
		}
	}
	for id, g := range h.games {
		if !g.finished.IsZero() && now.Sub(g.finished) >= ttl {
			delete(h.games, id)
			h.dirty = true
			h.snapshots.Remove(id)
			h.log.Info("game reaped", zap.Int("game", id))
			h.events.Publish(events.New(events.GameReaped, id, "", ""))
		}
	}
}

func (h *GameHandler) allocID() int {
	id := h.nextID
	h.nextID++
	return id
}
