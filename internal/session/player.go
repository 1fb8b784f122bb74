package session

import (
	"time"

	"github.com/google/uuid"

	"tricktable/internal/game/engine"
	"tricktable/internal/network"
)

// PlayerSession binds a logged-in connection to its player identity.
type PlayerSession struct {
	ID        string
	Client    *network.Client
	Player    engine.Player
	Connected time.Time
}

func NewPlayerSession(client *network.Client, now time.Time) *PlayerSession {
	return &PlayerSession{
		ID:        uuid.NewString(),
		Client:    client,
		Player:    engine.NewPlayer(client.User()),
		Connected: now,
	}
}

func (s *PlayerSession) Name() string { return s.Player.Name() }

func (s *PlayerSession) send(m network.Message) { s.Client.Send(m) }

func (s *PlayerSession) fail(format string, args ...any) {
	s.send(network.Response(network.ResponseFail, s.Name(), format, args...))
}

func (s *PlayerSession) ok(format string, args ...any) {
	s.send(network.Response(network.ResponseOK, s.Name(), format, args...))
}
