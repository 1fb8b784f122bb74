// Package store persists player credentials.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrNotFound = errors.New("player not found")

// Player is a stored identity. PasswordHashHex is the hex MD5 digest the
// client sent at registration.
type Player struct {
	Name            string
	PasswordHashHex string
	Created         time.Time
}

// PlayerStore looks up and registers players. Names are stored lowercased.
type PlayerStore interface {
	GetByName(ctx context.Context, name string) (*Player, error)
	// Create reports false if the name is taken.
	Create(ctx context.Context, name, passwordHashHex string) (bool, error)
	Close() error
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Memory keeps players in a map.
type Memory struct {
	mu      sync.RWMutex
	players map[string]Player
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{players: make(map[string]Player), now: time.Now}
}

func (m *Memory) GetByName(_ context.Context, name string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[normalize(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) Create(_ context.Context, name, passwordHashHex string) (bool, error) {
	name = normalize(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.players[name]; taken {
		return false, nil
	}
	m.players[name] = Player{Name: name, PasswordHashHex: strings.ToLower(passwordHashHex), Created: m.now()}
	return true, nil
}

func (m *Memory) Close() error { return nil }
