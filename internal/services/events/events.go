// Package events publishes table activity for other services to follow.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type Kind string

const (
	PlayerLogin  Kind = "player.login"
	LobbyOpened  Kind = "lobby.opened"
	LobbyClosed  Kind = "lobby.closed"
	GameStarted  Kind = "game.started"
	GamePlayed   Kind = "game.play"
	GameFinished Kind = "game.over"
	GameReaped   Kind = "game.reaped"
)

type Event struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	GameID int       `json:"gameId"`
	Player string    `json:"player,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// New stamps an event with a fresh ID and the current time.
func New(kind Kind, gameID int, player, detail string) Event {
	return Event{ID: uuid.NewString(), Kind: kind, GameID: gameID, Player: player, Detail: detail, Time: time.Now().UTC()}
}

// Subject is the NATS subject an event is published on.
func (e Event) Subject(prefix string) string {
	return fmt.Sprintf("%s.table.%d.%s", prefix, e.GameID, e.Kind)
}

// Publisher must not block the caller.
type Publisher interface {
	Publish(e Event)
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close() error  { return nil }

const queueSize = 256

// NATSPublisher sends events from a background goroutine. Events that do
// not fit in the queue are dropped.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
	wg     sync.WaitGroup

	mu     sync.RWMutex
	queue  chan Event
	closed bool
}

func NewNATS(url, prefix string, log *zap.Logger) (*NATSPublisher, error) {
	log = log.Named("events")
	nc, err := nats.Connect(url,
		nats.Name("tricktable"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	p := &NATSPublisher{nc: nc, prefix: prefix, queue: make(chan Event, queueSize), log: log}
	p.wg.Add(1)
	go p.run()
	return p, nil
}

// Publish queues e. After Close it does nothing.
func (p *NATSPublisher) Publish(e Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- e:
	default:
		p.log.Warn("event queue full, dropping", zap.String("kind", string(e.Kind)), zap.Int("game", e.GameID))
	}
}

func (p *NATSPublisher) run() {
	defer p.wg.Done()
	for e := range p.queue {
		data, err := json.Marshal(e)
		if err != nil {
			p.log.Error("marshal event", zap.Error(err))
			continue
		}
		if err := p.nc.Publish(e.Subject(p.prefix), data); err != nil {
			p.log.Warn("publish failed", zap.String("subject", e.Subject(p.prefix)), zap.Error(err))
		}
	}
}

// Close flushes queued events and drains the connection.
func (p *NATSPublisher) Close() error {
	p.stop()
	p.wg.Wait()
	return p.nc.Drain()
}

// Connected reports the state of the NATS connection for health checks.
func (p *NATSPublisher) Connected() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats %s", p.nc.Status())
	}
	return nil
}

func (p *NATSPublisher) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}
