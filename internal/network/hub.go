package network

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HubConfig tunes the tick loop.
type HubConfig struct {
	Tick          time.Duration
	FramesPerTick int
}

// Hub owns the set of live clients and serializes every event onto one
// goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns.
	done chan struct{}

	handler EventHandler
	cfg     HubConfig
	log     *zap.Logger
}

func NewHub(handler EventHandler, cfg HubConfig, log *zap.Logger) *Hub {
	if cfg.Tick <= 0 {
		cfg.Tick = 50 * time.Millisecond
	}
	if cfg.FramesPerTick <= 0 {
		cfg.FramesPerTick = 8
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		handler:    handler,
		cfg:        cfg,
		log:        log.Named("hub"),
	}
}

// Run processes events until ctx is done. On return every client has been
// disconnected.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.Tick)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
				c.conn.Close()
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("client registered", zap.String("user", c.user), zap.Int("clients", len(h.clients)))
			h.handler.OnConnect(c)

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}

		case now := <-ticker.C:
			for c := range h.clients {
				h.drain(c)
			}
			h.handler.OnTick(now)
		}
	}
}

// Register hands a logged-in client to the hub. It returns false if the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) drain(c *Client) {
	for i := 0; i < h.cfg.FramesPerTick; i++ {
		select {
		case m := <-c.inbox:
			h.handler.OnMessage(c, m)
			if c.closed {
				return
			}
		default:
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	c.closed = true
	close(c.send)
	h.handler.OnDisconnect(c)
}
