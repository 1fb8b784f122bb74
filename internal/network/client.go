package network

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer  = 64
	inboxBuffer = 32
)

// Client is one logged-in connection as seen by the hub.
type Client struct {
	conn Conn
	hub  *Hub
	user string
	log  *zap.Logger

	// send is drained by writeLoop; the hub closes it on unregister.
	send chan []byte
	// inbox holds decoded envelopes until the hub's next tick.
	inbox chan Message

	// closed is only touched by the hub goroutine.
	closed bool
}

func newClient(conn Conn, hub *Hub, user string, log *zap.Logger) *Client {
	return &Client{
		conn:  conn,
		hub:   hub,
		user:  user,
		log:   log.With(zap.String("user", user), zap.Stringer("remote", conn.RemoteAddr())),
		send:  make(chan []byte, sendBuffer),
		inbox: make(chan Message, inboxBuffer),
	}
}

// User is the identity bound at login.
func (c *Client) User() string { return c.user }

func (c *Client) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close tears down the transport; the hub then reports the disconnect.
func (c *Client) Close() error { return c.conn.Close() }

// Send queues m for delivery. It must be called from the hub goroutine.
// A client that cannot keep up is disconnected.
func (c *Client) Send(m Message) {
	if c.closed {
		return
	}
	frame, err := Encode(m)
	if err != nil {
		c.log.Error("encode failed", zap.Stringer("type", m.Type()), zap.Error(err))
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn("send buffer full, dropping connection")
		c.conn.Close()
	}
}

func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	if _, ok := c.conn.(pinger); ok {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	} else {
		c.conn.SetReadDeadline(time.Time{})
	}

	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			if !isClosed(err) {
				c.log.Info("read failed", zap.Error(err))
			}
			return
		}
		m, err := Decode(frame)
		if err != nil {
			c.log.Debug("discarding frame", zap.Error(err))
			continue
		}
		if _, ok := m.(*Heartbeat); ok {
			continue
		}
		select {
		case c.inbox <- m:
		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	p, canPing := c.conn.(pinger)
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteFrame(frame); err != nil {
				c.log.Info("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if !canPing {
				continue
			}
			if err := p.Ping(); err != nil {
				return
			}
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
