package network

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn moves whole envelopes. Implementations allow one concurrent reader
// and one concurrent writer.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	SetReadDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// pinger is implemented by transports with their own keepalive.
type pinger interface {
	Ping() error
}

type streamConn struct {
	conn   net.Conn
	framer *Framer
	mode   Framing
}

// NewStreamConn frames envelopes over a raw TCP or TLS stream.
func NewStreamConn(conn net.Conn, mode Framing, maxFrame int) Conn {
	return &streamConn{conn: conn, framer: NewFramer(conn, mode, maxFrame), mode: mode}
}

func (s *streamConn) ReadFrame() ([]byte, error) { return s.framer.ReadFrame() }

func (s *streamConn) WriteFrame(frame []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return WriteFrame(s.conn, s.mode, frame)
}

func (s *streamConn) SetReadDeadline(t time.Time) error { return s.conn.SetReadDeadline(t) }
func (s *streamConn) RemoteAddr() net.Addr              { return s.conn.RemoteAddr() }
func (s *streamConn) Close() error                      { return s.conn.Close() }

// WebSocketConn carries one envelope per text message.
type WebSocketConn struct {
	ws *websocket.Conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// UpgradeWebSocket promotes an HTTP request to a WebSocketConn.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request, maxFrame int) (*WebSocketConn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	ws.SetReadLimit(int64(maxFrame))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &WebSocketConn{ws: ws}, nil
}

func (c *WebSocketConn) ReadFrame() ([]byte, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *WebSocketConn) WriteFrame(frame []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

func (c *WebSocketConn) Ping() error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *WebSocketConn) SetReadDeadline(t time.Time) error { return c.ws.SetReadDeadline(t) }
func (c *WebSocketConn) RemoteAddr() net.Addr              { return c.ws.RemoteAddr() }

func (c *WebSocketConn) Close() error {
	c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
	return c.ws.Close()
}
