package network

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxLoginAttempts = 5

// Authenticator checks or creates the identity named in a login. It
// returns the canonical user name on ResponseOK.
type Authenticator interface {
	Authenticate(ctx context.Context, login *UserLogin) (string, ResponseCode, error)
}

type ServerConfig struct {
	Framing      Framing
	MaxFrame     int
	TLS          *tls.Config
	LoginTimeout time.Duration
}

// Server accepts connections, runs the login handshake on the connection's
// own goroutine and hands authenticated clients to the hub.
type Server struct {
	hub  *Hub
	auth Authenticator
	cfg  ServerConfig
	log  *zap.Logger
}

func NewServer(hub *Hub, auth Authenticator, cfg ServerConfig, log *zap.Logger) *Server {
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = time.Minute
	}
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = DefaultMaxFrame
	}
	return &Server{hub: hub, auth: auth, cfg: cfg, log: log.Named("server")}
}

// ListenAndServe listens on addr, over TLS when configured, until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var (
		ln  net.Listener
		err error
	)
	if s.cfg.TLS != nil {
		ln, err = tls.Listen("tcp", addr, s.cfg.TLS)
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.Info("listening", zap.String("addr", ln.Addr().String()),
		zap.Stringer("framing", s.cfg.Framing), zap.Bool("tls", s.cfg.TLS != nil))
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(ctx, NewStreamConn(raw, s.cfg.Framing, s.cfg.MaxFrame))
	}
}

// ServeWS upgrades an HTTP request and serves it like a stream connection.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := UpgradeWebSocket(w, r, s.cfg.MaxFrame)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.handle(r.Context(), conn)
}

func (s *Server) handle(ctx context.Context, conn Conn) {
	log := s.log.With(zap.Stringer("remote", conn.RemoteAddr()))
	user, err := s.login(ctx, conn)
	if err != nil {
		log.Info("login aborted", zap.Error(err))
		conn.Close()
		return
	}

	c := newClient(conn, s.hub, user, s.log)
	if !s.hub.Register(c) {
		conn.Close()
		return
	}
	go c.writeLoop()
	c.readLoop()
}

// login reads envelopes until one authenticates. Anything but a login is
// answered with Unauthorized.
func (s *Server) login(ctx context.Context, conn Conn) (string, error) {
	for attempts := 0; attempts < maxLoginAttempts; {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.LoginTimeout)); err != nil {
			return "", err
		}
		frame, err := conn.ReadFrame()
		if err != nil {
			return "", err
		}
		m, err := Decode(frame)
		if err != nil {
			s.log.Debug("discarding frame before login", zap.Error(err))
			continue
		}
		if _, ok := m.(*Heartbeat); ok {
			continue
		}

		attempts++
		login, ok := m.(*UserLogin)
		if !ok {
			if err := s.reply(conn, Response(ResponseUnauthorized, "", "log in first")); err != nil {
				return "", err
			}
			continue
		}
		user, code, err := s.auth.Authenticate(ctx, login)
		if err != nil {
			s.log.Error("authentication failed", zap.String("user", login.Username), zap.Error(err))
			code = ResponseFail
		}
		if err := s.reply(conn, &ServerResponse{ResponseCode: code, User: user}); err != nil {
			return "", err
		}
		if code == ResponseOK {
			return user, nil
		}
	}
	return "", fmt.Errorf("gave up after %d login attempts", maxLoginAttempts)
}

func (s *Server) reply(conn Conn, m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	return conn.WriteFrame(frame)
}
