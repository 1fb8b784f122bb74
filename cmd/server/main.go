package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"tricktable/internal/api"
	"tricktable/internal/config"
	"tricktable/internal/lobby"
	"tricktable/internal/network"
	"tricktable/internal/services/cluster"
	"tricktable/internal/services/events"
	"tricktable/internal/services/snapshot"
	"tricktable/internal/session"
	"tricktable/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newLogger(format string) (*zap.Logger, error) {
	if format == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	var closers []func() error
	defer func() {
		var result *multierror.Error
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				result = multierror.Append(result, cerr)
			}
		}
		if cerr := result.ErrorOrNil(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	players, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	closers = append(closers, players.Close)

	health := cluster.NewHealthAggregator()
	health.AddCheck("store", func(ctx context.Context) error {
		_, err := players.GetByName(ctx, "healthcheck")
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.NewNATS(cfg.NATSURL, cfg.NATSPrefix, logger)
		if err != nil {
			return err
		}
		health.AddCheck("nats", func(context.Context) error { return p.Connected() })
		publisher = p
	}
	closers = append(closers, publisher.Close)

	var snapshots snapshot.Writer = snapshot.Nop{}
	if cfg.RedisAddr != "" {
		w, err := snapshot.NewRedis(ctx, cfg.RedisAddr, 2*cfg.LobbyTTL, logger)
		if err != nil {
			return err
		}
		health.AddCheck("redis", w.Ping)
		snapshots = w
	}
	closers = append(closers, snapshots.Close)

	handler := session.NewGameHandler(session.Config{
		LobbyTTL:   cfg.LobbyTTL,
		HouseRules: lobby.HouseRules{ScrewTheDealer: cfg.ScrewTheDealer},
	}, logger, session.WithEvents(publisher), session.WithSnapshots(snapshots))
	hub := network.NewHub(handler, network.HubConfig{Tick: cfg.Tick, FramesPerTick: cfg.FramesPerTick}, logger)

	tlsConfig, err := loadTLS(cfg)
	if err != nil {
		return err
	}
	srv := network.NewServer(hub, session.NewAuthenticator(players, logger), network.ServerConfig{
		Framing:  cfg.Framing,
		MaxFrame: cfg.MaxMessage,
		TLS:      tlsConfig,
	}, logger)

	admin := &http.Server{
		Addr: cfg.AdminAddr,
		Handler: api.NewRouter(api.Deps{
			Directory: handler.Directory(),
			Health:    health,
			WebSocket: srv.ServeWS,
			Log:       logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("admin api listening", zap.String("addr", cfg.AdminAddr))
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin api failed", zap.Error(err))
		}
	}()
	closers = append(closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return admin.Shutdown(sctx)
	})

	if cfg.ConsulAddr != "" {
		deregister, err := register(cfg, logger)
		if err != nil {
			logger.Warn("consul registration skipped", zap.Error(err))
		} else {
			closers = append(closers, deregister)
		}
	}

	// The hub must stop before the closers run; it publishes events and
	// snapshots until it returns.
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	err = srv.ListenAndServe(ctx, cfg.ListenAddr)
	stopHub()
	<-hub.Done()
	return err
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.PlayerStore, error) {
	if cfg.DBDriver == "memory" {
		logger.Warn("using in-memory player store; accounts are lost on restart")
		return store.NewMemory(), nil
	}
	return store.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
}

func loadTLS(cfg *config.Config) (*tls.Config, error) {
	if cfg.TLSCert == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}, nil
}

func register(cfg *config.Config, logger *zap.Logger) (func() error, error) {
	port, err := portOf(cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	healthPort, err := portOf(cfg.AdminAddr)
	if err != nil {
		return nil, err
	}
	client, err := cluster.NewConsulClient(cfg.ConsulAddr, logger.Named("cluster"))
	if err != nil {
		return nil, err
	}
	id, err := cluster.Register(client, cluster.Registration{
		Name:       cfg.ServiceName,
		Port:       port,
		HealthPort: healthPort,
		Tags:       []string{cfg.Framing.String()},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("registered with consul", zap.String("service", id))
	return func() error { return cluster.Deregister(client, id) }, nil
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", addr, err)
	}
	return strconv.Atoi(p)
}
