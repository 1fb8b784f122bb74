// Package config reads the server settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"tricktable/internal/network"
)

const (
	defaultListenAddr    = ":7000"
	defaultAdminAddr     = ":8080"
	defaultTick          = 50 * time.Millisecond
	defaultFramesPerTick = 8
	defaultLobbyTTL      = 15 * time.Minute
	defaultDBDriver      = "sqlite3"
	defaultDBDSN         = "players.db"
	defaultServiceName   = "tricktable"
	defaultNATSPrefix    = "tricktable"
)

type Config struct {
	ListenAddr string
	TLSCert    string
	TLSKey     string
	Framing    network.Framing
	MaxMessage int

	Tick           time.Duration
	FramesPerTick  int
	LobbyTTL       time.Duration
	ScrewTheDealer bool

	AdminAddr string

	DBDriver string
	DBDSN    string

	// Optional integrations; empty disables them.
	RedisAddr  string
	NATSURL    string
	NATSPrefix string
	ConsulAddr string

	ServiceName string
	LogFormat   string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) { return load(os.Getenv) }

func load(getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}
	cfg := &Config{
		ListenAddr:     env.str("TABLE_LISTEN_ADDR", defaultListenAddr),
		TLSCert:        env.str("TABLE_TLS_CERT", ""),
		TLSKey:         env.str("TABLE_TLS_KEY", ""),
		MaxMessage:     env.integer("TABLE_MAX_MESSAGE", network.DefaultMaxFrame),
		Tick:           env.duration("TABLE_TICK", defaultTick),
		FramesPerTick:  env.integer("TABLE_FRAMES_PER_TICK", defaultFramesPerTick),
		LobbyTTL:       env.duration("TABLE_LOBBY_TTL", defaultLobbyTTL),
		ScrewTheDealer: env.boolean("TABLE_SCREW_THE_DEALER", true),
		AdminAddr:      env.str("ADMIN_ADDR", defaultAdminAddr),
		DBDriver:       env.str("DB_DRIVER", defaultDBDriver),
		DBDSN:          env.str("DB_DSN", defaultDBDSN),
		RedisAddr:      env.str("REDIS_ADDR", ""),
		NATSURL:        env.str("NATS_URL", ""),
		NATSPrefix:     env.str("NATS_SUBJECT_PREFIX", defaultNATSPrefix),
		ConsulAddr:     env.str("CONSUL_HTTP_ADDR", ""),
		ServiceName:    env.str("SERVICE_NAME", defaultServiceName),
		LogFormat:      env.str("LOG_FORMAT", "json"),
	}
	framing, err := network.ParseFraming(env.str("TABLE_FRAMING", "json"))
	if err != nil {
		env.fail("TABLE_FRAMING", err)
	}
	cfg.Framing = framing

	if env.err != nil {
		return nil, env.err
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("TABLE_TLS_CERT and TABLE_TLS_KEY must be set together")
	}
	if cfg.MaxMessage <= 0 || cfg.FramesPerTick <= 0 || cfg.Tick <= 0 || cfg.LobbyTTL <= 0 {
		return nil, fmt.Errorf("sizes and intervals must be positive")
	}
	return cfg, nil
}

// envReader keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (e *envReader) str(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}
