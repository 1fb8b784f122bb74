package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
	CREATE TABLE IF NOT EXISTS players (
		name VARCHAR(64) PRIMARY KEY,
		password_md5 CHAR(32) NOT NULL,
		created_at BIGINT NOT NULL
	)`

// SQLStore keeps players in SQLite or MySQL.
type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

// Open connects with driver "sqlite3" or "mysql" and creates the players
// table if needed.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*SQLStore, error) {
	switch driver {
	case "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// one writer avoids "database is locked"
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create players table: %w", err)
	}
	log.Named("store").Info("player store ready", zap.String("driver", driver))
	return &SQLStore{db: db, log: log.Named("store")}, nil
}

func (s *SQLStore) GetByName(ctx context.Context, name string) (*Player, error) {
	var (
		p       Player
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, password_md5, created_at FROM players WHERE name = ?", normalize(name),
	).Scan(&p.Name, &p.PasswordHashHex, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", name, err)
	}
	p.Created = time.Unix(created, 0)
	return &p, nil
}

func (s *SQLStore) Create(ctx context.Context, name, passwordHashHex string) (bool, error) {
	name = normalize(name)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO players (name, password_md5, created_at) VALUES (?, ?, ?)",
		name, strings.ToLower(passwordHashHex), time.Now().Unix())
	if isDuplicate(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create player %q: %w", name, err)
	}
	s.log.Info("player created", zap.String("player", name))
	return true, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func isDuplicate(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
