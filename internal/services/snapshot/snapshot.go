// Package snapshot mirrors spectator views of running tables into Redis for
// dashboards.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	tablesKey = "tables"
	queueSize = 256
	opTimeout = 2 * time.Second
)

func statusKey(id int) string { return fmt.Sprintf("table:%d:status", id) }

// Writer must not block the caller.
type Writer interface {
	Put(id int, v any)
	Remove(id int)
	Close() error
}

type Nop struct{}

func (Nop) Put(int, any) {}
func (Nop) Remove(int)   {}
func (Nop) Close() error { return nil }

type op struct {
	id     int
	data   []byte
	remove bool
}

// RedisWriter stores each table's latest JSON view under table:<id>:status
// and keeps the set of live IDs under "tables".
type RedisWriter struct {
	rdb *redis.Client
	ttl time.Duration
	wg  sync.WaitGroup
	log *zap.Logger

	mu     sync.RWMutex
	queue  chan op
	closed bool
}

func NewRedis(ctx context.Context, addr string, ttl time.Duration, log *zap.Logger) (*RedisWriter, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	w := &RedisWriter{rdb: rdb, ttl: ttl, queue: make(chan op, queueSize), log: log.Named("snapshot")}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *RedisWriter) Put(id int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.log.Error("marshal snapshot", zap.Int("game", id), zap.Error(err))
		return
	}
	w.enqueue(op{id: id, data: data})
}

func (w *RedisWriter) Remove(id int) { w.enqueue(op{id: id, remove: true}) }

// enqueue drops o when the queue is full or the writer is closed.
func (w *RedisWriter) enqueue(o op) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.queue <- o:
	default:
		w.log.Warn("snapshot queue full, dropping", zap.Int("game", o.id))
	}
}

func (w *RedisWriter) run() {
	defer w.wg.Done()
	for o := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		pipe := w.rdb.TxPipeline()
		if o.remove {
			pipe.Del(ctx, statusKey(o.id))
			pipe.SRem(ctx, tablesKey, strconv.Itoa(o.id))
		} else {
			pipe.Set(ctx, statusKey(o.id), o.data, w.ttl)
			pipe.SAdd(ctx, tablesKey, strconv.Itoa(o.id))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			w.log.Warn("snapshot write failed", zap.Int("game", o.id), zap.Error(err))
		}
		cancel()
	}
}

// Ping checks the Redis connection for health reporting.
func (w *RedisWriter) Ping(ctx context.Context) error { return w.rdb.Ping(ctx).Err() }

func (w *RedisWriter) Close() error {
	w.stop()
	w.wg.Wait()
	return w.rdb.Close()
}

func (w *RedisWriter) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
}
