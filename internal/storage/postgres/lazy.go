// internal/storage/postgres/lazy.go
package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// LazyPool opens the connection pool on first use and keeps it for the
// life of the process. Concurrent first callers share one in-flight
// connection attempt; a failed attempt caches nothing, so the next
// caller retries fresh.
type LazyPool struct {
	dsn   string
	group singleflight.Group

	mu   sync.RWMutex
	pool *pgxpool.Pool

	// overridable in tests
	dial func(ctx context.Context, dsn string) (*pgxpool.Pool, error)
}

func NewLazyPool(dsn string) *LazyPool {
	return &LazyPool{dsn: dsn, dial: dialPostgres}
}

func dialPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (l *LazyPool) Get(ctx context.Context) (*pgxpool.Pool, error) {
	l.mu.RLock()
	p := l.pool
	l.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	v, err, _ := l.group.Do("pool", func() (any, error) {
		l.mu.RLock()
		p := l.pool
		l.mu.RUnlock()
		if p != nil {
			return p, nil
		}

		// The pool outlives any single request, so initialization is
		// not tied to the caller's context.
		p, err := l.dial(context.Background(), l.dsn)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.pool = p
		l.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return v.(*pgxpool.Pool), nil
}

// Reset drops a pool observed broken so the next Get re-creates it.
func (l *LazyPool) Reset() {
	l.mu.Lock()
	if l.pool != nil {
		l.pool.Close()
		l.pool = nil
	}
	l.mu.Unlock()
}

// Close releases the pool at shutdown.
func (l *LazyPool) Close() {
	l.Reset()
}
