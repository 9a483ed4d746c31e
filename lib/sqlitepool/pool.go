// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// pragmas are applied to every connection before it is handed out.
// WAL keeps readers unblocked by the single writer, NORMAL synchronous
// survives process crashes, the busy timeout rides out write
// contention, and foreign keys stay off since the stores enforce
// referential integrity in their own write paths.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=OFF",
	"PRAGMA mmap_size=268435456",
}

// Config holds the parameters for opening a pool. Only Path is
// required.
type Config struct {
	// Path locates the database file, which is created on first open.
	// The parent directory must already exist. ":memory:" works for
	// tests as long as PoolSize is 1, since each in-memory connection
	// sees its own database.
	Path string

	// PoolSize caps the number of connections. Zero or negative means
	// 4, which is plenty for the event store: SQLite serializes writes
	// anyway, and the extra connections only matter for concurrent
	// reads.
	PoolSize int

	// Logger receives open and close messages. Nil discards them.
	Logger *slog.Logger

	// OnConnect runs once per connection after the pragmas, for schema
	// creation and similar per-connection setup. An error discards the
	// connection and surfaces from Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool hands out SQLite connections with the package pragmas applied.
// The pool is safe for concurrent use; the connections are not. Each
// goroutine takes its own connection and puts it back when done.
type Pool struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open opens the database at cfg.Path and wraps it in a pool.
// Connections are prepared lazily, on first Take. The caller owns the
// pool and must Close it.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range pragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
				}
			}
			if cfg.OnConnect == nil {
				return nil
			}
			if err := cfg.OnConnect(conn); err != nil {
				return fmt.Errorf("sqlitepool: OnConnect: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)
	return &Pool{pool: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is free or ctx is
// cancelled. Pair every successful Take with a deferred Put.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. A nil conn is a no-op.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.pool.Put(conn)
}

// Close waits for all borrowed connections to come back, then closes
// them. Take fails after Close.
func (p *Pool) Close() error {
	if err := p.pool.Close(); err != nil {
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}
