// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool pools SQLite connections for Hearth's stores.
//
// It is a thin wrapper over zombiezen.com/go/sqlite's sqlitex.Pool:
// one dependency, one set of pragmas, one Take/Put pattern, and no
// abstraction layer on top of SQL. Stores write their own SQL with
// sqlitex.Execute and manage transactions with
// sqlitex.ImmediateTransaction.
//
// Every connection is prepared with WAL journaling (readers never
// block the writer), synchronous=NORMAL (transactions survive process
// crashes; an OS crash may lose the tail, which is acceptable when the
// room DAG received over federation remains the source of truth), a
// five second busy timeout, foreign keys off (the stores enforce
// referential integrity in their write paths), and 256 MB of
// memory-mapped I/O for reads.
//
// Connections are not safe for concurrent use. Each goroutine calls
// [Pool.Take], does its work on the returned connection, and calls
// [Pool.Put]:
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/hearth/events/events.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
package sqlitepool
