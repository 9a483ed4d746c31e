// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/klauspost/compress/zstd"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hearth-im/hearth/lib/binhash"
	"github.com/hearth-im/hearth/lib/codec"
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/sqlitepool"
)

// schema is applied to every connection. CREATE IF NOT EXISTS keeps
// it idempotent across the pool.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    event_id TEXT PRIMARY KEY,
    room_id  TEXT NOT NULL,
    record   BLOB NOT NULL,
    digest   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_by_room ON events (room_id);
`

// zstdEncoder and zstdDecoder are reused across calls. Both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("eventstore: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("eventstore: zstd decoder initialization failed: " + err.Error())
	}
}

// storedEvent is the on-disk record format: CBOR-encoded,
// zstd-compressed, digested with BLAKE3. The digest column covers the
// compressed blob exactly as stored.
type storedEvent struct {
	EventID    ref.EventID   `cbor:"event_id"`
	RoomID     ref.RoomID    `cbor:"room_id"`
	Sender     ref.UserID    `cbor:"sender"`
	Type       string        `cbor:"type"`
	StateKey   *string       `cbor:"state_key,omitempty"`
	Content    []byte        `cbor:"content"`
	AuthEvents []ref.EventID `cbor:"auth_events,omitempty"`
	PrevEvents []ref.EventID `cbor:"prev_events,omitempty"`
	Timestamp  int64         `cbor:"origin_server_ts"`
	Redacts    ref.EventID   `cbor:"redacts,omitempty"`
	Rejected   bool          `cbor:"rejected,omitempty"`
}

// SQLiteConfig holds the parameters for opening a SQLite event store.
type SQLiteConfig struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. Required.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to
	// 4 if zero or negative.
	PoolSize int

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// SQLiteStore is a durable event store. It satisfies the lookup
// interfaces of the resolution and authorization engines and adds the
// write path. Safe for concurrent use.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// OpenSQLite opens (creating if necessary) a SQLite event store at
// the configured path. The caller must call Close when done.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}

	return &SQLiteStore{pool: pool, logger: logger}, nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

// Insert stores the given events in a single transaction, replacing
// any previous events with the same IDs.
func (s *SQLiteStore) Insert(ctx context.Context, events ...event.Event) (err error) {
	if len(events) == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("event store: insert: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("event store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, ev := range events {
		record, err := encodeRecord(ev)
		if err != nil {
			return fmt.Errorf("event store: encoding %s: %w", ev.ID(), err)
		}
		digest := binhash.HashRecord(record)

		err = sqlitex.Execute(conn,
			"INSERT OR REPLACE INTO events (event_id, room_id, record, digest) VALUES (?, ?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{
					ev.ID().String(),
					ev.RoomID().String(),
					record,
					binhash.FormatDigest(digest),
				},
			})
		if err != nil {
			return fmt.Errorf("event store: inserting %s: %w", ev.ID(), err)
		}
	}
	return nil
}

// Event returns the stored event, or a [NotFoundError]. A record
// whose digest no longer matches is a hard error.
func (s *SQLiteStore) Event(ctx context.Context, id ref.EventID) (event.Event, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	defer s.pool.Put(conn)

	var record []byte
	var storedDigest string
	found := false
	err = sqlitex.Execute(conn,
		"SELECT record, digest FROM events WHERE event_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				record = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, record)
				storedDigest = stmt.ColumnText(1)
				found = true
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("event store: reading %s: %w", id, err)
	}
	if !found {
		return nil, &NotFoundError{Ref: id.String()}
	}

	return decodeRecord(id, record, storedDigest)
}

// Exists reports whether an event with the given ID is stored.
func (s *SQLiteStore) Exists(ctx context.Context, id ref.EventID) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("event store: %w", err)
	}
	defer s.pool.Put(conn)

	found := false
	err = sqlitex.Execute(conn,
		"SELECT 1 FROM events WHERE event_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id.String()},
			ResultFunc: func(*sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("event store: checking %s: %w", id, err)
	}
	return found, nil
}

// RoomEvents returns every stored event of a room, ordered by event
// ID for stable output.
func (s *SQLiteStore) RoomEvents(ctx context.Context, roomID ref.RoomID) ([]event.Event, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	defer s.pool.Put(conn)

	var events []event.Event
	err = sqlitex.Execute(conn,
		"SELECT event_id, record, digest FROM events WHERE room_id = ? ORDER BY event_id",
		&sqlitex.ExecOptions{
			Args: []any{roomID.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id, err := ref.ParseEventID(stmt.ColumnText(0))
				if err != nil {
					return fmt.Errorf("stored event ID: %w", err)
				}
				record := make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, record)
				ev, err := decodeRecord(id, record, stmt.ColumnText(2))
				if err != nil {
					return err
				}
				events = append(events, ev)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("event store: listing room %s: %w", roomID, err)
	}
	return events, nil
}

func encodeRecord(ev event.Event) ([]byte, error) {
	stored := storedEvent{
		EventID:    ev.ID(),
		RoomID:     ev.RoomID(),
		Sender:     ev.Sender(),
		Type:       ev.Type(),
		Content:    ev.Content(),
		AuthEvents: ev.AuthEvents(),
		PrevEvents: ev.PrevEvents(),
		Timestamp:  ev.OriginServerTS(),
		Rejected:   ev.Rejected(),
	}
	if stateKey, ok := ev.StateKey(); ok {
		stored.StateKey = &stateKey
	}
	if redacts, ok := ev.Redacts(); ok {
		stored.Redacts = redacts
	}

	encoded, err := codec.Marshal(stored)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(encoded, nil), nil
}

func decodeRecord(id ref.EventID, record []byte, storedDigest string) (event.Event, error) {
	wantDigest, err := binhash.ParseDigest(storedDigest)
	if err != nil {
		return nil, fmt.Errorf("event store: record %s: %w", id, err)
	}
	if binhash.HashRecord(record) != wantDigest {
		return nil, fmt.Errorf("event store: record %s failed digest verification", id)
	}

	encoded, err := zstdDecoder.DecodeAll(record, nil)
	if err != nil {
		return nil, fmt.Errorf("event store: decompressing %s: %w", id, err)
	}

	var stored storedEvent
	if err := codec.Unmarshal(encoded, &stored); err != nil {
		return nil, fmt.Errorf("event store: decoding %s: %w", id, err)
	}

	return &event.PDU{
		EventID:      stored.EventID,
		Room:         stored.RoomID,
		SenderID:     stored.Sender,
		EventType:    stored.Type,
		State:        stored.StateKey,
		RawContent:   stored.Content,
		AuthEventIDs: stored.AuthEvents,
		PrevEventIDs: stored.PrevEvents,
		Timestamp:    stored.Timestamp,
		RedactsID:    stored.Redacts,
		RejectedFlag: stored.Rejected,
	}, nil
}
