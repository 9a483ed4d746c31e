// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstore stores room events for the resolution and
// authorization engines.
//
// Two implementations share the same lookup surface: [MemoryStore]
// for tests and scenario runs, and [SQLiteStore] for durable storage.
// The SQLite store persists each event as a CBOR record compressed
// with zstd; a keyed BLAKE3 digest stored next to the record is
// verified on every read.
//
// Lookups return a [NotFoundError] for unknown event IDs. Callers in
// the engines classify it with [IsNotFound] because a missing event
// often has defined semantics (an absent membership means "leave")
// while any other storage failure is a hard error.
package eventstore
