// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package stateres implements the version 2 state resolution
// algorithm: given the state of every fork of a room's history, it
// computes the single state map all servers must agree on, without
// those servers communicating.
//
// Resolution first splits the input into the unconflicted map (slots
// every fork agrees on) and the conflicted set. The conflicted set is
// widened by the auth difference, the auth-chain events not shared by
// all forks, and optionally by the conflicted state subgraph. Power
// events in that set are ordered by reverse topological power ordering
// and replayed through the authorization rules; the rest are ordered
// along the mainline of the winning power-levels event and replayed
// the same way. Unconflicted entries always override whatever the
// replay produced, since they were never in dispute.
//
// Everything is deterministic for a fixed input. Events that fail an
// authorization check during replay are skipped, not reported; only a
// structurally incomplete input (a missing event needed for ordering)
// fails the resolution call, and callers must then leave the room
// state untouched rather than guess.
//
// The algorithm is single-threaded per invocation and keeps all
// intermediate state on the call stack; callers serialize resolution
// per room because the winner is typically written back to a shared
// current-state record.
package stateres
