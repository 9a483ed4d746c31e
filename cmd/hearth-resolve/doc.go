// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// hearth-resolve runs state resolution over a scenario file and
// prints the resolved state. It is a debugging surface for the
// resolution and authorization engines: feed it the events and fork
// states of a diverged room, read off the deterministic winner of
// every state slot.
//
// The scenario is a YAML document listing the room version, the
// events, and the fork states (each fork names the event IDs of its
// state). Events land in an in-memory store by default; --db persists
// them to a SQLite store instead, and reuses whatever events are
// already in it.
//
// With --check-event, the named event is additionally run through the
// full authorization checks against the resolved state.
//
// Exit codes:
//
//	0  resolution succeeded (and the checked event, if any, is allowed)
//	1  the checked event is rejected
//	2  error (bad scenario, missing events, storage failure)
package main
