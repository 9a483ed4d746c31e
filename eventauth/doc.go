// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventauth implements the Matrix event authorization rules.
//
// The rules split into two independently callable phases with
// different data dependencies. [CheckStateIndependent] validates an
// event against its own declared auth-event list, fetching those
// events by ID; it needs no state snapshot and only ever needs to run
// once, when the event is first received. [CheckStateDependent]
// validates the event against a state snapshot, looked up by
// (type, state key); it runs once on receipt and again every time
// state resolution re-evaluates the event against a different
// candidate state. [Check] runs both.
//
// Authorization failure is a normal outcome, not a fault: it is
// reported as a *[RejectError] so that callers such as the state
// resolver can treat "this event is not allowed here" as data and keep
// going. Genuinely broken inputs (a missing auth-chain event, state
// the fetcher cannot produce) surface as ordinary errors.
//
// Room-version differences are never consulted by version number.
// Every behavioral fork reads a named toggle on
// [roomversion.AuthRules], so the checks stay version-agnostic and
// testable against synthetic rule combinations.
package eventauth
