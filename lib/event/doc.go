// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the read-only event shape consumed by the
// authorization and state-resolution engines, and typed views over the
// content of the state events those engines care about.
//
// [Event] is a capability interface rather than a concrete struct: the
// engines read sender, room, type, state key, raw content, auth/prev
// event lists, timestamp, and the rejection flag, and nothing else.
// Storage layers keep whatever representation suits them and expose it
// through this interface. [PDU] is the concrete implementation used by
// the in-memory store, the SQLite store, tests, and the CLI.
//
// The typed views ([CreateEvent], [MemberEvent], [PowerLevelsEvent],
// [JoinRulesEvent]) parse raw JSON content on demand, field by field.
// An event whose content is malformed for its type is not an input
// error: the authorization rules treat it as a rejection of that one
// event, so the views return errors instead of panicking and leave the
// policy to the caller.
//
// Power-level numbers deserve a warning: room versions before 10
// accept stringified integers ("50") anywhere an integer is expected,
// and real rooms contain them. The strictness toggle lives on
// roomversion.AuthRules and is honored by every numeric accessor here.
package event
