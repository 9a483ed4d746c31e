// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifier
// values: user IDs, room IDs, event IDs, and server names.
//
// Identifiers arrive at the federation boundary as raw strings inside
// signed events. They are validated once, at parse time, and passed
// through the authorization and state-resolution engines as opaque
// typed values. All constructors validate their inputs and return
// errors for invalid identifiers; once constructed, a ref is immutable.
//
// Validation here is structural only (sigil, localpart/server split).
// Room version 4 and later event IDs ("$base64hash") have no server
// part; room version "org.matrix.hydra.11" and later room IDs
// ("!base64hash") likewise. The accessors that extract a server name
// report whether one is present rather than guessing.
//
// JSON marshaling uses the canonical Matrix string form via
// encoding.TextMarshaler.
package ref
