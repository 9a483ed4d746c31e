// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 keyed hashing for stored event
// records.
//
// The SQLite event store persists each event as an encoded,
// compressed record blob. A digest of the blob is stored next to it
// and verified on every read, so silent corruption of the database
// file surfaces as a hard error instead of a malformed event. Keyed
// hashing with a fixed record-domain key keeps these digests distinct
// from any other BLAKE3 use of the same bytes.
//
// The API surface is three functions:
//
//   - [HashRecord] -- computes the record-domain digest of an encoded
//     record
//   - [FormatDigest] -- converts a [Digest] to its canonical
//     hex-encoded string representation
//   - [ParseDigest] -- parses a hex-encoded digest string back to a
//     [Digest], validating length and encoding
//
// This package has no dependencies on other Hearth packages.
package binhash
