// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Hearth's standard CBOR encoding configuration.
//
// Hearth uses two serialization formats with a clear boundary:
//
//   - JSON for event content: the wire shape of a Matrix event's
//     content is JSON, and the engines read it as such.
//   - CBOR for internal records: the on-disk event records of the
//     SQLite store and any other state Hearth persists for itself.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Hearth package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which is what makes digesting stored records meaningful.
//
// Records are whole values, encoded and decoded in one shot:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR, such as
//     the stored event record.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract — doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
