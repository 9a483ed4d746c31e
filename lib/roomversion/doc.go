// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomversion defines the immutable per-room-version rule
// bundles consumed by the authorization and state-resolution engines.
//
// Matrix room versions change behavior in many small ways: whether
// power levels must be true JSON integers or may be stringified,
// whether m.room.aliases events get special-cased, whether the room
// creator is implicitly all-powerful, whether the room ID is derived
// from the create event's hash. Rather than scattering version checks
// through the algorithms, every fork is a named boolean on [Rules],
// looked up once from the room's create event and passed by value into
// every call. The algorithms themselves are version-agnostic and can be
// tested against synthetic rule combinations that no shipped room
// version uses.
//
// [Get] returns the rules for a known room version identifier. The
// registry covers Matrix room versions "1" through "11" and the
// "org.matrix.hydra.11" proposal.
package roomversion
