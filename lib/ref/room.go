// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// RoomID is a validated Matrix room ID (e.g., "!abc123:example.com").
//
// Room IDs always start with '!'. Through room version 11 they carry a
// ':server' suffix naming the server that created the room. Under the
// create-hash room ID rule ("org.matrix.hydra.11" onward) the room ID
// is the create event's reference hash with a '!' sigil and has no
// server part. Both forms are accepted; Server reports whether a server
// name is present.
//
// RoomID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type RoomID struct {
	id string
}

// ParseRoomID validates and wraps a raw Matrix room ID string.
// Returns an error if the string is empty, doesn't start with '!',
// or has an empty localpart or server part.
func ParseRoomID(raw string) (RoomID, error) {
	if _, _, err := parseSigilID(raw, '!', "room ID", true); err != nil {
		return RoomID{}, err
	}
	return RoomID{id: raw}, nil
}

// MustParseRoomID is like ParseRoomID but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseRoomID(raw string) RoomID {
	r, err := ParseRoomID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseRoomID(%q): %v", raw, err))
	}
	return r
}

// String returns the full room ID string (e.g., "!abc123:example.com").
func (r RoomID) String() string { return r.id }

// IsZero reports whether the RoomID is the zero value (uninitialized).
func (r RoomID) IsZero() bool { return r.id == "" }

// Server returns the server-name suffix of the room ID and whether one
// is present. Room IDs under the create-hash room ID rule have no
// server part, so ok is false for them.
func (r RoomID) Server() (server string, ok bool) {
	colonIndex := strings.IndexByte(r.id, ':')
	if colonIndex < 0 {
		return "", false
	}
	return r.id[colonIndex+1:], true
}

// AsEventID converts the room ID into the create event ID it derives
// from under the create-hash room ID rule ('!' swapped to '$').
// Returns an error for room IDs that still carry a ':server' suffix,
// since those were not derived from an event ID.
func (r RoomID) AsEventID() (EventID, error) {
	if r.id == "" {
		return EventID{}, fmt.Errorf("cannot derive event ID from zero room ID")
	}
	if strings.IndexByte(r.id, ':') >= 0 {
		return EventID{}, fmt.Errorf("room ID %q has a server part, not derived from a create event", r.id)
	}
	return ParseEventID("$" + r.id[1:])
}

// MarshalText implements encoding.TextMarshaler for JSON and other
// text-based serialization formats.
func (r RoomID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return []byte{}, nil
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// room ID format. An empty input produces the zero value.
func (r *RoomID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = RoomID{}
		return nil
	}
	parsed, err := ParseRoomID(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
