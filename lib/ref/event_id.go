// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// EventID is a validated Matrix event ID (e.g., "$abc123xyz").
//
// Event IDs are content-addressed identifiers for PDUs. In room
// version 4 and later they are "$base64hash" (no ":server" suffix). In
// older room versions the format is "$localpart:server". Hearth treats
// event IDs as opaque — the only validation is that they start with '$'
// and contain at least one character after the sigil. The legacy server
// suffix, when present, is exposed through Server for the room version
// 1–2 redaction rule.
//
// EventID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type EventID struct {
	id string
}

// ParseEventID validates and wraps a raw Matrix event ID string.
// Returns an error if the string is empty, doesn't start with '$',
// or has nothing after the '$' prefix.
func ParseEventID(raw string) (EventID, error) {
	if raw == "" {
		return EventID{}, fmt.Errorf("empty event ID")
	}
	if raw[0] != '$' {
		return EventID{}, fmt.Errorf("event ID must start with '$': %q", raw)
	}
	if len(raw) < 2 {
		return EventID{}, fmt.Errorf("event ID has no content after '$': %q", raw)
	}
	return EventID{id: raw}, nil
}

// MustParseEventID is like ParseEventID but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseEventID(raw string) EventID {
	e, err := ParseEventID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseEventID(%q): %v", raw, err))
	}
	return e
}

// String returns the full event ID string (e.g., "$abc123xyz").
func (e EventID) String() string { return e.id }

// IsZero reports whether the EventID is the zero value (uninitialized).
func (e EventID) IsZero() bool { return e.id == "" }

// Server returns the legacy server-name suffix of the event ID and
// whether one is present. Event IDs from room version 4 onward have no
// server part, so ok is false for them.
func (e EventID) Server() (server string, ok bool) {
	colonIndex := strings.IndexByte(e.id, ':')
	if colonIndex < 0 {
		return "", false
	}
	return e.id[colonIndex+1:], true
}

// AsRoomID converts the event ID into the room ID it derives under the
// create-hash room ID rule, where the room ID of a room is the create
// event's ID with the sigil swapped ('$' to '!').
func (e EventID) AsRoomID() (RoomID, error) {
	if e.id == "" {
		return RoomID{}, fmt.Errorf("cannot derive room ID from zero event ID")
	}
	return ParseRoomID("!" + e.id[1:])
}

// MarshalText implements encoding.TextMarshaler for JSON and other
// text-based serialization formats.
func (e EventID) MarshalText() ([]byte, error) {
	if e.id == "" {
		return nil, nil
	}
	return []byte(e.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// event ID format. An empty input produces the zero value.
func (e *EventID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*e = EventID{}
		return nil
	}
	parsed, err := ParseEventID(string(data))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
