// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

// StateMap maps each (event type, state key) slot to the event ID
// occupying it.
type StateMap map[event.StateTuple]ref.EventID

// AuthSet is the full recursive auth-event closure of a state map's
// values.
type AuthSet map[ref.EventID]struct{}

// ConflictMap collects, per state slot, the event IDs the forks
// disagree over.
type ConflictMap map[event.StateTuple][]ref.EventID

// Clone returns a copy of the state map.
func (m StateMap) Clone() StateMap {
	clone := make(StateMap, len(m))
	for tuple, id := range m {
		clone[tuple] = id
	}
	return clone
}

// Store supplies the event lookups resolution needs. Lookups may
// perform I/O; implementations return *eventstore.NotFoundError for
// unknown IDs. The resolver treats a failed fetch as "this event
// cannot be considered" wherever the algorithm permits, and as a hard
// error where a missing event would make the ordering undefined.
type Store interface {
	// Event returns the event with the given ID.
	Event(ctx context.Context, id ref.EventID) (event.Event, error)

	// Exists reports whether the event is known, without fetching it.
	Exists(ctx context.Context, id ref.EventID) (bool, error)
}
