// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearth-im/hearth/eventauth"
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/eventstore"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// iterativeAuthCheck replays the sorted events against an evolving
// state map. Each event is checked against a state view synthesized
// from its own auth events, topped up from the accumulated state map;
// events that pass are folded into the map, events that fail are
// skipped without failing the resolution. Only a missing event from
// the sorted list itself is a hard error.
func iterativeAuthCheck(ctx context.Context, rules roomversion.Rules, sorted []ref.EventID, state StateMap, store Store, logger *slog.Logger) (StateMap, error) {
	resolved := state.Clone()

	for _, id := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := store.Event(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch sorted event %s: %w", id, err)
		}
		tuple, ok := event.Tuple(ev)
		if !ok {
			return nil, fmt.Errorf("sorted event %s is not a state event", id)
		}

		authTypes, err := eventauth.AuthTypes(ev, rules.Authorization, true)
		if err != nil {
			logger.Debug("skipping event with unusable auth types",
				"event_id", id, "error", err)
			continue
		}

		authState, err := synthesizeAuthState(ctx, rules, ev, authTypes, resolved, store)
		if err != nil {
			return nil, err
		}

		fetcher := eventauth.StateFetcherFunc(func(ctx context.Context, tuple event.StateTuple) (event.Event, error) {
			if authEvent, ok := authState[tuple]; ok {
				return authEvent, nil
			}
			return nil, &eventstore.NotFoundError{Ref: tuple.String()}
		})

		if err := eventauth.CheckStateDependent(ctx, rules, ev, fetcher); err != nil {
			logger.Debug("event failed iterative auth check",
				"event_id", id, "error", err)
			continue
		}
		resolved[tuple] = id
	}
	return resolved, nil
}

// synthesizeAuthState builds the state view an event is checked
// against: the event's own cited auth events first, then entries from
// the accumulated state map for any auth-type tuple its own list does
// not cover. Missing and rejected events drop out silently.
func synthesizeAuthState(ctx context.Context, rules roomversion.Rules, ev event.Event, authTypes []event.StateTuple, resolved StateMap, store Store) (map[event.StateTuple]event.Event, error) {
	authState := make(map[event.StateTuple]event.Event, len(authTypes))

	citedIDs := ev.AuthEvents()
	if rules.Authorization.RoomCreateEventIDAsRoomID && ev.Type() != event.TypeCreate {
		createID, err := ev.RoomID().AsEventID()
		if err != nil {
			return nil, fmt.Errorf("derive create event ID for %s: %w", ev.ID(), err)
		}
		citedIDs = append([]ref.EventID{createID}, citedIDs...)
	}
	for _, authID := range citedIDs {
		authEvent, err := store.Event(ctx, authID)
		if err != nil || authEvent.Rejected() {
			continue
		}
		if tuple, ok := event.Tuple(authEvent); ok {
			authState[tuple] = authEvent
		}
	}

	for _, tuple := range authTypes {
		if _, ok := authState[tuple]; ok {
			continue
		}
		stateID, ok := resolved[tuple]
		if !ok {
			continue
		}
		stateEvent, err := store.Event(ctx, stateID)
		if err != nil || stateEvent.Rejected() {
			continue
		}
		authState[tuple] = stateEvent
	}
	return authState, nil
}
