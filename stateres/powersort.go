// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"
	"fmt"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// powerSort selects the power events in the full conflicted set,
// enlarges the selection with their in-set auth chains, and sorts the
// result using reverse topological power ordering, earliest first.
func powerSort(ctx context.Context, rules roomversion.Rules, fullConflicted map[ref.EventID]struct{}, store Store) ([]ref.EventID, error) {
	graph := make(map[ref.EventID]map[ref.EventID]struct{})
	for id := range fullConflicted {
		if !isPowerEventID(ctx, id, store) {
			continue
		}
		if err := addEventAuthChain(ctx, graph, fullConflicted, id, store); err != nil {
			return nil, err
		}
	}

	// Each event's tie-break criteria come from its own auth lineage,
	// deliberately not from the canonical room state: two forks must
	// rank an event identically without agreeing on anything else.
	criteria := make(map[ref.EventID]SortCriteria, len(graph))
	for id := range graph {
		power, err := powerLevelForSender(ctx, id, rules, store)
		if err != nil {
			return nil, fmt.Errorf("power level for sender of %s: %w", id, err)
		}
		var ts int64
		if ev, err := store.Event(ctx, id); err == nil {
			ts = ev.OriginServerTS()
		}
		criteria[id] = SortCriteria{SenderPower: power, OriginServerTS: ts}
	}

	return TopologicalSort(graph, func(id ref.EventID) (SortCriteria, error) {
		c, ok := criteria[id]
		if !ok {
			return SortCriteria{}, fmt.Errorf("no sort criteria for event %s", id)
		}
		return c, nil
	})
}

// isPowerEventID reports whether the event is a power event. Events
// that cannot be fetched are not power events.
func isPowerEventID(ctx context.Context, id ref.EventID, store Store) bool {
	ev, err := store.Event(ctx, id)
	if err != nil {
		return false
	}
	return event.IsPowerEvent(ev)
}

// addEventAuthChain adds the event and every event of its auth chain
// that belongs to the full conflicted set to the graph, with edges
// from each event to its in-set auth events.
func addEventAuthChain(ctx context.Context, graph map[ref.EventID]map[ref.EventID]struct{}, fullConflicted map[ref.EventID]struct{}, root ref.EventID, store Store) error {
	stack := []ref.EventID{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if graph[id] == nil {
			graph[id] = make(map[ref.EventID]struct{})
		}

		ev, err := store.Event(ctx, id)
		if err != nil {
			continue
		}
		for _, authID := range ev.AuthEvents() {
			if _, ok := fullConflicted[authID]; !ok {
				continue
			}
			if _, known := graph[authID]; !known {
				stack = append(stack, authID)
			}
			graph[id][authID] = struct{}{}
		}
	}
	return nil
}

// powerLevelForSender computes the power level of the event's sender
// as of the event's own auth-event lineage: the nearest power-levels
// and create events reachable through its direct auth events, not the
// canonical room state. Only the topological sort may use this.
func powerLevelForSender(ctx context.Context, id ref.EventID, rules roomversion.Rules, store Store) (event.UserPower, error) {
	auth := rules.Authorization

	ev, evErr := store.Event(ctx, id)

	var createEvent *event.CreateEvent
	var powerLevels *event.PowerLevelsEvent

	if evErr == nil && auth.RoomCreateEventIDAsRoomID {
		createID, err := ev.RoomID().AsEventID()
		if err != nil {
			return event.UserPower{}, err
		}
		createPDU, err := store.Event(ctx, createID)
		if err != nil {
			return event.UserPower{}, err
		}
		ce := event.NewCreateEvent(createPDU)
		createEvent = &ce
	}

	if evErr == nil {
		for _, authID := range ev.AuthEvents() {
			authEvent, err := store.Event(ctx, authID)
			if err != nil {
				continue
			}
			stateKey, hasStateKey := authEvent.StateKey()
			if !hasStateKey || stateKey != "" {
				continue
			}
			switch {
			case authEvent.Type() == event.TypePowerLevels:
				pl := event.NewPowerLevelsEvent(authEvent)
				powerLevels = &pl
			case !auth.RoomCreateEventIDAsRoomID && authEvent.Type() == event.TypeCreate:
				ce := event.NewCreateEvent(authEvent)
				createEvent = &ce
			}
			if powerLevels != nil && createEvent != nil {
				break
			}
		}
	}

	var creators []ref.UserID
	if createEvent != nil {
		if c, err := createEvent.Creators(auth); err == nil {
			creators = c
		}
	}

	if evErr == nil && creators != nil {
		return event.UserPowerLevel(powerLevels, ev.Sender(), creators, auth)
	}
	level, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldUsersDefault, auth)
	if err != nil {
		return event.UserPower{}, err
	}
	return event.Power(level), nil
}
