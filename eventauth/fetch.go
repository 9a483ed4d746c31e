// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"context"
	"fmt"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/eventstore"
	"github.com/hearth-im/hearth/lib/ref"
)

// EventFetcher looks up events by ID. Implementations return a
// *eventstore.NotFoundError for unknown IDs; lookups may perform I/O
// and must honor the context.
type EventFetcher interface {
	Event(ctx context.Context, id ref.EventID) (event.Event, error)
}

// StateFetcher looks up state events by (type, state key) in some
// state snapshot. Implementations return a *eventstore.NotFoundError
// for empty slots. The snapshot may be the room's current state, or a
// synthetic view assembled from an event's auth events during state
// resolution.
type StateFetcher interface {
	StateEvent(ctx context.Context, tuple event.StateTuple) (event.Event, error)
}

// EventFetcherFunc adapts a function to the EventFetcher interface.
type EventFetcherFunc func(ctx context.Context, id ref.EventID) (event.Event, error)

func (f EventFetcherFunc) Event(ctx context.Context, id ref.EventID) (event.Event, error) {
	return f(ctx, id)
}

// StateFetcherFunc adapts a function to the StateFetcher interface.
type StateFetcherFunc func(ctx context.Context, tuple event.StateTuple) (event.Event, error)

func (f StateFetcherFunc) StateEvent(ctx context.Context, tuple event.StateTuple) (event.Event, error) {
	return f(ctx, tuple)
}

// fetchCreateEvent returns the room's m.room.create event. A room
// without one is unusable, so absence is a hard error.
func fetchCreateEvent(ctx context.Context, state StateFetcher) (event.CreateEvent, error) {
	ev, err := state.StateEvent(ctx, event.StateTuple{Type: event.TypeCreate})
	if err != nil {
		return event.CreateEvent{}, fmt.Errorf("no m.room.create event in current state: %w", err)
	}
	return event.NewCreateEvent(ev), nil
}

// fetchMembership returns the user's current membership, defaulting
// to leave when the state has no member event for them.
func fetchMembership(ctx context.Context, state StateFetcher, user ref.UserID) (event.Membership, error) {
	ev, err := state.StateEvent(ctx, event.StateTuple{Type: event.TypeMember, StateKey: user.String()})
	if eventstore.IsNotFound(err) {
		return event.MembershipLeave, nil
	}
	if err != nil {
		return "", err
	}
	return event.NewMemberEvent(ev).Membership()
}

// fetchPowerLevels returns the room's current m.room.power_levels
// event, or nil when the room has none (the bootstrap case).
func fetchPowerLevels(ctx context.Context, state StateFetcher) (*event.PowerLevelsEvent, error) {
	ev, err := state.StateEvent(ctx, event.StateTuple{Type: event.TypePowerLevels})
	if eventstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pl := event.NewPowerLevelsEvent(ev)
	return &pl, nil
}

// fetchJoinRule returns the room's current join rule. Membership
// checks that need one treat absence as a rejection of the transition,
// not a mechanical failure.
func fetchJoinRule(ctx context.Context, state StateFetcher) (event.JoinRule, error) {
	ev, err := state.StateEvent(ctx, event.StateTuple{Type: event.TypeJoinRules})
	if eventstore.IsNotFound(err) {
		return "", rejectf("no m.room.join_rules event in current state")
	}
	if err != nil {
		return "", err
	}
	return event.NewJoinRulesEvent(ev).JoinRule()
}

// fetchThirdPartyInvite returns the m.room.third_party_invite event
// whose state key matches the invite token, or nil when absent.
func fetchThirdPartyInvite(ctx context.Context, state StateFetcher, token string) (event.Event, error) {
	ev, err := state.StateEvent(ctx, event.StateTuple{Type: event.TypeThirdPartyInvite, StateKey: token})
	if eventstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}
