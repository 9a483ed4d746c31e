// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"context"
	"fmt"
	"slices"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// Check runs both authorization phases: the state-independent rules
// against the event's own auth-event list, then the state-dependent
// rules against the supplied state snapshot. A *RejectError means the
// event is forbidden; any other error means the check could not be
// completed.
func Check(ctx context.Context, rules roomversion.Rules, ev event.Event, events EventFetcher, state StateFetcher) error {
	if err := CheckStateIndependent(ctx, rules, ev, events); err != nil {
		return err
	}
	return CheckStateDependent(ctx, rules, ev, state)
}

// CheckStateIndependent validates an event's own auth-event list: the
// rules that need no state snapshot, only the cited events themselves.
// For m.room.create events it validates the create-specific structure
// instead, since they cite no auth events at all.
func CheckStateIndependent(ctx context.Context, rules roomversion.Rules, ev event.Event, events EventFetcher) error {
	if ev.Type() == event.TypeCreate {
		return checkRoomCreate(event.NewCreateEvent(ev), rules.Authorization)
	}

	expected, err := AuthTypes(ev, rules.Authorization, false)
	if err != nil {
		return err
	}

	seen := make([]event.StateTuple, 0, len(expected))
	for _, id := range ev.AuthEvents() {
		authEvent, err := events.Event(ctx, id)
		if err != nil {
			return fmt.Errorf("auth event %s: %w", id, err)
		}
		if authEvent.RoomID() != ev.RoomID() {
			return rejectf("auth event %s not in the same room", id)
		}
		stateKey, ok := authEvent.StateKey()
		if !ok {
			return rejectf("auth event %s has no state_key", id)
		}
		tuple := event.StateTuple{Type: authEvent.Type(), StateKey: stateKey}
		if slices.Contains(seen, tuple) {
			return rejectf("duplicate auth event %s for %s", id, tuple)
		}
		if !slices.Contains(expected, tuple) {
			return rejectf("unexpected auth event %s with %s", id, tuple)
		}
		if authEvent.Rejected() {
			return rejectf("rejected auth event %s", id)
		}
		seen = append(seen, tuple)
	}

	if !rules.Authorization.RoomCreateEventIDAsRoomID {
		hasCreate := slices.ContainsFunc(seen, func(t event.StateTuple) bool {
			return t.Type == event.TypeCreate
		})
		if !hasCreate {
			return rejectf("no m.room.create event in auth events")
		}
		return nil
	}

	// Under the create-event-ID-as-room-ID rule the create event is
	// implied: the room ID must hash-reference an accepted create
	// event rather than citing one explicitly.
	createID, err := ev.RoomID().AsEventID()
	if err != nil {
		return rejectf("could not derive m.room.create event ID from room ID: %v", err)
	}
	createEvent, err := events.Event(ctx, createID)
	if err != nil {
		return fmt.Errorf("m.room.create event %s: %w", createID, err)
	}
	if createEvent.Rejected() {
		return rejectf("rejected m.room.create event %s", createID)
	}
	return nil
}

// CheckStateDependent validates an event against a state snapshot:
// every rule that depends on the room's current state rather than on
// the event's own auth-event list. Rules apply in order; the first
// applicable rule terminates the check.
func CheckStateDependent(ctx context.Context, rules roomversion.Rules, ev event.Event, state StateFetcher) error {
	// No state-dependent rules apply to create events.
	if ev.Type() == event.TypeCreate {
		return nil
	}

	auth := rules.Authorization
	sender := ev.Sender()

	createEvent, err := fetchCreateEvent(ctx, state)
	if err != nil {
		return err
	}

	federate, err := createEvent.Federate()
	if err != nil {
		return err
	}
	if !federate && createEvent.Sender().Server() != sender.Server() {
		return rejectf("room is not federated and sender's server %s does not match the create event's", sender.Server())
	}

	if auth.SpecialCaseAliases && ev.Type() == event.TypeAliases {
		stateKey, ok := ev.StateKey()
		if !ok || stateKey != sender.Server() {
			return rejectf("state_key of m.room.aliases event does not match the sender's server name")
		}
		return nil
	}

	if ev.Type() == event.TypeMember {
		return checkRoomMember(ctx, event.NewMemberEvent(ev), auth, createEvent, state)
	}

	senderMembership, err := fetchMembership(ctx, state, sender)
	if err != nil {
		return err
	}
	if senderMembership != event.MembershipJoin {
		return rejectf("sender's membership %q is not join", senderMembership)
	}

	creators, err := createEvent.Creators(auth)
	if err != nil {
		return err
	}
	powerLevels, err := fetchPowerLevels(ctx, state)
	if err != nil {
		return err
	}
	senderPower, err := event.UserPowerLevel(powerLevels, sender, creators, auth)
	if err != nil {
		return err
	}

	if ev.Type() == event.TypeThirdPartyInvite {
		inviteLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldInvite, auth)
		if err != nil {
			return err
		}
		if !senderPower.AtLeast(inviteLevel) {
			return rejectf("sender power %s is below the invite level %d", senderPower, inviteLevel)
		}
		return nil
	}

	stateKey, hasStateKey := ev.StateKey()
	requiredLevel, err := event.EventPowerLevel(powerLevels, ev.Type(), hasStateKey, auth)
	if err != nil {
		return err
	}
	if !senderPower.AtLeast(requiredLevel) {
		return rejectf("sender power %s is below the level %d required for %s events", senderPower, requiredLevel, ev.Type())
	}

	if hasStateKey && len(stateKey) > 0 && stateKey[0] == '@' && stateKey != sender.String() {
		return rejectf("state_key %q belongs to another user's namespace", stateKey)
	}

	if ev.Type() == event.TypePowerLevels {
		return checkRoomPowerLevels(event.NewPowerLevelsEvent(ev), powerLevels, auth, senderPower, creators)
	}

	if auth.SpecialCaseRedaction && ev.Type() == event.TypeRedaction {
		return checkRoomRedaction(ev, powerLevels, auth, senderPower)
	}

	return nil
}

// checkRoomCreate validates the structure of an m.room.create event.
func checkRoomCreate(createEvent event.CreateEvent, rules roomversion.AuthRules) error {
	if len(createEvent.PrevEvents()) > 0 {
		return rejectf("m.room.create event cannot have previous events")
	}

	if rules.RoomCreateEventIDAsRoomID {
		derivedID, err := createEvent.RoomID().AsEventID()
		if err != nil {
			return rejectf("could not derive event ID from m.room.create room ID: %v", err)
		}
		if derivedID != createEvent.ID() {
			return rejectf("m.room.create room ID %s does not reference its own event ID", createEvent.RoomID())
		}
	} else {
		server, ok := createEvent.RoomID().Server()
		if !ok {
			return rejectf("room ID of m.room.create event has no server name")
		}
		if server != createEvent.Sender().Server() {
			return rejectf("server name of room ID does not match the create event's sender")
		}
	}

	// A room_version field naming an unrecognized version is rejected
	// upstream: the caller could not have produced Rules for it.

	if !rules.UseRoomCreateSender {
		hasCreator, err := createEvent.HasCreator()
		if err != nil {
			return err
		}
		if !hasCreator {
			return rejectf("missing creator field in m.room.create event")
		}
	}

	return nil
}
