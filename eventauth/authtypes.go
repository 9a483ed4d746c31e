// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// AuthTypes returns the (type, state key) tuples an event of this
// shape must cite as auth events. For everything but m.room.create
// that is the create event, the current power levels, and the sender's
// membership; member events additionally cite the target's membership
// and, depending on content, the join rules, a third-party-invite
// event, or the membership of the user who authorized a restricted
// join.
//
// Under the create-event-ID-as-room-ID rule the create event is
// implied by the room ID and dropped from the expected list;
// alwaysCreate forces it back in for callers resolving against a state
// map, where the create event occupies a slot like any other.
//
// Returns an error when the content is too malformed to classify
// (a member event without a parseable membership, for example).
func AuthTypes(ev event.Event, rules roomversion.AuthRules, alwaysCreate bool) ([]event.StateTuple, error) {
	if ev.Type() == event.TypeCreate {
		return nil, nil
	}

	tuples := make([]event.StateTuple, 0, 5)
	if !rules.RoomCreateEventIDAsRoomID || alwaysCreate {
		tuples = append(tuples, event.StateTuple{Type: event.TypeCreate})
	}
	tuples = append(tuples,
		event.StateTuple{Type: event.TypePowerLevels},
		event.StateTuple{Type: event.TypeMember, StateKey: ev.Sender().String()},
	)

	if ev.Type() != event.TypeMember {
		return tuples, nil
	}
	return memberAuthTypes(tuples, ev, rules)
}

func memberAuthTypes(tuples []event.StateTuple, ev event.Event, rules roomversion.AuthRules) ([]event.StateTuple, error) {
	stateKey, ok := ev.StateKey()
	if !ok {
		return nil, rejectf("missing state_key field for m.room.member event")
	}
	tuples = appendTuple(tuples, event.StateTuple{Type: event.TypeMember, StateKey: stateKey})

	member := event.NewMemberEvent(ev)
	membership, err := member.Membership()
	if err != nil {
		return nil, err
	}

	switch membership {
	case event.MembershipJoin, event.MembershipInvite, event.MembershipKnock:
		tuples = appendTuple(tuples, event.StateTuple{Type: event.TypeJoinRules})
	}

	if membership == event.MembershipInvite {
		tpi, err := member.ThirdPartyInvite()
		if err != nil {
			return nil, err
		}
		if tpi != nil {
			token, err := tpi.Token()
			if err != nil {
				return nil, err
			}
			tuples = appendTuple(tuples, event.StateTuple{Type: event.TypeThirdPartyInvite, StateKey: token})
		}
	}

	if membership == event.MembershipJoin && rules.RestrictedJoinRule {
		authorisedVia, err := member.JoinAuthorisedViaUsersServer()
		if err != nil {
			return nil, err
		}
		if !authorisedVia.IsZero() {
			tuples = appendTuple(tuples, event.StateTuple{Type: event.TypeMember, StateKey: authorisedVia.String()})
		}
	}

	return tuples, nil
}

// appendTuple appends t unless it is already present. The expected
// auth-type lists are tiny, so a linear scan beats a map.
func appendTuple(tuples []event.StateTuple, t event.StateTuple) []event.StateTuple {
	for _, existing := range tuples {
		if existing == t {
			return tuples
		}
	}
	return append(tuples, t)
}
