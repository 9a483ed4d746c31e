// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"

	"github.com/hearth-im/hearth/lib/ref"
)

// State event types with authorization rules of their own.
const (
	TypeCreate           = "m.room.create"
	TypeMember           = "m.room.member"
	TypePowerLevels      = "m.room.power_levels"
	TypeJoinRules        = "m.room.join_rules"
	TypeAliases          = "m.room.aliases"
	TypeThirdPartyInvite = "m.room.third_party_invite"
	TypeRedaction        = "m.room.redaction"
)

// Membership is the value of an m.room.member event's membership field.
type Membership string

// The five membership states.
const (
	MembershipJoin   Membership = "join"
	MembershipInvite Membership = "invite"
	MembershipKnock  Membership = "knock"
	MembershipLeave  Membership = "leave"
	MembershipBan    Membership = "ban"
)

// JoinRule is the value of an m.room.join_rules event's join_rule field.
type JoinRule string

// The join rules, in the order they were introduced.
const (
	JoinRulePublic          JoinRule = "public"
	JoinRuleInvite          JoinRule = "invite"
	JoinRulePrivate         JoinRule = "private"
	JoinRuleKnock           JoinRule = "knock"
	JoinRuleRestricted      JoinRule = "restricted"
	JoinRuleKnockRestricted JoinRule = "knock_restricted"
)

// Event is the read-only view over a PDU that the engines consume.
// Implementations must be immutable: every accessor returns the same
// value for the lifetime of the event, and callers never mutate the
// returned slices.
type Event interface {
	// ID is the content-addressed event identifier.
	ID() ref.EventID

	// RoomID is the room the event belongs to.
	RoomID() ref.RoomID

	// Sender is the user who sent the event.
	Sender() ref.UserID

	// Type is the event type, e.g. "m.room.member".
	Type() string

	// StateKey returns the state key and whether the event is a
	// state event at all. Note the empty state key ("") is distinct
	// from no state key.
	StateKey() (string, bool)

	// Content is the raw JSON content of the event.
	Content() []byte

	// AuthEvents lists the event IDs the sender cited as
	// authorization for this event.
	AuthEvents() []ref.EventID

	// PrevEvents lists the event IDs this event builds on in the
	// room DAG.
	PrevEvents() []ref.EventID

	// OriginServerTS is the origin server's timestamp in
	// milliseconds since the Unix epoch.
	OriginServerTS() int64

	// Redacts is the event ID named by an m.room.redaction event,
	// if any.
	Redacts() (ref.EventID, bool)

	// Rejected reports whether this event failed the authorization
	// checks when it was received. Rejected events are stored for
	// audit but carry no authority.
	Rejected() bool
}

// StateTuple is the (event type, state key) pair addressing one slot
// of room state.
type StateTuple struct {
	Type     string
	StateKey string
}

// Tuple returns the state tuple of a state event, or ok=false for
// events without a state key.
func Tuple(ev Event) (StateTuple, bool) {
	stateKey, ok := ev.StateKey()
	if !ok {
		return StateTuple{}, false
	}
	return StateTuple{Type: ev.Type(), StateKey: stateKey}, true
}

// String renders the tuple for log and error messages.
func (t StateTuple) String() string {
	return fmt.Sprintf("(%s, %q)", t.Type, t.StateKey)
}

// IsPowerEvent reports whether the event is a power event: a create,
// power-levels, or join-rules event with an empty state key, or a
// member event expressing a leave or ban of someone other than the
// sender. Power events are the ones that can strip abilities from
// other users, which is why the power sort orders them first.
func IsPowerEvent(ev Event) bool {
	switch ev.Type() {
	case TypeCreate, TypePowerLevels, TypeJoinRules:
		stateKey, ok := ev.StateKey()
		return ok && stateKey == ""
	case TypeMember:
		membership, err := NewMemberEvent(ev).Membership()
		if err != nil || (membership != MembershipLeave && membership != MembershipBan) {
			return false
		}
		stateKey, ok := ev.StateKey()
		return ok && stateKey != ev.Sender().String()
	default:
		return false
	}
}
