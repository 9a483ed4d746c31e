// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package roomversion

// Rules is the full rule bundle for a single room version. Treated as
// a read-only value: constructed by [Get] (or literally, in tests) and
// passed by value into every authorization and resolution call.
type Rules struct {
	// Version is the room version identifier this bundle was built
	// for, e.g. "10" or "org.matrix.hydra.11". Informational only;
	// the engines never branch on it.
	Version string

	// StateResV2 reports that the room uses the second state
	// resolution algorithm. False only for room version 1; the
	// resolver refuses rooms without it.
	StateResV2 bool

	// Authorization holds the toggles consulted by the auth check
	// engine.
	Authorization AuthRules

	// StateRes holds the toggles consulted by the resolution
	// orchestrator.
	StateRes StateResRules
}

// AuthRules are the room-version toggles for the authorization rules.
type AuthRules struct {
	// IntegerPowerLevels requires all power-level values to be true
	// JSON integers. When false (room versions 1-9), stringified
	// integers are accepted and coerced.
	IntegerPowerLevels bool

	// SpecialCaseAliases applies the m.room.aliases state-key rule
	// (room versions 1-5).
	SpecialCaseAliases bool

	// SpecialCaseRedaction applies the origin-server redaction
	// allowance (room versions 1-2).
	SpecialCaseRedaction bool

	// UseRoomCreateSender takes the room creator from the create
	// event's sender instead of a content "creator" field (room
	// version 11 onward).
	UseRoomCreateSender bool

	// ExplicitlyPrivilegeRoomCreators gives room creators an
	// infinite power level and forbids listing them in the power
	// levels "users" map ("org.matrix.hydra.11" onward).
	ExplicitlyPrivilegeRoomCreators bool

	// AdditionalRoomCreators honors the create event's
	// "additional_creators" content field ("org.matrix.hydra.11"
	// onward).
	AdditionalRoomCreators bool

	// RoomCreateEventIDAsRoomID derives the room ID from the create
	// event's ID, sigil-swapped. The create event then no longer
	// appears in auth_events lists; it is reachable from the room ID
	// instead ("org.matrix.hydra.11" onward).
	RoomCreateEventIDAsRoomID bool

	// RestrictedJoinRule enables the "restricted" join rule and the
	// join_authorised_via_users_server membership field (room
	// version 8 onward).
	RestrictedJoinRule bool

	// KnockJoinRule enables the "knock" join rule and knock
	// membership (room version 7 onward).
	KnockJoinRule bool

	// KnockRestrictedJoinRule enables the "knock_restricted" join
	// rule (room version 10 onward).
	KnockRestrictedJoinRule bool

	// LimitNotificationsPowerLevels subjects the power levels
	// "notifications" map to the same old/new bound checks as
	// "events" (room version 6 onward).
	LimitNotificationsPowerLevels bool
}

// StateResRules are the room-version toggles for the resolution
// orchestrator.
type StateResRules struct {
	// ConsiderConflictedSubgraph adds the conflicted-subgraph
	// expansion to the full conflicted set ("org.matrix.hydra.11"
	// onward).
	ConsiderConflictedSubgraph bool

	// BeginWithEmptyStateMap starts the iterative auth checks over
	// the sorted power events from an empty state map instead of the
	// unconflicted map. This matches what deployed servers have
	// always done for room versions 2-11; "org.matrix.hydra.11"
	// aligns with the written algorithm and starts from the
	// unconflicted map.
	BeginWithEmptyStateMap bool
}
