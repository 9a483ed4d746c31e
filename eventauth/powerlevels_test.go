// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"testing"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

func powerEvent(id, sender, content string) event.PowerLevelsEvent {
	return event.NewPowerLevelsEvent(pdu(id, sender, event.TypePowerLevels, event.StateKeyOf(""), content))
}

func TestFirstPowerLevelsEventAllowed(t *testing.T) {
	rules := v10(t).Authorization
	newEvent := powerEvent("$p:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100}}`)

	err := checkRoomPowerLevels(newEvent, nil, rules, event.Power(100), nil)
	requireAllowed(t, err)
}

func TestCannotDemoteMorePowerfulUser(t *testing.T) {
	rules := v10(t).Authorization
	current := powerEvent("$p0:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50}}`)

	// Bob (50) tries to zero out alice (100).
	newEvent := powerEvent("$p1:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":0,"@bob:example.com":50}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Bob cannot demote an equal either: changing another user's
	// entry requires strictly greater power.
	current = powerEvent("$p2:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50,"@charlie:example.com":50}}`)
	newEvent = powerEvent("$p3:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50,"@charlie:example.com":0}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Alice (100) demoting bob is fine.
	newEvent = powerEvent("$p4:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":0,"@charlie:example.com":50}}`)
	requireAllowed(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(100), nil))
}

func TestCannotRaiseBeyondOwnPower(t *testing.T) {
	rules := v10(t).Authorization
	current := powerEvent("$p0:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50}}`)

	// Bob raises himself to 75: the new value exceeds his power.
	newEvent := powerEvent("$p1:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":75}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Lowering his own entry is always allowed.
	newEvent = powerEvent("$p2:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":10}}`)
	requireAllowed(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))
}

func TestScalarFieldBounds(t *testing.T) {
	rules := v10(t).Authorization
	current := powerEvent("$p0:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"ban":50}`)

	// Both the old (50) and new (25) ban levels are within bob's
	// power.
	newEvent := powerEvent("$p1:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"ban":25}`)
	requireAllowed(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// The new ban level exceeds bob's power.
	newEvent = powerEvent("$p2:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"ban":75}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Removing a field counts as a change to its default: dropping
	// state_default when it was raised above bob is rejected.
	current = powerEvent("$p3:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"state_default":90}`)
	newEvent = powerEvent("$p4:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))
}

func TestEventsMapBounds(t *testing.T) {
	rules := v10(t).Authorization
	current := powerEvent("$p0:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"events":{"m.room.name":75,"m.room.topic":25}}`)

	// Changing an entry above bob's power.
	newEvent := powerEvent("$p1:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"events":{"m.room.name":25,"m.room.topic":25}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Changing an entry within it.
	newEvent = powerEvent("$p2:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"events":{"m.room.name":75,"m.room.topic":50}}`)
	requireAllowed(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))

	// Adding an entry beyond bob's power.
	newEvent = powerEvent("$p3:example.com", "@bob:example.com",
		`{"users":{"@alice:example.com":100,"@bob:example.com":50},"events":{"m.room.name":75,"m.room.topic":25,"m.room.avatar":60}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, &current, rules, event.Power(50), nil))
}

func TestMalformedPowerLevelsRejected(t *testing.T) {
	rules := v10(t).Authorization

	// Room version 10 requires true integers.
	newEvent := powerEvent("$p:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":"100"}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, nil, rules, event.Power(100), nil))
}

func TestCreatorsExcludedFromUsersMap(t *testing.T) {
	hydra, ok := roomversion.Get(roomversion.HydraV11)
	if !ok {
		t.Fatal("hydra room version not registered")
	}
	rules := hydra.Authorization
	alice := ref.MustParseUserID("@alice:example.com")

	newEvent := powerEvent("$p:example.com", "@alice:example.com",
		`{"users":{"@alice:example.com":100}}`)
	requireRejected(t, checkRoomPowerLevels(newEvent, nil, rules, event.InfinitePower(), []ref.UserID{alice}))

	withoutCreator := powerEvent("$p2:example.com", "@alice:example.com",
		`{"users":{"@bob:example.com":50}}`)
	requireAllowed(t, checkRoomPowerLevels(withoutCreator, nil, rules, event.InfinitePower(), []ref.UserID{alice}))
}

// TestDefaultUserCannotEditPowerLevels is the end-to-end version: bob,
// holding the default level 0, sends a power-levels event demoting
// alice. The event never even reaches the users-map check because
// sending m.room.power_levels requires state_default power.
func TestDefaultUserCannotEditPowerLevels(t *testing.T) {
	rules := v10(t)
	room := setupRoom(t)

	ev := pdu("$p:example.com", "@bob:example.com", event.TypePowerLevels, event.StateKeyOf(""),
		`{"users":{"@alice:example.com":0}}`)
	requireRejected(t, CheckStateDependent(t.Context(), rules, ev, room))
}
