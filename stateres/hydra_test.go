// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"testing"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/eventstore"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// hydraRoomID is the create event ID with the sigil swapped: the room
// carries no server part, and neither do its events.
const hydraRoomID = "!hydracreate"

func hydraPDU(id, sender, eventType string, stateKey *string, ts int64, content string, authEvents ...string) *event.PDU {
	ev := pdu(id, sender, eventType, stateKey, ts, content, authEvents...)
	ev.Room = ref.MustParseRoomID(hydraRoomID)
	return ev
}

func hydraMember(id, sender, target, membership string, ts int64, authEvents ...string) *event.PDU {
	return hydraPDU(id, sender, event.TypeMember, event.StateKeyOf(target), ts,
		`{"membership":"`+membership+`"}`, authEvents...)
}

// setupHydraRoom builds an org.matrix.hydra.11 room created by alice.
// The create event is cited by no auth-event list, alice appears in no
// power-levels users map, and her join rides the creator shortcut with
// the create event as its only previous event. Bob is joined at the
// default level under a public join rule.
func setupHydraRoom(t *testing.T) (*eventstore.MemoryStore, StateMap) {
	t.Helper()
	store := eventstore.NewMemoryStore()

	aliceJoin := hydraMember("$hydra-alice-join", "@alice:example.com", "@alice:example.com", "join", 2)
	aliceJoin.PrevEventIDs = []ref.EventID{ref.MustParseEventID("$hydracreate")}

	for _, ev := range []*event.PDU{
		hydraPDU("$hydracreate", "@alice:example.com", event.TypeCreate, event.StateKeyOf(""), 1,
			`{"room_version":"`+roomversion.HydraV11+`"}`),
		aliceJoin,
		hydraPDU("$hydra-power", "@alice:example.com", event.TypePowerLevels, event.StateKeyOf(""), 3,
			`{"users":{"@bob:example.com":50},"ban":50,"kick":50,"redact":50}`,
			"$hydra-alice-join"),
		hydraPDU("$hydra-join-rules", "@alice:example.com", event.TypeJoinRules, event.StateKeyOf(""), 4,
			`{"join_rule":"public"}`,
			"$hydra-alice-join", "$hydra-power"),
		hydraMember("$hydra-bob-join", "@bob:example.com", "@bob:example.com", "join", 5,
			"$hydra-join-rules", "$hydra-power"),
	} {
		store.Add(ev)
	}

	state := StateMap{}
	for _, ev := range []struct {
		eventType, stateKey, id string
	}{
		{event.TypeCreate, "", "$hydracreate"},
		{event.TypeMember, "@alice:example.com", "$hydra-alice-join"},
		{event.TypePowerLevels, "", "$hydra-power"},
		{event.TypeJoinRules, "", "$hydra-join-rules"},
		{event.TypeMember, "@bob:example.com", "$hydra-bob-join"},
	} {
		state[event.StateTuple{Type: ev.eventType, StateKey: ev.stateKey}] = ref.MustParseEventID(ev.id)
	}
	return store, state
}

func hydraRules(t *testing.T) roomversion.Rules {
	t.Helper()
	rules, ok := roomversion.Get(roomversion.HydraV11)
	if !ok {
		t.Fatalf("room version %s not registered", roomversion.HydraV11)
	}
	return rules
}

func resolveHydra(t *testing.T, store *eventstore.MemoryStore, forks []StateMap) StateMap {
	t.Helper()
	authSets := make([]AuthSet, 0, len(forks))
	for _, fork := range forks {
		authSets = append(authSets, authChainOf(t, store, fork))
	}
	resolved, err := New(store, nil).Resolve(t.Context(), hydraRules(t), forks, authSets)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return resolved
}

func TestResolveHydraTopicConflict(t *testing.T) {
	store, state := setupHydraRoom(t)

	// Neither topic cites the create event; the replay has to imply it
	// from the room ID. The later topic wins the mainline timestamp
	// tie-break, same as classic rooms.
	topicA := hydraPDU("$hydra-topic-a", "@alice:example.com", "m.room.topic", event.StateKeyOf(""), 100,
		`{"topic":"a"}`,
		"$hydra-alice-join", "$hydra-power")
	topicB := hydraPDU("$hydra-topic-b", "@alice:example.com", "m.room.topic", event.StateKeyOf(""), 200,
		`{"topic":"b"}`,
		"$hydra-alice-join", "$hydra-power")
	store.Add(topicA)
	store.Add(topicB)

	topicTuple := event.StateTuple{Type: "m.room.topic", StateKey: ""}
	fork1 := state.Clone()
	fork1[topicTuple] = topicA.ID()
	fork2 := state.Clone()
	fork2[topicTuple] = topicB.ID()

	resolved := resolveHydra(t, store, []StateMap{fork1, fork2})

	requireResolved(t, resolved, "m.room.topic", "", "$hydra-topic-b")
	requireResolved(t, resolved, event.TypeCreate, "", "$hydracreate")
	requireResolved(t, resolved, event.TypePowerLevels, "", "$hydra-power")
}

func TestResolveHydraBanAgainstStaleJoin(t *testing.T) {
	store, state := setupHydraRoom(t)

	// Alice holds no entry in the power-levels users map; her ban only
	// sticks if the sort and the replay both derive her creator power
	// from the create event the room ID hashes to.
	ban := hydraMember("$hydra-ban", "@alice:example.com", "@bob:example.com", "ban", 100,
		"$hydra-alice-join", "$hydra-power", "$hydra-bob-join")
	store.Add(ban)

	bobTuple := event.StateTuple{Type: event.TypeMember, StateKey: "@bob:example.com"}
	fork1 := state.Clone()
	fork1[bobTuple] = ban.ID()
	fork2 := state.Clone()

	resolved := resolveHydra(t, store, []StateMap{fork1, fork2})

	requireResolved(t, resolved, event.TypeMember, "@bob:example.com", "$hydra-ban")
}

func TestResolveHydraCreatorBeatsPowerLevelsEntry(t *testing.T) {
	store, state := setupHydraRoom(t)

	// Bob rewrites the power levels with himself at 100 on one fork;
	// alice rewrites them on the other. Alice is listed nowhere, but
	// the creator outranks any users-map entry and her event wins the
	// power sort and survives the replay.
	powerAlice := hydraPDU("$hydra-power-2", "@alice:example.com", event.TypePowerLevels, event.StateKeyOf(""), 100,
		`{"users":{"@bob:example.com":25},"ban":50,"kick":50,"redact":50}`,
		"$hydra-alice-join", "$hydra-power")
	powerBob := hydraPDU("$hydra-power-bob", "@bob:example.com", event.TypePowerLevels, event.StateKeyOf(""), 200,
		`{"users":{"@bob:example.com":100}}`,
		"$hydra-bob-join", "$hydra-power")
	store.Add(powerAlice)
	store.Add(powerBob)

	powerTuple := event.StateTuple{Type: event.TypePowerLevels, StateKey: ""}
	fork1 := state.Clone()
	fork1[powerTuple] = powerAlice.ID()
	fork2 := state.Clone()
	fork2[powerTuple] = powerBob.ID()

	resolved := resolveHydra(t, store, []StateMap{fork1, fork2})

	requireResolved(t, resolved, event.TypePowerLevels, "", "$hydra-power-2")
}

func TestResolveRequiresStateResV2(t *testing.T) {
	store, state := setupRoom(t)

	rules, ok := roomversion.Get("1")
	if !ok {
		t.Fatal("room version 1 not registered")
	}
	_, err := New(store, nil).Resolve(t.Context(), rules, []StateMap{state}, []AuthSet{{}})
	if err == nil {
		t.Fatal("expected an error for a room version without v2 resolution")
	}
}
