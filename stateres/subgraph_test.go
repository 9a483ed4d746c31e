// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"encoding/json"
	"testing"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/eventstore"
	"github.com/hearth-im/hearth/lib/ref"
)

// chainEvent builds a minimal event citing the given auth events,
// enough for graph walks that never look at content.
func chainEvent(id string, authEvents ...string) *event.PDU {
	auth := make([]ref.EventID, 0, len(authEvents))
	for _, a := range authEvents {
		auth = append(auth, ref.MustParseEventID(a))
	}
	return &event.PDU{
		EventID:      ref.MustParseEventID(id),
		Room:         ref.MustParseRoomID(testRoomID),
		SenderID:     ref.MustParseUserID("@alice:example.com"),
		EventType:    "m.room.message",
		RawContent:   json.RawMessage(`{}`),
		AuthEventIDs: auth,
	}
}

func idSet(raw ...string) map[ref.EventID]struct{} {
	s := make(map[ref.EventID]struct{}, len(raw))
	for _, r := range raw {
		s[ref.MustParseEventID(r)] = struct{}{}
	}
	return s
}

func TestConflictedSubgraph(t *testing.T) {
	// $top cites $mid, $mid cites $bottom; $side hangs off $mid but
	// leads to no conflicted event. With $top and $bottom conflicted,
	// the subgraph is the path through $mid, not $side.
	store := eventstore.NewMemoryStore()
	store.Add(chainEvent("$bottom:x"))
	store.Add(chainEvent("$side:x"))
	store.Add(chainEvent("$mid:x", "$bottom:x", "$side:x"))
	store.Add(chainEvent("$top:x", "$mid:x"))

	subgraph, err := conflictedSubgraph(t.Context(), idSet("$top:x", "$bottom:x"), store)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"$top:x", "$mid:x", "$bottom:x"} {
		if _, ok := subgraph[ref.MustParseEventID(id)]; !ok {
			t.Errorf("subgraph missing %s", id)
		}
	}
	if _, ok := subgraph[ref.MustParseEventID("$side:x")]; ok {
		t.Error("subgraph must not contain $side:x")
	}
}

func TestConflictedSubgraphSharedSegment(t *testing.T) {
	// Two conflicted events reach a third over the same middle event.
	// The walk memoizes the middle, so the second descent must still
	// attribute the shared segment to the subgraph.
	store := eventstore.NewMemoryStore()
	store.Add(chainEvent("$bottom:x"))
	store.Add(chainEvent("$mid:x", "$bottom:x"))
	store.Add(chainEvent("$a:x", "$mid:x"))
	store.Add(chainEvent("$b:x", "$mid:x"))

	subgraph, err := conflictedSubgraph(t.Context(), idSet("$a:x", "$b:x", "$bottom:x"), store)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"$a:x", "$b:x", "$mid:x", "$bottom:x"} {
		if _, ok := subgraph[ref.MustParseEventID(id)]; !ok {
			t.Errorf("subgraph missing %s", id)
		}
	}
}

func TestConflictedSubgraphUnknownEvents(t *testing.T) {
	// A conflicted event citing an unknown auth event ends that
	// branch without failing the walk.
	store := eventstore.NewMemoryStore()
	store.Add(chainEvent("$known:x", "$unknown:x"))

	subgraph, err := conflictedSubgraph(t.Context(), idSet("$known:x", "$other:x"), store)
	if err != nil {
		t.Fatal(err)
	}
	if len(subgraph) != 0 {
		t.Errorf("subgraph = %v, want empty", subgraph)
	}
}
