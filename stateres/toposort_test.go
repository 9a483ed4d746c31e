// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"slices"
	"testing"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

func eventIDs(raw ...string) []ref.EventID {
	ids := make([]ref.EventID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, ref.MustParseEventID(r))
	}
	return ids
}

// graphOf builds an auth graph literal: each entry maps an event to
// the events it cites.
func graphOf(edges map[string][]string) map[ref.EventID]map[ref.EventID]struct{} {
	graph := make(map[ref.EventID]map[ref.EventID]struct{}, len(edges))
	for id, auths := range edges {
		set := make(map[ref.EventID]struct{}, len(auths))
		for _, a := range auths {
			set[ref.MustParseEventID(a)] = struct{}{}
		}
		graph[ref.MustParseEventID(id)] = set
	}
	return graph
}

func TestTopologicalSortRespectsAuthEdges(t *testing.T) {
	// $b and $c both cite $a; $d cites both. Whatever the tie-breaks
	// say, $a must come first and $d last.
	graph := graphOf(map[string][]string{
		"$a:x": {},
		"$b:x": {"$a:x"},
		"$c:x": {"$a:x"},
		"$d:x": {"$b:x", "$c:x"},
	})
	criteria := map[string]SortCriteria{
		"$a:x": {SenderPower: event.Power(100), OriginServerTS: 1},
		"$b:x": {SenderPower: event.Power(50), OriginServerTS: 2},
		"$c:x": {SenderPower: event.Power(100), OriginServerTS: 3},
		"$d:x": {SenderPower: event.Power(100), OriginServerTS: 4},
	}

	sorted, err := TopologicalSort(graph, func(id ref.EventID) (SortCriteria, error) {
		return criteria[id.String()], nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// $c outranks $b on sender power even though $b is older.
	want := eventIDs("$a:x", "$c:x", "$b:x", "$d:x")
	if !slices.Equal(sorted, want) {
		t.Fatalf("sorted = %v, want %v", sorted, want)
	}
}

func TestTopologicalSortTieBreaks(t *testing.T) {
	graph := graphOf(map[string][]string{
		"$p100:x":    {},
		"$p50-t1:x":  {},
		"$p50-t2:x":  {},
		"$p50-t2b:x": {},
	})
	criteria := map[string]SortCriteria{
		"$p100:x":    {SenderPower: event.Power(100), OriginServerTS: 9},
		"$p50-t1:x":  {SenderPower: event.Power(50), OriginServerTS: 1},
		"$p50-t2:x":  {SenderPower: event.Power(50), OriginServerTS: 2},
		"$p50-t2b:x": {SenderPower: event.Power(50), OriginServerTS: 2},
	}

	sorted, err := TopologicalSort(graph, func(id ref.EventID) (SortCriteria, error) {
		return criteria[id.String()], nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Highest power first, then earliest timestamp, then smallest ID.
	want := eventIDs("$p100:x", "$p50-t1:x", "$p50-t2:x", "$p50-t2b:x")
	if !slices.Equal(sorted, want) {
		t.Fatalf("sorted = %v, want %v", sorted, want)
	}
}

func TestTopologicalSortInfinitePowerFirst(t *testing.T) {
	graph := graphOf(map[string][]string{
		"$creator:x": {},
		"$admin:x":   {},
	})
	criteria := map[string]SortCriteria{
		"$creator:x": {SenderPower: event.InfinitePower(), OriginServerTS: 9},
		"$admin:x":   {SenderPower: event.Power(100), OriginServerTS: 1},
	}

	sorted, err := TopologicalSort(graph, func(id ref.EventID) (SortCriteria, error) {
		return criteria[id.String()], nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := eventIDs("$creator:x", "$admin:x")
	if !slices.Equal(sorted, want) {
		t.Fatalf("sorted = %v, want %v", sorted, want)
	}
}
