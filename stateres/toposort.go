// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"container/heap"
	"strings"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

// SortCriteria is the per-event information the reverse topological
// power ordering breaks ties on.
type SortCriteria struct {
	// SenderPower is the power level of the event's sender as of the
	// event's own auth-event lineage.
	SenderPower event.UserPower

	// OriginServerTS is the event's origin server timestamp.
	OriginServerTS int64
}

// TopologicalSort sorts an auth-event graph using reverse topological
// power ordering, from earliest event to latest. The graph maps each
// event to the set of its auth events within the sorted set; query
// supplies the tie-break criteria for one event.
//
// Kahn's algorithm drives the sort. Among the candidate events whose
// in-set auth events have all been emitted, the winner is the one with
// the highest sender power level, then the earliest origin server
// timestamp, then the lexicographically smallest event ID. The result
// is fully deterministic: no two inputs with identical graphs and
// criteria can sort differently.
func TopologicalSort(graph map[ref.EventID]map[ref.EventID]struct{}, query func(ref.EventID) (SortCriteria, error)) ([]ref.EventID, error) {
	// incomingEdges maps each event to the events that cite it as an
	// auth event. outgoingEdges is a mutable copy of the graph that
	// Kahn's algorithm drains.
	incomingEdges := make(map[ref.EventID][]ref.EventID, len(graph))
	outgoingEdges := make(map[ref.EventID]map[ref.EventID]struct{}, len(graph))
	candidates := &candidateHeap{}

	for id, authEvents := range graph {
		if _, ok := incomingEdges[id]; !ok {
			incomingEdges[id] = nil
		}
		remaining := make(map[ref.EventID]struct{}, len(authEvents))
		for authID := range authEvents {
			remaining[authID] = struct{}{}
			incomingEdges[authID] = append(incomingEdges[authID], id)
		}
		outgoingEdges[id] = remaining

		if len(authEvents) == 0 {
			criteria, err := query(id)
			if err != nil {
				return nil, err
			}
			candidates.push(id, criteria)
		}
	}

	sorted := make([]ref.EventID, 0, len(graph))
	for candidates.Len() > 0 {
		id := candidates.pop()
		sorted = append(sorted, id)

		for _, parent := range incomingEdges[id] {
			remaining := outgoingEdges[parent]
			delete(remaining, id)
			if len(remaining) > 0 {
				continue
			}
			criteria, err := query(parent)
			if err != nil {
				return nil, err
			}
			candidates.push(parent, criteria)
		}
	}
	return sorted, nil
}

type candidate struct {
	id       ref.EventID
	criteria SortCriteria
}

// candidateHeap orders the ready events of Kahn's algorithm: highest
// sender power first, then earliest timestamp, then smallest event ID.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if cmp := a.criteria.SenderPower.Cmp(b.criteria.SenderPower); cmp != 0 {
		return cmp > 0
	}
	if a.criteria.OriginServerTS != b.criteria.OriginServerTS {
		return a.criteria.OriginServerTS < b.criteria.OriginServerTS
	}
	return strings.Compare(a.id.String(), b.id.String()) < 0
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}

func (h *candidateHeap) push(id ref.EventID, criteria SortCriteria) {
	heap.Push(h, candidate{id: id, criteria: criteria})
}

func (h *candidateHeap) pop() ref.EventID {
	return heap.Pop(h).(candidate).id
}
