// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// Resolver resolves divergent room state. A Resolver is stateless
// apart from its store handle and may be shared, but callers must
// serialize resolutions of the same room themselves.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// New creates a Resolver reading events from store. A nil logger
// discards all output.
func New(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve computes the resolved state of a room from the state maps
// of the diverged forks and the auth sets covering each fork's auth
// chains. Both slices index the same forks in the same order. The
// result maps every state tuple seen in any fork to the event ID that
// wins under the room version's resolution rules.
func (r *Resolver) Resolve(ctx context.Context, rules roomversion.Rules, stateMaps []StateMap, authSets []AuthSet) (StateMap, error) {
	if !rules.StateResV2 {
		return nil, fmt.Errorf("room version %s does not use state resolution v2", rules.Version)
	}
	unconflicted, conflicted := splitConflicted(stateMaps)
	if len(conflicted) == 0 {
		r.logger.Debug("no conflicted state", "tuples", len(unconflicted))
		return unconflicted, nil
	}
	r.logger.Debug("resolving conflicted state",
		"forks", len(stateMaps),
		"unconflicted", len(unconflicted),
		"conflicted", len(conflicted))

	fullConflicted := make(map[ref.EventID]struct{})
	for id := range authDifference(authSets) {
		fullConflicted[id] = struct{}{}
	}
	for _, ids := range conflicted {
		for _, id := range ids {
			fullConflicted[id] = struct{}{}
		}
	}
	if rules.StateRes.ConsiderConflictedSubgraph {
		conflictedIDs := make(map[ref.EventID]struct{}, len(conflicted))
		for _, ids := range conflicted {
			for _, id := range ids {
				conflictedIDs[id] = struct{}{}
			}
		}
		subgraph, err := conflictedSubgraph(ctx, conflictedIDs, r.store)
		if err != nil {
			return nil, fmt.Errorf("conflicted subgraph: %w", err)
		}
		for id := range subgraph {
			fullConflicted[id] = struct{}{}
		}
	}

	// Events only referenced, never received, cannot participate.
	for id := range fullConflicted {
		ok, err := r.store.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check event %s: %w", id, err)
		}
		if !ok {
			delete(fullConflicted, id)
		}
	}
	r.logger.Debug("full conflicted set assembled", "events", len(fullConflicted))

	powerSorted, err := powerSort(ctx, rules, fullConflicted, r.store)
	if err != nil {
		return nil, fmt.Errorf("power sort: %w", err)
	}
	r.logger.Debug("power events sorted", "events", len(powerSorted))

	initial := StateMap{}
	if !rules.StateRes.BeginWithEmptyStateMap {
		initial = unconflicted
	}
	partial, err := iterativeAuthCheck(ctx, rules, powerSorted, initial, r.store, r.logger)
	if err != nil {
		return nil, fmt.Errorf("iterative auth check of power events: %w", err)
	}

	resolvedPower := partial[event.StateTuple{Type: event.TypePowerLevels, StateKey: ""}]

	inPowerSorted := make(map[ref.EventID]struct{}, len(powerSorted))
	for _, id := range powerSorted {
		inPowerSorted[id] = struct{}{}
	}
	remaining := make([]ref.EventID, 0, len(fullConflicted))
	for id := range fullConflicted {
		if _, ok := inPowerSorted[id]; !ok {
			remaining = append(remaining, id)
		}
	}

	mainlineSorted, err := mainlineSort(ctx, resolvedPower, remaining, r.store)
	if err != nil {
		return nil, fmt.Errorf("mainline sort: %w", err)
	}
	r.logger.Debug("remaining events sorted", "events", len(mainlineSorted))

	resolved, err := iterativeAuthCheck(ctx, rules, mainlineSorted, partial, r.store, r.logger)
	if err != nil {
		return nil, fmt.Errorf("iterative auth check of remaining events: %w", err)
	}

	// Unconflicted state always wins over anything resolution chose.
	for tuple, id := range unconflicted {
		resolved[tuple] = id
	}
	r.logger.Debug("state resolved", "tuples", len(resolved))
	return resolved, nil
}
