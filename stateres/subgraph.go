// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"
	"slices"
	"strings"

	"github.com/hearth-im/hearth/lib/ref"
)

// conflictedSubgraph expands the conflicted state set to the
// conflicted state subgraph: every event lying on an auth-event path
// between two conflicted events, endpoints included. The walk is a
// depth-first descent from each conflicted event; whenever it reaches
// another conflicted event, or an event already known to be in the
// subgraph, the whole path walked to get there joins the subgraph.
// Events that cannot be fetched terminate their branch silently.
func conflictedSubgraph(ctx context.Context, conflicted map[ref.EventID]struct{}, store Store) (map[ref.EventID]struct{}, error) {
	subgraph := make(map[ref.EventID]struct{})
	seen := make(map[ref.EventID]struct{})
	path := make([]ref.EventID, 0, 16)

	addPath := func() {
		for _, id := range path {
			subgraph[id] = struct{}{}
		}
	}

	var descend func(id ref.EventID) error
	descend = func(id ref.EventID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path = append(path, id)
		defer func() { path = path[:len(path)-1] }()

		if _, ok := subgraph[id]; ok {
			if len(path) > 1 {
				addPath()
			}
			return nil
		}
		// The conflicted check runs before the seen check so that a
		// conflicted event already walked as a root still completes
		// the paths of later walks that reach it.
		if _, ok := conflicted[id]; ok && len(path) > 1 {
			addPath()
		}
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}

		ev, err := store.Event(ctx, id)
		if err != nil {
			return nil
		}
		for _, authID := range ev.AuthEvents() {
			if err := descend(authID); err != nil {
				return err
			}
		}
		return nil
	}

	roots := make([]ref.EventID, 0, len(conflicted))
	for id := range conflicted {
		roots = append(roots, id)
	}
	slices.SortFunc(roots, func(a, b ref.EventID) int {
		return strings.Compare(a.String(), b.String())
	})

	for _, id := range roots {
		if err := descend(id); err != nil {
			return nil, err
		}
	}
	return subgraph, nil
}
