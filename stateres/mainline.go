// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

// mainlineSort orders the remaining events by mainline position. The
// mainline is the chain of power-levels events reachable from the
// resolved power-levels event through auth events; each event's
// position is the mainline index of the nearest power-levels event in
// its own auth lineage. Events sort by position, then timestamp, then
// event ID. powerLevelID may be zero when the partial state has no
// power-levels event yet, in which case every position is zero.
func mainlineSort(ctx context.Context, powerLevelID ref.EventID, remaining []ref.EventID, store Store) ([]ref.EventID, error) {
	var mainline []ref.EventID
	for current := powerLevelID; !current.IsZero(); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := store.Event(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("fetch mainline event %s: %w", current, err)
		}
		mainline = append(mainline, current)
		next, err := powerLevelsAuthEvent(ctx, ev, store)
		if err != nil {
			return nil, err
		}
		current = ref.EventID{}
		if next != nil {
			current = next.ID()
		}
	}

	// Positions count from the create end, so the oldest mainline
	// event sits at zero and sorts first.
	mainlinePosition := make(map[ref.EventID]int, len(mainline))
	for i, id := range mainline {
		mainlinePosition[id] = len(mainline) - 1 - i
	}

	type mainlineOrder struct {
		position int
		ts       int64
	}
	order := make(map[ref.EventID]mainlineOrder, len(remaining))
	sorted := make([]ref.EventID, 0, len(remaining))
	for _, id := range remaining {
		ev, err := store.Event(ctx, id)
		if err != nil {
			continue
		}
		position, err := mainlinePositionOf(ctx, ev, mainlinePosition, store)
		if err != nil {
			continue
		}
		order[id] = mainlineOrder{position: position, ts: ev.OriginServerTS()}
		sorted = append(sorted, id)
	}

	slices.SortFunc(sorted, func(a, b ref.EventID) int {
		oa, ob := order[a], order[b]
		if oa.position != ob.position {
			return oa.position - ob.position
		}
		if oa.ts != ob.ts {
			if oa.ts < ob.ts {
				return -1
			}
			return 1
		}
		return strings.Compare(a.String(), b.String())
	})
	return sorted, nil
}

// mainlinePositionOf walks the event's power-levels lineage until it
// reaches an event on the mainline, defaulting to zero when the walk
// runs out before hitting the mainline.
func mainlinePositionOf(ctx context.Context, ev event.Event, mainlinePosition map[ref.EventID]int, store Store) (int, error) {
	for current := ev; current != nil; {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if position, ok := mainlinePosition[current.ID()]; ok {
			return position, nil
		}
		next, err := powerLevelsAuthEvent(ctx, current, store)
		if err != nil {
			return 0, err
		}
		current = next
	}
	return 0, nil
}

// powerLevelsAuthEvent returns the first power-levels event cited in
// the event's auth-event list, or nil when none is cited. A cited
// auth event that cannot be fetched is an error.
func powerLevelsAuthEvent(ctx context.Context, ev event.Event, store Store) (event.Event, error) {
	for _, authID := range ev.AuthEvents() {
		authEvent, err := store.Event(ctx, authID)
		if err != nil {
			return nil, fmt.Errorf("fetch auth event %s: %w", authID, err)
		}
		stateKey, ok := authEvent.StateKey()
		if authEvent.Type() == event.TypePowerLevels && ok && stateKey == "" {
			return authEvent, nil
		}
	}
	return nil, nil
}
