// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import (
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
)

// splitConflicted partitions the fork states into the unconflicted
// state map and the conflicted state set. A slot is unconflicted only
// when every fork carries it with the same event ID; a slot missing
// from some forks is conflicted even if the forks that have it agree.
func splitConflicted(stateMaps []StateMap) (StateMap, ConflictMap) {
	occurrences := make(map[event.StateTuple]map[ref.EventID]int)
	for _, stateMap := range stateMaps {
		for tuple, id := range stateMap {
			byID := occurrences[tuple]
			if byID == nil {
				byID = make(map[ref.EventID]int)
				occurrences[tuple] = byID
			}
			byID[id]++
		}
	}

	unconflicted := make(StateMap)
	conflicted := make(ConflictMap)
	for tuple, byID := range occurrences {
		for id, count := range byID {
			if count == len(stateMaps) {
				unconflicted[tuple] = id
			} else {
				conflicted[tuple] = append(conflicted[tuple], id)
			}
		}
	}
	return unconflicted, conflicted
}
