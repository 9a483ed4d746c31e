// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package stateres

import "github.com/hearth-im/hearth/lib/ref"

// authDifference computes the auth difference of the fork auth chains:
// every event that appears in some chain but not in all of them, the
// union minus the intersection.
func authDifference(authSets []AuthSet) map[ref.EventID]struct{} {
	difference := make(map[ref.EventID]struct{})
	if len(authSets) == 0 {
		return difference
	}

	inAll := func(id ref.EventID) bool {
		for _, set := range authSets {
			if _, ok := set[id]; !ok {
				return false
			}
		}
		return true
	}
	for _, set := range authSets {
		for id := range set {
			if !inAll(id) {
				difference[id] = struct{}{}
			}
		}
	}
	return difference
}
