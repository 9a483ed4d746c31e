// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/stateres"
)

// renderState writes the resolved state, one slot per line, sorted by
// type then state key. The output is stable for a given map.
func renderState(w io.Writer, resolved stateres.StateMap) error {
	tuples := make([]event.StateTuple, 0, len(resolved))
	for tuple := range resolved {
		tuples = append(tuples, tuple)
	}
	slices.SortFunc(tuples, func(a, b event.StateTuple) int {
		if cmp := strings.Compare(a.Type, b.Type); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.StateKey, b.StateKey)
	})

	for _, tuple := range tuples {
		if _, err := fmt.Fprintf(w, "%s %q -> %s\n", tuple.Type, tuple.StateKey, resolved[tuple]); err != nil {
			return err
		}
	}
	return nil
}
