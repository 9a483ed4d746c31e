// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a lookup found no event. Ref is the
// identifier that was looked up: an event ID, or a rendered
// (type, state key) tuple for state lookups. Callers can use errors.As
// to extract it, or [IsNotFound] for the common case:
//
//	if eventstore.IsNotFound(err) { ... }
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %s not found", e.Ref)
}

// IsNotFound checks whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
