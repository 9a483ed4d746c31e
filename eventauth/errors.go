// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"errors"
	"fmt"
)

// RejectError reports that an event failed an authorization rule.
// The event is forbidden under the supplied state; nothing went wrong
// mechanically. Callers decide what rejection means: the ingestion
// path marks the event rejected, the state resolver skips it.
type RejectError struct {
	// Reason describes the rule that failed, for logs and audit.
	Reason string
}

func (e *RejectError) Error() string {
	return "forbidden: " + e.Reason
}

// rejectf builds a *RejectError from a format string.
func rejectf(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// IsReject checks whether err is a *RejectError, distinguishing an
// authorization verdict from a mechanical failure.
func IsReject(err error) bool {
	var reject *RejectError
	return errors.As(err, &reject)
}
