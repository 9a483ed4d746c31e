// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// checkRoomRedaction applies the legacy m.room.redaction rules: allow
// when the sender holds redact power, or when the redaction and the
// redacted event carry the same server-name suffix on their event IDs,
// which in the era of server-scoped event IDs meant the same origin
// server produced both.
func checkRoomRedaction(
	ev event.Event,
	powerLevels *event.PowerLevelsEvent,
	rules roomversion.AuthRules,
	senderPower event.UserPower,
) error {
	redactLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldRedact, rules)
	if err != nil {
		return err
	}
	if senderPower.AtLeast(redactLevel) {
		return nil
	}

	if redacts, ok := ev.Redacts(); ok {
		ownServer, ownOK := ev.ID().Server()
		redactedServer, redactedOK := redacts.Server()
		if ownOK && redactedOK && ownServer == redactedServer {
			return nil
		}
	}

	return rejectf("sender power %s is below the redact level %d and the redacted event is not from the same server", senderPower, redactLevel)
}
