// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// checkRoomPowerLevels validates a new m.room.power_levels event
// against the current one. Every altered value is bounded by the
// sender's own power: a change is rejected when either the old or the
// new value exceeds what the sender holds, with one asymmetry for the
// users map where lowering another user's level requires strictly
// greater power than that user has.
func checkRoomPowerLevels(
	newEvent event.PowerLevelsEvent,
	current *event.PowerLevelsEvent,
	rules roomversion.AuthRules,
	senderPower event.UserPower,
	creators []ref.UserID,
) error {
	// Structural validation first: every advertised value must parse
	// under the room version's numeric strictness.
	newFields, err := newEvent.IntFields(rules)
	if err != nil {
		return rejectf("%v", err)
	}
	newEvents, err := newEvent.Events(rules)
	if err != nil {
		return rejectf("%v", err)
	}
	newNotifications, err := newEvent.Notifications(rules)
	if err != nil {
		return rejectf("%v", err)
	}
	newUsers, err := newEvent.Users(rules)
	if err != nil {
		return rejectf("%v", err)
	}

	// Creators hold infinite power implicitly; listing them would
	// assign a meaningless integer.
	if rules.ExplicitlyPrivilegeRoomCreators {
		for _, creator := range creators {
			if _, listed := newUsers[creator.String()]; listed {
				return rejectf("creator %s is not allowed in the users field", creator)
			}
		}
	}

	// The room's first power-levels event is unconditionally allowed.
	if current == nil {
		return nil
	}

	for _, field := range event.PowerLevelFields {
		currentValue, err := current.Int(field, rules)
		if err != nil {
			return err
		}
		newValue, hasNew := newFields[field]
		if currentValue == nil && !hasNew {
			continue
		}
		if currentValue != nil && hasNew && *currentValue == newValue {
			continue
		}

		effectiveCurrent := field.Default()
		if currentValue != nil {
			effectiveCurrent = *currentValue
		}
		effectiveNew := field.Default()
		if hasNew {
			effectiveNew = newValue
		}
		if !senderPower.AtLeast(effectiveCurrent) || !senderPower.AtLeast(effectiveNew) {
			return rejectf("sender does not have enough power to change the %s level", field)
		}
	}

	currentEvents, err := current.Events(rules)
	if err != nil {
		return err
	}
	if err := checkPowerLevelMap(currentEvents, newEvents, senderPower, func(_ string, currentLevel int64) bool {
		return !senderPower.AtLeast(currentLevel)
	}, "%s event type"); err != nil {
		return err
	}

	if rules.LimitNotificationsPowerLevels {
		currentNotifications, err := current.Notifications(rules)
		if err != nil {
			return err
		}
		if err := checkPowerLevelMap(currentNotifications, newNotifications, senderPower, func(_ string, currentLevel int64) bool {
			return !senderPower.AtLeast(currentLevel)
		}, "%s notification"); err != nil {
			return err
		}
	}

	currentUsers, err := current.Users(rules)
	if err != nil {
		return err
	}
	sender := newEvent.Sender().String()
	return checkPowerLevelMap(currentUsers, newUsers, senderPower, func(user string, currentLevel int64) bool {
		// Changing or removing another user's entry requires strictly
		// greater power than they hold; the sender may always lower
		// their own.
		return user != sender && !senderPower.Greater(currentLevel)
	}, "user %s")
}

// checkPowerLevelMap applies the old/new bound check to one of the
// power-level maps. For every key whose value is added, changed, or
// removed: the new value must not exceed the sender's power, and
// rejectCurrent decides whether the old value forbids touching the
// entry at all.
func checkPowerLevelMap(
	current, updated map[string]int64,
	senderPower event.UserPower,
	rejectCurrent func(key string, currentLevel int64) bool,
	what string,
) error {
	for key := range current {
		if err := checkPowerLevelEntry(current, updated, key, senderPower, rejectCurrent, what); err != nil {
			return err
		}
	}
	for key := range updated {
		if _, alsoCurrent := current[key]; alsoCurrent {
			continue
		}
		if err := checkPowerLevelEntry(current, updated, key, senderPower, rejectCurrent, what); err != nil {
			return err
		}
	}
	return nil
}

func checkPowerLevelEntry(
	current, updated map[string]int64,
	key string,
	senderPower event.UserPower,
	rejectCurrent func(key string, currentLevel int64) bool,
	what string,
) error {
	currentLevel, hasCurrent := current[key]
	newLevel, hasNew := updated[key]
	if hasCurrent == hasNew && currentLevel == newLevel {
		return nil
	}

	if hasCurrent && rejectCurrent(key, currentLevel) {
		return rejectf("sender does not have enough power to change the "+what+" power level", key)
	}
	if hasNew && !senderPower.AtLeast(newLevel) {
		return rejectf("sender does not have enough power to change the "+what+" power level", key)
	}
	return nil
}
