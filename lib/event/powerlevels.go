// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"

	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// defaultCreatorPowerLevel applies to room creators when the room has
// no m.room.power_levels event at all.
const defaultCreatorPowerLevel = 100

// PowerLevelsEvent is a typed view over an m.room.power_levels event.
// Fields are parsed from the raw content on demand; malformed content
// surfaces as an error from the accessor that touched it.
type PowerLevelsEvent struct {
	Event
}

// NewPowerLevelsEvent wraps the given event. The caller is responsible
// for having checked the event type.
func NewPowerLevelsEvent(ev Event) PowerLevelsEvent {
	return PowerLevelsEvent{Event: ev}
}

func (e PowerLevelsEvent) object() (map[string]json.RawMessage, error) {
	var content map[string]json.RawMessage
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return nil, fmt.Errorf("malformed m.room.power_levels content: %w", err)
	}
	return content, nil
}

// Int returns the value of a scalar integer field, or nil when the
// field is absent.
func (e PowerLevelsEvent) Int(field PowerLevelField, rules roomversion.AuthRules) (*int64, error) {
	content, err := e.object()
	if err != nil {
		return nil, err
	}
	raw, ok := content[string(field)]
	if !ok {
		return nil, nil
	}
	value, err := parsePowerValue(raw, rules.IntegerPowerLevels)
	if err != nil {
		return nil, fmt.Errorf("unexpected format of `%s` field in m.room.power_levels content: %w", field, err)
	}
	return &value, nil
}

// IntOrDefault returns the value of a scalar integer field, or the
// field's specified default when absent.
func (e PowerLevelsEvent) IntOrDefault(field PowerLevelField, rules roomversion.AuthRules) (int64, error) {
	value, err := e.Int(field, rules)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return field.Default(), nil
	}
	return *value, nil
}

// IntFields returns every scalar integer field present in the content.
func (e PowerLevelsEvent) IntFields(rules roomversion.AuthRules) (map[PowerLevelField]int64, error) {
	fields := make(map[PowerLevelField]int64)
	for _, field := range PowerLevelFields {
		value, err := e.Int(field, rules)
		if err != nil {
			return nil, err
		}
		if value != nil {
			fields[field] = *value
		}
	}
	return fields, nil
}

// Events returns the per-event-type power requirements, or nil when
// the field is absent.
func (e PowerLevelsEvent) Events(rules roomversion.AuthRules) (map[string]int64, error) {
	return e.intMap("events", rules, false)
}

// Notifications returns the notification power requirements, or nil
// when the field is absent.
func (e PowerLevelsEvent) Notifications(rules roomversion.AuthRules) (map[string]int64, error) {
	return e.intMap("notifications", rules, false)
}

// Users returns the per-user power levels, or nil when the field is
// absent. Keys must be valid user IDs.
func (e PowerLevelsEvent) Users(rules roomversion.AuthRules) (map[string]int64, error) {
	return e.intMap("users", rules, true)
}

func (e PowerLevelsEvent) intMap(field string, rules roomversion.AuthRules, userKeys bool) (map[string]int64, error) {
	content, err := e.object()
	if err != nil {
		return nil, err
	}
	raw, ok := content[field]
	if !ok {
		return nil, nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unexpected format of `%s` field in m.room.power_levels content: %w", field, err)
	}
	values := make(map[string]int64, len(entries))
	for key, rawValue := range entries {
		if userKeys {
			if _, err := ref.ParseUserID(key); err != nil {
				return nil, fmt.Errorf("`%s` field in m.room.power_levels content has non-user-ID key %q", field, key)
			}
		}
		value, err := parsePowerValue(rawValue, rules.IntegerPowerLevels)
		if err != nil {
			return nil, fmt.Errorf("unexpected format of `%s.%s` in m.room.power_levels content: %w", field, key, err)
		}
		values[key] = value
	}
	return values, nil
}

// UserLevel returns the power level this event assigns to the user,
// falling back to users_default. Creator privilege is layered on by
// the package-level [UserPowerLevel]; this accessor reads the event
// alone.
func (e PowerLevelsEvent) UserLevel(user ref.UserID, rules roomversion.AuthRules) (int64, error) {
	users, err := e.Users(rules)
	if err != nil {
		return 0, err
	}
	if level, ok := users[user.String()]; ok {
		return level, nil
	}
	return e.IntOrDefault(FieldUsersDefault, rules)
}

// EventLevel returns the power level required to send an event of the
// given type, consulting the events map and falling back to
// state_default or events_default by state-key presence.
func (e PowerLevelsEvent) EventLevel(eventType string, hasStateKey bool, rules roomversion.AuthRules) (int64, error) {
	events, err := e.Events(rules)
	if err != nil {
		return 0, err
	}
	if level, ok := events[eventType]; ok {
		return level, nil
	}
	if hasStateKey {
		return e.IntOrDefault(FieldStateDefault, rules)
	}
	return e.IntOrDefault(FieldEventsDefault, rules)
}

// UserPowerLevel computes a user's effective power level given the
// room's current power-levels event (nil when the room has none) and
// its creators. Creators are infinitely powerful under the
// explicit-creator-privilege rule; with no power-levels event at all,
// creators default to 100 and everyone else to users_default.
func UserPowerLevel(pl *PowerLevelsEvent, user ref.UserID, creators []ref.UserID, rules roomversion.AuthRules) (UserPower, error) {
	if rules.ExplicitlyPrivilegeRoomCreators && IsCreator(creators, user) {
		return InfinitePower(), nil
	}
	if pl != nil {
		level, err := pl.UserLevel(user, rules)
		if err != nil {
			return UserPower{}, err
		}
		return Power(level), nil
	}
	if IsCreator(creators, user) {
		return Power(defaultCreatorPowerLevel), nil
	}
	return Power(FieldUsersDefault.Default()), nil
}

// PowerLevelIntOrDefault returns a scalar field of the room's current
// power-levels event, or the field default when the room has none.
func PowerLevelIntOrDefault(pl *PowerLevelsEvent, field PowerLevelField, rules roomversion.AuthRules) (int64, error) {
	if pl == nil {
		return field.Default(), nil
	}
	return pl.IntOrDefault(field, rules)
}

// EventPowerLevel returns the power level required to send an event of
// the given type under the room's current power-levels event, or the
// per-kind default when the room has none.
func EventPowerLevel(pl *PowerLevelsEvent, eventType string, hasStateKey bool, rules roomversion.AuthRules) (int64, error) {
	if pl == nil {
		if hasStateKey {
			return FieldStateDefault.Default(), nil
		}
		return FieldEventsDefault.Default(), nil
	}
	return pl.EventLevel(eventType, hasStateKey, rules)
}
