// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UserPower is a user's effective power level. Room creators are
// infinitely powerful under the explicit-creator-privilege rule, which
// no integer encodes, so the value carries an explicit flag.
type UserPower struct {
	// Infinite marks a room creator under the
	// explicit-creator-privilege rule. Infinite outranks every
	// integer level, including another creator's Infinite by no
	// margin: two Infinite values compare equal.
	Infinite bool

	// Level is the integer power level. Ignored when Infinite.
	Level int64
}

// Power wraps an integer power level.
func Power(level int64) UserPower {
	return UserPower{Level: level}
}

// InfinitePower is the creator power level under the
// explicit-creator-privilege rule.
func InfinitePower() UserPower {
	return UserPower{Infinite: true}
}

// AtLeast reports whether the power meets the integer threshold n.
func (p UserPower) AtLeast(n int64) bool {
	return p.Infinite || p.Level >= n
}

// Greater reports whether the power strictly exceeds the integer
// threshold n.
func (p UserPower) Greater(n int64) bool {
	return p.Infinite || p.Level > n
}

// Cmp compares two user powers: -1 if p < q, 0 if equal, 1 if p > q.
func (p UserPower) Cmp(q UserPower) int {
	switch {
	case p.Infinite && q.Infinite:
		return 0
	case p.Infinite:
		return 1
	case q.Infinite:
		return -1
	case p.Level < q.Level:
		return -1
	case p.Level > q.Level:
		return 1
	default:
		return 0
	}
}

// String renders the power level for log messages.
func (p UserPower) String() string {
	if p.Infinite {
		return "infinite"
	}
	return strconv.FormatInt(p.Level, 10)
}

// PowerLevelField names a scalar integer field in m.room.power_levels
// content.
type PowerLevelField string

// The scalar power-level fields.
const (
	FieldUsersDefault  PowerLevelField = "users_default"
	FieldEventsDefault PowerLevelField = "events_default"
	FieldStateDefault  PowerLevelField = "state_default"
	FieldBan           PowerLevelField = "ban"
	FieldRedact        PowerLevelField = "redact"
	FieldKick          PowerLevelField = "kick"
	FieldInvite        PowerLevelField = "invite"
)

// PowerLevelFields lists every scalar integer field.
var PowerLevelFields = []PowerLevelField{
	FieldUsersDefault, FieldEventsDefault, FieldStateDefault,
	FieldBan, FieldRedact, FieldKick, FieldInvite,
}

// Default returns the value a power-levels event implies for the field
// when the field is absent.
func (f PowerLevelField) Default() int64 {
	switch f {
	case FieldUsersDefault, FieldEventsDefault, FieldInvite:
		return 0
	default:
		return 50
	}
}

// parsePowerValue decodes one power-level number. Strict mode (room
// version 10 onward) requires a true JSON integer. Permissive mode
// additionally accepts floats with no fractional part and strings
// holding a base-10 integer with an optional leading '+', which older
// clients emitted and older room versions therefore accept forever.
func parsePowerValue(raw json.RawMessage, strict bool) (int64, error) {
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return 0, fmt.Errorf("not valid JSON: %w", err)
	}

	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		if strict {
			return 0, fmt.Errorf("%q is not an integer", v.String())
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not an integer", v.String())
		}
		return int64(f), nil
	case string:
		if strict {
			return 0, fmt.Errorf("string %q where integer required", v)
		}
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "+"))
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("string %q does not hold an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected JSON type %T where integer required", value)
	}
}
