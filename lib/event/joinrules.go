// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"
)

// JoinRulesEvent is a typed view over an m.room.join_rules event.
type JoinRulesEvent struct {
	Event
}

// NewJoinRulesEvent wraps the given event. The caller is responsible
// for having checked the event type.
func NewJoinRulesEvent(ev Event) JoinRulesEvent {
	return JoinRulesEvent{Event: ev}
}

// JoinRule returns the room's join rule.
func (e JoinRulesEvent) JoinRule() (JoinRule, error) {
	var content struct {
		JoinRule *JoinRule `json:"join_rule"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return "", fmt.Errorf("invalid `join_rule` field in m.room.join_rules event: %w", err)
	}
	if content.JoinRule == nil || *content.JoinRule == "" {
		return "", fmt.Errorf("missing `join_rule` field in m.room.join_rules event")
	}
	return *content.JoinRule, nil
}
