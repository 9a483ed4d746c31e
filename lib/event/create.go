// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// CreateEvent is a typed view over an m.room.create event. Fields are
// parsed from the raw content on demand.
type CreateEvent struct {
	Event
}

// NewCreateEvent wraps the given event. The caller is responsible for
// having checked the event type.
func NewCreateEvent(ev Event) CreateEvent {
	return CreateEvent{Event: ev}
}

// RoomVersion returns the room version declared in the create content,
// defaulting to "1" when absent.
func (e CreateEvent) RoomVersion() (string, error) {
	var content struct {
		RoomVersion *string `json:"room_version"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return "", fmt.Errorf("invalid `room_version` field in m.room.create event: %w", err)
	}
	if content.RoomVersion == nil {
		return "1", nil
	}
	return *content.RoomVersion, nil
}

// Federate reports whether the room allows federation (the m.federate
// content flag, default true).
func (e CreateEvent) Federate() (bool, error) {
	var content struct {
		Federate *bool `json:"m.federate"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return false, fmt.Errorf("invalid `m.federate` field in m.room.create event: %w", err)
	}
	if content.Federate == nil {
		return true, nil
	}
	return *content.Federate, nil
}

// HasCreator reports whether the content carries a `creator` field,
// which room versions 1-10 require.
func (e CreateEvent) HasCreator() (bool, error) {
	var content struct {
		Creator *json.RawMessage `json:"creator"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return false, fmt.Errorf("invalid `creator` field in m.room.create event: %w", err)
	}
	return content.Creator != nil, nil
}

// Creator returns the room's primary creator: the create event's
// sender under the use-create-sender rule, otherwise the content's
// `creator` field.
func (e CreateEvent) Creator(rules roomversion.AuthRules) (ref.UserID, error) {
	if rules.UseRoomCreateSender {
		return e.Sender(), nil
	}
	var content struct {
		Creator ref.UserID `json:"creator"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return ref.UserID{}, fmt.Errorf("missing or invalid `creator` field in m.room.create event: %w", err)
	}
	if content.Creator.IsZero() {
		return ref.UserID{}, fmt.Errorf("missing `creator` field in m.room.create event")
	}
	return content.Creator, nil
}

// AdditionalCreators returns the deduplicated `additional_creators`
// list when the rules honor it, excluding the primary creator.
func (e CreateEvent) AdditionalCreators(rules roomversion.AuthRules) ([]ref.UserID, error) {
	if !rules.AdditionalRoomCreators {
		return nil, nil
	}
	var content struct {
		AdditionalCreators []ref.UserID `json:"additional_creators"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return nil, fmt.Errorf("invalid `additional_creators` field in m.room.create event: %w", err)
	}
	slices.SortFunc(content.AdditionalCreators, func(a, b ref.UserID) int {
		return strings.Compare(a.String(), b.String())
	})
	return slices.Compact(content.AdditionalCreators), nil
}

// Creators returns every creator of the room: the primary creator
// followed by any additional creators the rules honor.
func (e CreateEvent) Creators(rules roomversion.AuthRules) ([]ref.UserID, error) {
	primary, err := e.Creator(rules)
	if err != nil {
		return nil, err
	}
	additional, err := e.AdditionalCreators(rules)
	if err != nil {
		return nil, err
	}
	creators := make([]ref.UserID, 0, 1+len(additional))
	creators = append(creators, primary)
	for _, creator := range additional {
		if creator != primary {
			creators = append(creators, creator)
		}
	}
	return creators, nil
}

// IsCreator reports whether user is among the room's creators.
func IsCreator(creators []ref.UserID, user ref.UserID) bool {
	return slices.Contains(creators, user)
}
