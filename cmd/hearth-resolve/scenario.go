// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
	"github.com/hearth-im/hearth/stateres"
)

// scenario is the YAML input format: the room, its events, and the
// fork states to resolve.
type scenario struct {
	// RoomVersion selects the rule set, e.g. "10".
	RoomVersion string `yaml:"room_version"`

	// RoomID is the room all events belong to.
	RoomID string `yaml:"room_id"`

	// Events lists every event the scenario knows about, state and
	// non-state alike.
	Events []scenarioEvent `yaml:"events"`

	// Forks lists, per fork, the event IDs making up that fork's
	// state. The state tuples come from the named events themselves.
	Forks [][]string `yaml:"forks"`
}

type scenarioEvent struct {
	EventID        string         `yaml:"event_id"`
	Sender         string         `yaml:"sender"`
	Type           string         `yaml:"type"`
	StateKey       *string        `yaml:"state_key"`
	Content        map[string]any `yaml:"content"`
	AuthEvents     []string       `yaml:"auth_events"`
	PrevEvents     []string       `yaml:"prev_events"`
	OriginServerTS int64          `yaml:"origin_server_ts"`
	Redacts        string         `yaml:"redacts"`
	Rejected       bool           `yaml:"rejected"`
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if s.RoomVersion == "" {
		return nil, fmt.Errorf("scenario: room_version is required")
	}
	if s.RoomID == "" {
		return nil, fmt.Errorf("scenario: room_id is required")
	}
	if len(s.Forks) == 0 {
		return nil, fmt.Errorf("scenario: at least one fork is required")
	}
	return &s, nil
}

func (s *scenario) rules() (roomversion.Rules, error) {
	rules, ok := roomversion.Get(s.RoomVersion)
	if !ok {
		return roomversion.Rules{}, fmt.Errorf("scenario: unknown room version %q", s.RoomVersion)
	}
	return rules, nil
}

// pdus converts the scenario events. Content maps re-encode as JSON,
// which sorts object keys and so keeps the stored bytes stable across
// runs.
func (s *scenario) pdus() ([]*event.PDU, error) {
	roomID, err := ref.ParseRoomID(s.RoomID)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	pdus := make([]*event.PDU, 0, len(s.Events))
	for _, se := range s.Events {
		id, err := ref.ParseEventID(se.EventID)
		if err != nil {
			return nil, fmt.Errorf("scenario event: %w", err)
		}
		sender, err := ref.ParseUserID(se.Sender)
		if err != nil {
			return nil, fmt.Errorf("scenario event %s: %w", se.EventID, err)
		}
		content, err := json.Marshal(se.Content)
		if err != nil {
			return nil, fmt.Errorf("scenario event %s: encoding content: %w", se.EventID, err)
		}
		authEvents, err := parseEventIDs(se.AuthEvents)
		if err != nil {
			return nil, fmt.Errorf("scenario event %s: auth_events: %w", se.EventID, err)
		}
		prevEvents, err := parseEventIDs(se.PrevEvents)
		if err != nil {
			return nil, fmt.Errorf("scenario event %s: prev_events: %w", se.EventID, err)
		}
		var redacts ref.EventID
		if se.Redacts != "" {
			redacts, err = ref.ParseEventID(se.Redacts)
			if err != nil {
				return nil, fmt.Errorf("scenario event %s: redacts: %w", se.EventID, err)
			}
		}

		pdus = append(pdus, &event.PDU{
			EventID:      id,
			Room:         roomID,
			SenderID:     sender,
			EventType:    se.Type,
			State:        se.StateKey,
			RawContent:   content,
			AuthEventIDs: authEvents,
			PrevEventIDs: prevEvents,
			Timestamp:    se.OriginServerTS,
			RedactsID:    redacts,
			RejectedFlag: se.Rejected,
		})
	}
	return pdus, nil
}

func parseEventIDs(raw []string) ([]ref.EventID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]ref.EventID, 0, len(raw))
	for _, r := range raw {
		id, err := ref.ParseEventID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildForks turns the scenario's fork event-ID lists into state maps
// and computes each fork's auth chain from the store.
func buildForks(ctx context.Context, s *scenario, store stateres.Store) ([]stateres.StateMap, []stateres.AuthSet, error) {
	stateMaps := make([]stateres.StateMap, 0, len(s.Forks))
	authSets := make([]stateres.AuthSet, 0, len(s.Forks))

	for i, fork := range s.Forks {
		stateMap := make(stateres.StateMap, len(fork))
		authSet := make(stateres.AuthSet)
		for _, rawID := range fork {
			id, err := ref.ParseEventID(rawID)
			if err != nil {
				return nil, nil, fmt.Errorf("fork %d: %w", i, err)
			}
			ev, err := store.Event(ctx, id)
			if err != nil {
				return nil, nil, fmt.Errorf("fork %d: %w", i, err)
			}
			tuple, ok := event.Tuple(ev)
			if !ok {
				return nil, nil, fmt.Errorf("fork %d: event %s has no state key", i, id)
			}
			stateMap[tuple] = id
			if err := addAuthChain(ctx, authSet, ev, store); err != nil {
				return nil, nil, fmt.Errorf("fork %d: %w", i, err)
			}
		}
		stateMaps = append(stateMaps, stateMap)
		authSets = append(authSets, authSet)
	}
	return stateMaps, authSets, nil
}

func addAuthChain(ctx context.Context, authSet stateres.AuthSet, ev event.Event, store stateres.Store) error {
	for _, authID := range ev.AuthEvents() {
		if _, ok := authSet[authID]; ok {
			continue
		}
		authSet[authID] = struct{}{}
		authEvent, err := store.Event(ctx, authID)
		if err != nil {
			return fmt.Errorf("auth chain of %s: %w", ev.ID(), err)
		}
		if err := addAuthChain(ctx, authSet, authEvent, store); err != nil {
			return err
		}
	}
	return nil
}
