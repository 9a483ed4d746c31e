// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hearth-im/hearth/lib/ref"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing room version",
			content: "room_id: \"!r:x\"\nforks: [[]]\n",
		},
		{
			name:    "missing room id",
			content: "room_version: \"10\"\nforks: [[]]\n",
		},
		{
			name:    "no forks",
			content: "room_version: \"10\"\nroom_id: \"!r:x\"\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := loadScenario(writeScenario(t, test.content))
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestScenarioUnknownRoomVersion(t *testing.T) {
	s, err := loadScenario(writeScenario(t,
		"room_version: \"99\"\nroom_id: \"!r:x\"\nforks: [[]]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.rules(); err == nil {
		t.Fatal("expected unknown room version error")
	}
}

func TestScenarioEventConversion(t *testing.T) {
	s, err := loadScenario("testdata/ban_scenario.yaml")
	if err != nil {
		t.Fatal(err)
	}
	pdus, err := s.pdus()
	if err != nil {
		t.Fatal(err)
	}
	if len(pdus) != 7 {
		t.Fatalf("got %d events, want 7", len(pdus))
	}

	byID := make(map[string]int)
	for i, pdu := range pdus {
		byID[pdu.ID().String()] = i
	}
	ban := pdus[byID["$bob-ban:example.com"]]
	if ban.Sender().String() != "@alice:example.com" {
		t.Errorf("ban sender = %s, want @alice:example.com", ban.Sender())
	}
	stateKey, ok := ban.StateKey()
	if !ok || stateKey != "@bob:example.com" {
		t.Errorf("ban state key = %q (%v), want @bob:example.com", stateKey, ok)
	}
	if got := len(ban.AuthEvents()); got != 4 {
		t.Errorf("ban has %d auth events, want 4", got)
	}

	create := pdus[byID["$create:example.com"]]
	if stateKey, ok := create.StateKey(); !ok || stateKey != "" {
		t.Errorf("create state key = %q (%v), want empty present", stateKey, ok)
	}
}

func TestBuildForksAuthChains(t *testing.T) {
	s, err := loadScenario("testdata/ban_scenario.yaml")
	if err != nil {
		t.Fatal(err)
	}
	store, closeStore, err := populateStore(t.Context(), s, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	_, authSets, err := buildForks(t.Context(), s, store)
	if err != nil {
		t.Fatal(err)
	}

	// The first fork's chain must reach $bob-join:example.com through
	// the ban event even though the join is not part of that fork's
	// state.
	if _, ok := authSets[0][ref.MustParseEventID("$bob-join:example.com")]; !ok {
		t.Error("fork 0 auth chain missing $bob-join:example.com")
	}
}

func TestBuildForksUnknownEvent(t *testing.T) {
	s, err := loadScenario(writeScenario(t,
		"room_version: \"10\"\nroom_id: \"!r:x\"\nforks: [[\"$missing:x\"]]\n"))
	if err != nil {
		t.Fatal(err)
	}
	store, closeStore, err := populateStore(t.Context(), s, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	if _, _, err := buildForks(t.Context(), s, store); err == nil {
		t.Fatal("expected an error for a fork naming an unknown event")
	}
}
