// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "testing"

func TestParseUserID(t *testing.T) {
	valid := []string{
		"@alice:example.com",
		"@alice:example.com:8448",
		"@a:b",
		"@weird/local.part=x:matrix.org",
	}
	for _, raw := range valid {
		u, err := ParseUserID(raw)
		if err != nil {
			t.Errorf("ParseUserID(%q): unexpected error: %v", raw, err)
			continue
		}
		if u.String() != raw {
			t.Errorf("ParseUserID(%q).String() = %q", raw, u.String())
		}
	}

	invalid := []string{
		"",
		"alice:example.com",
		"@:example.com",
		"@alice",
		"@alice:",
		"#alice:example.com",
	}
	for _, raw := range invalid {
		if _, err := ParseUserID(raw); err == nil {
			t.Errorf("ParseUserID(%q): expected error, got none", raw)
		}
	}
}

func TestUserIDParts(t *testing.T) {
	u := MustParseUserID("@alice:example.com")
	if got := u.Localpart(); got != "alice" {
		t.Errorf("Localpart() = %q, want %q", got, "alice")
	}
	if got := u.Server(); got != "example.com" {
		t.Errorf("Server() = %q, want %q", got, "example.com")
	}
}

func TestParseEventID(t *testing.T) {
	modern, err := ParseEventID("$Rqnc-F-dvnEYJTyHq_iKxU2bZ1CI92-kuZq3a5lr5Zg")
	if err != nil {
		t.Fatalf("ParseEventID: %v", err)
	}
	if _, ok := modern.Server(); ok {
		t.Error("modern event ID should have no server part")
	}

	legacy := MustParseEventID("$12345:example.com")
	server, ok := legacy.Server()
	if !ok || server != "example.com" {
		t.Errorf("legacy Server() = %q, %v; want example.com, true", server, ok)
	}

	for _, raw := range []string{"", "$", "abc", "!abc:x"} {
		if _, err := ParseEventID(raw); err == nil {
			t.Errorf("ParseEventID(%q): expected error, got none", raw)
		}
	}
}

func TestParseRoomID(t *testing.T) {
	classic := MustParseRoomID("!room:example.com")
	server, ok := classic.Server()
	if !ok || server != "example.com" {
		t.Errorf("classic Server() = %q, %v; want example.com, true", server, ok)
	}
	if _, err := classic.AsEventID(); err == nil {
		t.Error("AsEventID on a classic room ID should fail")
	}

	hashed := MustParseRoomID("!31hneApxJ_1o-63DmFrpeqnkFfWppnzWso1JvH3ogLM")
	if _, ok := hashed.Server(); ok {
		t.Error("hash-derived room ID should have no server part")
	}
	eventID, err := hashed.AsEventID()
	if err != nil {
		t.Fatalf("AsEventID: %v", err)
	}
	if eventID.String() != "$31hneApxJ_1o-63DmFrpeqnkFfWppnzWso1JvH3ogLM" {
		t.Errorf("AsEventID() = %q", eventID.String())
	}

	roundTrip, err := eventID.AsRoomID()
	if err != nil {
		t.Fatalf("AsRoomID: %v", err)
	}
	if roundTrip != hashed {
		t.Errorf("AsRoomID round trip = %q, want %q", roundTrip.String(), hashed.String())
	}

	for _, raw := range []string{"", "!", "room:example.com", "!:x"} {
		if _, err := ParseRoomID(raw); err == nil {
			t.Errorf("ParseRoomID(%q): expected error, got none", raw)
		}
	}
}

func TestParseServerName(t *testing.T) {
	for _, raw := range []string{"example.com", "matrix.example.com:8448", "localhost"} {
		if _, err := ParseServerName(raw); err != nil {
			t.Errorf("ParseServerName(%q): unexpected error: %v", raw, err)
		}
	}
	for _, raw := range []string{"", "with space", "@sigil", "#sigil"} {
		if _, err := ParseServerName(raw); err == nil {
			t.Errorf("ParseServerName(%q): expected error, got none", raw)
		}
	}
}

func TestMarshalText(t *testing.T) {
	u := MustParseUserID("@alice:example.com")
	data, err := u.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back UserID
	if err := back.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != u {
		t.Errorf("round trip = %q, want %q", back.String(), u.String())
	}

	var zero UserID
	if err := zero.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil): %v", err)
	}
	if !zero.IsZero() {
		t.Error("UnmarshalText(nil) should produce the zero value")
	}
}
