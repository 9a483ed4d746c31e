// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package roomversion

import "testing"

func TestGetKnownVersions(t *testing.T) {
	for _, version := range Known() {
		rules, ok := Get(version)
		if !ok {
			t.Errorf("Get(%q): not found", version)
			continue
		}
		if rules.Version != version {
			t.Errorf("Get(%q).Version = %q", version, rules.Version)
		}
	}
	if _, ok := Get("999"); ok {
		t.Error("Get(\"999\") should not be recognized")
	}
}

func TestRuleProgression(t *testing.T) {
	v1, _ := Get("1")
	if v1.StateResV2 {
		t.Error("v1 must not use state resolution v2")
	}
	if !v1.Authorization.SpecialCaseRedaction || !v1.Authorization.SpecialCaseAliases {
		t.Error("v1 must special-case redactions and aliases")
	}

	v6, _ := Get("6")
	if v6.Authorization.SpecialCaseAliases {
		t.Error("v6 must not special-case aliases")
	}
	if !v6.Authorization.LimitNotificationsPowerLevels {
		t.Error("v6 must bound the notifications power levels")
	}

	v10, _ := Get("10")
	if !v10.Authorization.IntegerPowerLevels {
		t.Error("v10 must require integer power levels")
	}
	if !v10.Authorization.KnockRestrictedJoinRule {
		t.Error("v10 must support knock_restricted")
	}

	v11, _ := Get("11")
	if !v11.Authorization.UseRoomCreateSender {
		t.Error("v11 must take the creator from the create sender")
	}
	if v11.Authorization.RoomCreateEventIDAsRoomID {
		t.Error("v11 must not derive room IDs from create events")
	}
	if !v11.StateRes.BeginWithEmptyStateMap {
		t.Error("v11 iterative auth checks start from an empty map")
	}

	hydra, _ := Get(HydraV11)
	auth := hydra.Authorization
	if !auth.ExplicitlyPrivilegeRoomCreators || !auth.AdditionalRoomCreators || !auth.RoomCreateEventIDAsRoomID {
		t.Error("hydra creator rules not set")
	}
	if !hydra.StateRes.ConsiderConflictedSubgraph {
		t.Error("hydra must consider the conflicted subgraph")
	}
	if hydra.StateRes.BeginWithEmptyStateMap {
		t.Error("hydra iterative auth checks start from the unconflicted map")
	}
}
