// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package roomversion

// HydraV11 is the identifier of the "room IDs as hashes" proposal
// room version.
const HydraV11 = "org.matrix.hydra.11"

// Get returns the rule bundle for the given room version identifier.
// ok is false for unrecognized versions; callers must reject events
// from rooms whose version they do not recognize.
func Get(version string) (Rules, bool) {
	rules, ok := registry[version]
	return rules, ok
}

// Known lists the recognized room version identifiers.
func Known() []string {
	return []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", HydraV11}
}

var registry = buildRegistry()

func buildRegistry() map[string]Rules {
	// Room version 1 baseline. Each later version edits a copy.
	v1 := Rules{
		Version:    "1",
		StateResV2: false,
		Authorization: AuthRules{
			SpecialCaseAliases:   true,
			SpecialCaseRedaction: true,
		},
		StateRes: StateResRules{},
	}

	v2 := v1
	v2.Version = "2"
	v2.StateResV2 = true
	v2.StateRes.BeginWithEmptyStateMap = true

	// Versions 3-5 only change event ID formats and signature
	// handling, which are outside the rules modeled here.
	v3 := v2
	v3.Version = "3"
	v3.Authorization.SpecialCaseRedaction = false

	v4 := v3
	v4.Version = "4"

	v5 := v4
	v5.Version = "5"

	v6 := v5
	v6.Version = "6"
	v6.Authorization.SpecialCaseAliases = false
	v6.Authorization.LimitNotificationsPowerLevels = true

	v7 := v6
	v7.Version = "7"
	v7.Authorization.KnockJoinRule = true

	v8 := v7
	v8.Version = "8"
	v8.Authorization.RestrictedJoinRule = true

	v9 := v8
	v9.Version = "9"

	v10 := v9
	v10.Version = "10"
	v10.Authorization.IntegerPowerLevels = true
	v10.Authorization.KnockRestrictedJoinRule = true

	v11 := v10
	v11.Version = "11"
	v11.Authorization.UseRoomCreateSender = true

	hydra := v11
	hydra.Version = HydraV11
	hydra.Authorization.ExplicitlyPrivilegeRoomCreators = true
	hydra.Authorization.AdditionalRoomCreators = true
	hydra.Authorization.RoomCreateEventIDAsRoomID = true
	hydra.StateRes.ConsiderConflictedSubgraph = true
	hydra.StateRes.BeginWithEmptyStateMap = false

	return map[string]Rules{
		"1": v1, "2": v2, "3": v3, "4": v4, "5": v5, "6": v6,
		"7": v7, "8": v8, "9": v9, "10": v10, "11": v11,
		HydraV11: hydra,
	}
}
