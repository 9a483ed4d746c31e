// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package eventauth

import (
	"context"

	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
)

// checkRoomMember runs the m.room.member state machine: the requested
// transition of the target user (the state key) is allowed or rejected
// based on the target's current membership, the sender's standing, and
// the room's join rule.
func checkRoomMember(ctx context.Context, member event.MemberEvent, rules roomversion.AuthRules, createEvent event.CreateEvent, state StateFetcher) error {
	stateKey, ok := member.StateKey()
	if !ok {
		return rejectf("missing state_key field for m.room.member event")
	}
	target, err := ref.ParseUserID(stateKey)
	if err != nil {
		return rejectf("state_key of m.room.member event is not a valid user ID: %v", err)
	}
	membership, err := member.Membership()
	if err != nil {
		return err
	}

	creators, err := createEvent.Creators(rules)
	if err != nil {
		return err
	}
	powerLevels, err := fetchPowerLevels(ctx, state)
	if err != nil {
		return err
	}
	targetMembership, err := fetchMembership(ctx, state, target)
	if err != nil {
		return err
	}

	sender := member.Sender()

	switch membership {
	case event.MembershipJoin:
		return checkMemberJoin(ctx, member, rules, createEvent, creators, powerLevels, sender, target, targetMembership, state)

	case event.MembershipInvite:
		return checkMemberInvite(ctx, member, rules, creators, powerLevels, sender, target, targetMembership, state)

	case event.MembershipLeave:
		return checkMemberLeave(ctx, rules, creators, powerLevels, sender, target, targetMembership, state)

	case event.MembershipBan:
		return checkMemberBan(ctx, rules, creators, powerLevels, sender, target, state)

	case event.MembershipKnock:
		return checkMemberKnock(ctx, rules, sender, target, state)

	default:
		return rejectf("unknown membership %q in m.room.member event", membership)
	}
}

func checkMemberJoin(
	ctx context.Context,
	member event.MemberEvent,
	rules roomversion.AuthRules,
	createEvent event.CreateEvent,
	creators []ref.UserID,
	powerLevels *event.PowerLevelsEvent,
	sender, target ref.UserID,
	targetMembership event.Membership,
	state StateFetcher,
) error {
	// The creator's first join rides directly on the create event,
	// before any join rule or power levels exist.
	prevEvents := member.PrevEvents()
	if len(prevEvents) == 1 && prevEvents[0] == createEvent.ID() && event.IsCreator(creators, target) {
		return nil
	}

	if sender != target {
		return rejectf("sender cannot join on behalf of another user")
	}
	if targetMembership == event.MembershipBan {
		return rejectf("banned user cannot join")
	}

	joinRule, err := fetchJoinRule(ctx, state)
	if err != nil {
		return err
	}

	switch joinRule {
	case event.JoinRulePublic:
		return nil

	case event.JoinRuleInvite:
		if targetMembership == event.MembershipInvite || targetMembership == event.MembershipJoin {
			return nil
		}
		return rejectf("user is not invited to this invite-only room")

	case event.JoinRuleKnock:
		if !rules.KnockJoinRule {
			return rejectf("join rule %q is not supported in this room version", joinRule)
		}
		if targetMembership == event.MembershipInvite || targetMembership == event.MembershipJoin {
			return nil
		}
		return rejectf("user is not invited to this knock room")

	case event.JoinRuleRestricted, event.JoinRuleKnockRestricted:
		if !rules.RestrictedJoinRule ||
			(joinRule == event.JoinRuleKnockRestricted && !rules.KnockRestrictedJoinRule) {
			return rejectf("join rule %q is not supported in this room version", joinRule)
		}
		if targetMembership == event.MembershipInvite || targetMembership == event.MembershipJoin {
			return nil
		}
		return checkRestrictedJoin(ctx, member, rules, creators, powerLevels, state)

	default:
		return rejectf("room's join rule %q does not allow joining", joinRule)
	}
}

// checkRestrictedJoin validates a join into a restricted room: the
// event must name a current member with invite power who authorized
// it. The authorizing server's signature on the event is verified
// upstream, before the event reaches the authorization rules.
func checkRestrictedJoin(
	ctx context.Context,
	member event.MemberEvent,
	rules roomversion.AuthRules,
	creators []ref.UserID,
	powerLevels *event.PowerLevelsEvent,
	state StateFetcher,
) error {
	authorizer, err := member.JoinAuthorisedViaUsersServer()
	if err != nil {
		return err
	}
	if authorizer.IsZero() {
		return rejectf("restricted join carries no join_authorised_via_users_server")
	}

	authorizerMembership, err := fetchMembership(ctx, state, authorizer)
	if err != nil {
		return err
	}
	if authorizerMembership != event.MembershipJoin {
		return rejectf("user %s authorized the restricted join but is not in the room", authorizer)
	}

	authorizerPower, err := event.UserPowerLevel(powerLevels, authorizer, creators, rules)
	if err != nil {
		return err
	}
	inviteLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldInvite, rules)
	if err != nil {
		return err
	}
	if !authorizerPower.AtLeast(inviteLevel) {
		return rejectf("user %s authorized the restricted join but cannot invite", authorizer)
	}
	return nil
}

func checkMemberInvite(
	ctx context.Context,
	member event.MemberEvent,
	rules roomversion.AuthRules,
	creators []ref.UserID,
	powerLevels *event.PowerLevelsEvent,
	sender, target ref.UserID,
	targetMembership event.Membership,
	state StateFetcher,
) error {
	tpi, err := member.ThirdPartyInvite()
	if err != nil {
		return err
	}
	if tpi != nil {
		return checkThirdPartyInvite(ctx, tpi, sender, target, targetMembership, state)
	}

	senderMembership, err := fetchMembership(ctx, state, sender)
	if err != nil {
		return err
	}
	if senderMembership != event.MembershipJoin {
		return rejectf("sender cannot invite without being in the room")
	}
	if targetMembership == event.MembershipJoin || targetMembership == event.MembershipBan {
		return rejectf("cannot invite a user who is %s", targetMembership)
	}

	senderPower, err := event.UserPowerLevel(powerLevels, sender, creators, rules)
	if err != nil {
		return err
	}
	inviteLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldInvite, rules)
	if err != nil {
		return err
	}
	if !senderPower.AtLeast(inviteLevel) {
		return rejectf("sender power %s is below the invite level %d", senderPower, inviteLevel)
	}
	return nil
}

// checkThirdPartyInvite validates an invite that exchanges a
// third-party invite token for room membership. Signature checks on
// the signed object happen upstream.
func checkThirdPartyInvite(
	ctx context.Context,
	tpi *event.ThirdPartyInvite,
	sender, target ref.UserID,
	targetMembership event.Membership,
	state StateFetcher,
) error {
	if targetMembership == event.MembershipBan {
		return rejectf("cannot invite a banned user")
	}

	mxid, err := tpi.MXID()
	if err != nil {
		return err
	}
	if mxid != target.String() {
		return rejectf("third-party invite was issued to %s, not to the invited user", mxid)
	}
	token, err := tpi.Token()
	if err != nil {
		return err
	}

	inviteEvent, err := fetchThirdPartyInvite(ctx, state, token)
	if err != nil {
		return err
	}
	if inviteEvent == nil {
		return rejectf("no m.room.third_party_invite event in current state for this token")
	}
	if inviteEvent.Sender() != sender {
		return rejectf("sender does not match the sender of the m.room.third_party_invite event")
	}
	return nil
}

func checkMemberLeave(
	ctx context.Context,
	rules roomversion.AuthRules,
	creators []ref.UserID,
	powerLevels *event.PowerLevelsEvent,
	sender, target ref.UserID,
	targetMembership event.Membership,
	state StateFetcher,
) error {
	if sender == target {
		switch targetMembership {
		case event.MembershipJoin, event.MembershipInvite:
			return nil
		case event.MembershipKnock:
			if rules.KnockJoinRule {
				return nil
			}
		}
		return rejectf("user cannot leave from membership %q", targetMembership)
	}

	senderMembership, err := fetchMembership(ctx, state, sender)
	if err != nil {
		return err
	}
	if senderMembership != event.MembershipJoin {
		return rejectf("sender cannot kick without being in the room")
	}

	senderPower, err := event.UserPowerLevel(powerLevels, sender, creators, rules)
	if err != nil {
		return err
	}

	// Lifting a ban needs ban power, not just kick power.
	if targetMembership == event.MembershipBan {
		banLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldBan, rules)
		if err != nil {
			return err
		}
		if !senderPower.AtLeast(banLevel) {
			return rejectf("sender power %s is below the ban level %d required to unban", senderPower, banLevel)
		}
	}

	kickLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldKick, rules)
	if err != nil {
		return err
	}
	targetPower, err := event.UserPowerLevel(powerLevels, target, creators, rules)
	if err != nil {
		return err
	}
	if senderPower.AtLeast(kickLevel) && targetPower.Cmp(senderPower) < 0 {
		return nil
	}
	return rejectf("sender power %s cannot kick a user with power %s (kick level %d)", senderPower, targetPower, kickLevel)
}

func checkMemberBan(
	ctx context.Context,
	rules roomversion.AuthRules,
	creators []ref.UserID,
	powerLevels *event.PowerLevelsEvent,
	sender, target ref.UserID,
	state StateFetcher,
) error {
	senderMembership, err := fetchMembership(ctx, state, sender)
	if err != nil {
		return err
	}
	if senderMembership != event.MembershipJoin {
		return rejectf("sender cannot ban without being in the room")
	}

	senderPower, err := event.UserPowerLevel(powerLevels, sender, creators, rules)
	if err != nil {
		return err
	}
	banLevel, err := event.PowerLevelIntOrDefault(powerLevels, event.FieldBan, rules)
	if err != nil {
		return err
	}
	targetPower, err := event.UserPowerLevel(powerLevels, target, creators, rules)
	if err != nil {
		return err
	}
	if senderPower.AtLeast(banLevel) && targetPower.Cmp(senderPower) < 0 {
		return nil
	}
	return rejectf("sender power %s cannot ban a user with power %s (ban level %d)", senderPower, targetPower, banLevel)
}

func checkMemberKnock(ctx context.Context, rules roomversion.AuthRules, sender, target ref.UserID, state StateFetcher) error {
	if !rules.KnockJoinRule {
		return rejectf("knocking is not supported in this room version")
	}

	joinRule, err := fetchJoinRule(ctx, state)
	if err != nil {
		return err
	}
	allowed := joinRule == event.JoinRuleKnock ||
		(rules.KnockRestrictedJoinRule && joinRule == event.JoinRuleKnockRestricted)
	if !allowed {
		return rejectf("room's join rule %q does not allow knocking", joinRule)
	}

	if sender != target {
		return rejectf("sender cannot knock on behalf of another user")
	}

	senderMembership, err := fetchMembership(ctx, state, sender)
	if err != nil {
		return err
	}
	switch senderMembership {
	case event.MembershipBan, event.MembershipInvite, event.MembershipJoin:
		return rejectf("user cannot knock from membership %q", senderMembership)
	}
	return nil
}
