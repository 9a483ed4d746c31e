// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"

	"github.com/hearth-im/hearth/lib/ref"
)

// MemberEvent is a typed view over an m.room.member event. Fields are
// parsed from the raw content on demand.
type MemberEvent struct {
	Event
}

// NewMemberEvent wraps the given event. The caller is responsible for
// having checked the event type.
func NewMemberEvent(ev Event) MemberEvent {
	return MemberEvent{Event: ev}
}

// Membership returns the requested membership state.
func (e MemberEvent) Membership() (Membership, error) {
	return MembershipFromContent(e.Content())
}

// MembershipFromContent parses the membership field out of raw
// m.room.member content.
func MembershipFromContent(content []byte) (Membership, error) {
	var parsed struct {
		Membership *Membership `json:"membership"`
	}
	if err := json.Unmarshal(content, &parsed); err != nil {
		return "", fmt.Errorf("invalid `membership` field in m.room.member event: %w", err)
	}
	if parsed.Membership == nil || *parsed.Membership == "" {
		return "", fmt.Errorf("missing `membership` field in m.room.member event")
	}
	return *parsed.Membership, nil
}

// JoinAuthorisedViaUsersServer returns the user who authorized a
// restricted join, or the zero UserID when the field is absent.
func (e MemberEvent) JoinAuthorisedViaUsersServer() (ref.UserID, error) {
	var content struct {
		AuthorisedVia ref.UserID `json:"join_authorised_via_users_server"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return ref.UserID{}, fmt.Errorf("invalid `join_authorised_via_users_server` field in m.room.member event: %w", err)
	}
	return content.AuthorisedVia, nil
}

// ThirdPartyInvite returns the third_party_invite content of an invite
// event, or nil when the field is absent.
func (e MemberEvent) ThirdPartyInvite() (*ThirdPartyInvite, error) {
	var content struct {
		ThirdPartyInvite *ThirdPartyInvite `json:"third_party_invite"`
	}
	if err := json.Unmarshal(e.Content(), &content); err != nil {
		return nil, fmt.Errorf("invalid `third_party_invite` field in m.room.member event: %w", err)
	}
	return content.ThirdPartyInvite, nil
}

// ThirdPartyInvite is the third_party_invite object of an m.room.member
// invite event. Only the structural fields needed by the authorization
// rules are exposed; signature verification happens upstream.
type ThirdPartyInvite struct {
	// Signed is the identity-server-signed object binding the invite
	// token to the invited Matrix ID.
	Signed map[string]json.RawMessage `json:"signed"`
}

// Token returns the invite token, which must match the state key of an
// m.room.third_party_invite event in the room state.
func (t *ThirdPartyInvite) Token() (string, error) {
	return t.signedString("token")
}

// MXID returns the Matrix user ID the invite was bound to.
func (t *ThirdPartyInvite) MXID() (string, error) {
	return t.signedString("mxid")
}

func (t *ThirdPartyInvite) signedString(field string) (string, error) {
	raw, ok := t.Signed[field]
	if !ok {
		return "", fmt.Errorf("missing `%s` field in third_party_invite.signed of m.room.member event", field)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("unexpected format of `%s` field in third_party_invite.signed of m.room.member event: %w", field, err)
	}
	return value, nil
}
