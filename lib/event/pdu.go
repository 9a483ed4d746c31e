// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"

	"github.com/hearth-im/hearth/lib/ref"
)

// PDU is the concrete [Event] implementation used by the stores, the
// CLI, and tests. Fields are exported for construction and
// serialization; once a PDU has been handed to an engine it must not
// be mutated.
type PDU struct {
	EventID      ref.EventID     `json:"event_id"`
	Room         ref.RoomID      `json:"room_id"`
	SenderID     ref.UserID      `json:"sender"`
	EventType    string          `json:"type"`
	State        *string         `json:"state_key,omitempty"`
	RawContent   json.RawMessage `json:"content"`
	AuthEventIDs []ref.EventID   `json:"auth_events,omitempty"`
	PrevEventIDs []ref.EventID   `json:"prev_events,omitempty"`
	Timestamp    int64           `json:"origin_server_ts"`
	RedactsID    ref.EventID     `json:"redacts,omitempty"`

	// RejectedFlag is local metadata, not part of the signed event:
	// whether this server rejected the event on receipt.
	RejectedFlag bool `json:"rejected,omitempty"`
}

var _ Event = (*PDU)(nil)

func (p *PDU) ID() ref.EventID       { return p.EventID }
func (p *PDU) RoomID() ref.RoomID    { return p.Room }
func (p *PDU) Sender() ref.UserID    { return p.SenderID }
func (p *PDU) Type() string          { return p.EventType }
func (p *PDU) Content() []byte       { return p.RawContent }
func (p *PDU) OriginServerTS() int64 { return p.Timestamp }
func (p *PDU) Rejected() bool        { return p.RejectedFlag }

func (p *PDU) StateKey() (string, bool) {
	if p.State == nil {
		return "", false
	}
	return *p.State, true
}

func (p *PDU) AuthEvents() []ref.EventID { return p.AuthEventIDs }
func (p *PDU) PrevEvents() []ref.EventID { return p.PrevEventIDs }

func (p *PDU) Redacts() (ref.EventID, bool) {
	if p.RedactsID.IsZero() {
		return ref.EventID{}, false
	}
	return p.RedactsID, true
}

// StateKeyOf is a convenience for building PDU literals: it returns a
// pointer to the given state key.
func StateKeyOf(stateKey string) *string {
	return &stateKey
}
