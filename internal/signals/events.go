// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package signals

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// TopicChanged is the event bus topic carrying signal-store change events.
// The recommendation engine subscribes to it to recompute reactively.
const TopicChanged = "signals.changed"

// Change kinds published on TopicChanged.
const (
	ChangeView        = "view"
	ChangePreferences = "preferences"
	ChangeCart        = "cart"
)

// ChangeEvent describes a single signal-store mutation.
type ChangeEvent struct {
	// Identity is the identity whose signals changed.
	Identity string `json:"identity"`

	// Kind is one of the Change* constants.
	Kind string `json:"kind"`

	// ProductID is set for view changes.
	ProductID int `json:"product_id,omitempty"`
}

// MarshalMessage encodes the event as a watermill message.
func (e ChangeEvent) MarshalMessage() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// DecodeChangeEvent decodes a watermill message back into a ChangeEvent.
func DecodeChangeEvent(msg *message.Message) (ChangeEvent, error) {
	var ev ChangeEvent
	err := json.Unmarshal(msg.Payload, &ev)
	return ev, err
}
