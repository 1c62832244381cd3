// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package nostr

import (
	"encoding/json"
	"fmt"
)

// Event is the JSON wire form of a signed Nostr event, as received
// from relays and stored in the event database's raw column. The
// core does not verify signatures; that is the transport's job.
type Event struct {
	ID        string     `json:"id"`
	Pubkey    string     `json:"pubkey"`
	Kind      uint16     `json:"kind"`
	CreatedAt uint64     `json:"created_at"`
	Content   string     `json:"content"`
	Tags      [][]string `json:"tags"`
	Sig       string     `json:"sig,omitempty"`
}

// ParseEvent decodes the JSON wire form.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("nostr: decoding event: %w", err)
	}
	return &ev, nil
}

// Note converts the wire event to its canonical in-memory form.
// Returns an error when the id or pubkey is not 64-character hex.
func (ev *Event) Note() (*Note, error) {
	id, err := DecodeID(ev.ID)
	if err != nil {
		return nil, err
	}
	pubkey, err := DecodeID(ev.Pubkey)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, len(ev.Tags))
	for _, wire := range ev.Tags {
		tags = append(tags, NewTag(wire...))
	}
	return &Note{
		ID:        id,
		Pubkey:    pubkey,
		Kind:      ev.Kind,
		CreatedAt: ev.CreatedAt,
		Content:   ev.Content,
		Tags:      tags,
	}, nil
}

// WireTags renders a Note's tags back to the plain string form used
// on the wire, normalizing binary id slots to hex.
func WireTags(n *Note) [][]string {
	out := make([][]string, len(n.Tags))
	for i, tag := range n.Tags {
		out[i] = tag.Texts()
	}
	return out
}
