// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Profile is kind-0 user metadata. The content is a JSON object; only
// the fields the client displays are kept.
type Profile struct {
	Pubkey      string `json:"pubkey"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Picture     string `json:"picture,omitempty"`
	About       string `json:"about,omitempty"`
	CreatedAt   uint64 `json:"created_at"`
}

// ParseProfile parses a kind-0 note. Returns ok=false when the
// content is not a JSON object.
func ParseProfile(n *nostr.Note) (*Profile, bool) {
	if n.Kind != nostr.KindProfile {
		return nil, false
	}

	var fields struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Picture     string `json:"picture"`
		About       string `json:"about"`
	}
	if err := json.Unmarshal([]byte(n.Content), &fields); err != nil {
		return nil, false
	}
	return &Profile{
		Pubkey:      n.PubkeyHex(),
		Name:        fields.Name,
		DisplayName: fields.DisplayName,
		Picture:     fields.Picture,
		About:       fields.About,
		CreatedAt:   n.CreatedAt,
	}, true
}

// BestName returns the display name, falling back to the name, then
// to a truncated pubkey.
func (p *Profile) BestName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Name != "" {
		return p.Name
	}
	if len(p.Pubkey) >= 8 {
		return p.Pubkey[:8] + "..."
	}
	return p.Pubkey
}
