// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// TeamPack is a kind-34199 event grouping agent definitions into a
// hireable team. Parameterized-replaceable on (Pubkey, DTag).
type TeamPack struct {
	ID          string `json:"id"`
	Pubkey      string `json:"pubkey"`
	DTag        string `json:"d_tag,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	// AgentDefinitionIDs are kind-4199 event ids from repeated
	// e-tags.
	AgentDefinitionIDs []string `json:"agent_definition_ids,omitempty"`
	Categories         []string `json:"categories,omitempty"`
	Hashtags           []string `json:"hashtags,omitempty"`
	CreatedAt          uint64   `json:"created_at"`
}

// ParseTeamPack parses a kind-34199 note.
func ParseTeamPack(n *nostr.Note) (*TeamPack, bool) {
	if n.Kind != nostr.KindTeamPack {
		return nil, false
	}

	pack := &TeamPack{
		ID:          n.IDHex(),
		Pubkey:      n.PubkeyHex(),
		Description: n.Content,
		CreatedAt:   n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "e":
			pack.AgentDefinitionIDs = append(pack.AgentDefinitionIDs, normalizeID(tag.Value()))
		case "d":
			pack.DTag = tag.Value()
		case "title":
			pack.Title = tag.Value()
		case "image", "picture":
			pack.Image = tag.Value()
		case "c":
			pack.Categories = append(pack.Categories, tag.Value())
		case "t":
			pack.Hashtags = append(pack.Hashtags, tag.Value())
		}
	}
	if pack.Title == "" {
		pack.Title = "Untitled Team"
	}
	return pack, true
}
