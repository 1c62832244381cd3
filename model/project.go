// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strings"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Project is a kind-31933 parameterized-replaceable project
// definition. Its identity is (Pubkey, ID) where ID is the d-tag;
// the stable coordinate is [Project.ATag]. A revision carrying a
// "deleted" tag is a tombstone: the project is gone and a stale
// non-deleted revision must not resurrect it.
type Project struct {
	// ID is the d-tag identifier, unique per author.
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RepoURL     string `json:"repo_url,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
	Pubkey      string `json:"pubkey"`
	// Participants are the pubkeys from p-tags.
	Participants []string `json:"participants,omitempty"`
	// AgentIDs are kind-4199 agent definition event ids.
	AgentIDs []string `json:"agent_ids,omitempty"`
	// MCPToolIDs are kind-4200 MCP tool event ids.
	MCPToolIDs []string `json:"mcp_tool_ids,omitempty"`
	// TeamPackIDs are kind-34199 team pack event ids.
	TeamPackIDs []string `json:"team_pack_ids,omitempty"`
	CreatedAt   uint64   `json:"created_at"`
	// EventID is the hex id of the revision this value was parsed
	// from; ties on CreatedAt are broken by the greater EventID.
	EventID string `json:"event_id"`
}

// ParseProject parses a kind-31933 note. The d-tag is mandatory.
func ParseProject(n *nostr.Note) (*Project, bool) {
	if n.Kind != nostr.KindProject {
		return nil, false
	}

	p := &Project{
		Pubkey:    n.PubkeyHex(),
		CreatedAt: n.CreatedAt,
		EventID:   n.IDHex(),
	}

	var dTag, title, name string
	for _, tag := range n.Tags {
		switch tag.Name() {
		case "d":
			if dTag == "" {
				dTag = tag.Value()
			}
		case "title":
			title = tag.Value()
		case "name":
			name = tag.Value()
		case "repo":
			p.RepoURL = tag.Value()
		case "picture", "image":
			p.PictureURL = tag.Value()
		case "deleted":
			p.Deleted = true
		case "p":
			if len(tag) >= 2 {
				p.Participants = append(p.Participants, normalizeID(tag.Value()))
			}
		case "agent":
			if len(tag) >= 2 {
				p.AgentIDs = append(p.AgentIDs, normalizeID(tag.Value()))
			}
		case "mcp":
			if len(tag) >= 2 {
				p.MCPToolIDs = append(p.MCPToolIDs, normalizeID(tag.Value()))
			}
		case "team":
			if len(tag) >= 2 {
				p.TeamPackIDs = append(p.TeamPackIDs, normalizeID(tag.Value()))
			}
		}
	}
	if dTag == "" {
		return nil, false
	}
	p.ID = dTag

	// Display name preference: title, then name, then the d-tag.
	switch {
	case title != "":
		p.Title = title
	case name != "":
		p.Title = name
	default:
		p.Title = dTag
	}
	if s := strings.TrimSpace(n.Content); s != "" {
		p.Description = n.Content
	}
	return p, true
}

// ATag returns the project's canonical coordinate,
// "31933:<pubkey>:<d_tag>".
func (p *Project) ATag() string {
	return fmt.Sprintf("%d:%s:%s", nostr.KindProject, p.Pubkey, p.ID)
}
