// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// Nudge is a kind-4201 reusable prompt fragment with optional tool
// permission modifiers. Allowed/Denied operate additively on the
// agent's tool set; Only, when present, replaces it outright and is
// mutually exclusive with the other two.
type Nudge struct {
	ID           string   `json:"id"`
	Pubkey       string   `json:"pubkey"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Content      string   `json:"content,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
	CreatedAt    uint64   `json:"created_at"`
	AllowedTools []string `json:"allowed_tools,omitempty"`
	DeniedTools  []string `json:"denied_tools,omitempty"`
	OnlyTools    []string `json:"only_tools,omitempty"`
	// Supersedes is the id of the nudge this one replaces. The store
	// hides superseded nudges from listings.
	Supersedes string `json:"supersedes,omitempty"`
}

// ParseNudge parses a kind-4201 note.
func ParseNudge(n *nostr.Note) (*Nudge, bool) {
	if n.Kind != nostr.KindNudge {
		return nil, false
	}

	nudge := &Nudge{
		ID:        n.IDHex(),
		Pubkey:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "title":
			nudge.Title = tag.Value()
		case "description":
			nudge.Description = tag.Value()
		case "t":
			nudge.Hashtags = append(nudge.Hashtags, tag.Value())
		case "allow-tool":
			nudge.AllowedTools = append(nudge.AllowedTools, tag.Value())
		case "deny-tool":
			nudge.DeniedTools = append(nudge.DeniedTools, tag.Value())
		case "only-tool":
			nudge.OnlyTools = append(nudge.OnlyTools, tag.Value())
		case "supersedes":
			nudge.Supersedes = normalizeID(tag.Value())
		}
	}
	if nudge.Title == "" {
		nudge.Title = "Untitled"
	}
	return nudge, true
}

// Skill is a kind-4202 reusable instruction set attachable to
// conversations. Unlike nudges, skills carry no tool permission
// modifiers; e-tags reference NIP-94 file attachments.
type Skill struct {
	ID          string   `json:"id"`
	Pubkey      string   `json:"pubkey"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	FileIDs     []string `json:"file_ids,omitempty"`
	CreatedAt   uint64   `json:"created_at"`
}

// ParseSkill parses a kind-4202 note.
func ParseSkill(n *nostr.Note) (*Skill, bool) {
	if n.Kind != nostr.KindSkill {
		return nil, false
	}

	skill := &Skill{
		ID:        n.IDHex(),
		Pubkey:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "e":
			skill.FileIDs = append(skill.FileIDs, normalizeID(tag.Value()))
		case "title":
			skill.Title = tag.Value()
		case "description":
			skill.Description = tag.Value()
		case "t":
			skill.Hashtags = append(skill.Hashtags, tag.Value())
		}
	}
	if skill.Title == "" {
		skill.Title = "Untitled"
	}
	return skill, true
}
