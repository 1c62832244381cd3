// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"slices"
	"time"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// ProjectAgent is one agent listed in a project status.
type ProjectAgent struct {
	Pubkey string   `json:"pubkey"`
	Name   string   `json:"name"`
	IsPM   bool     `json:"is_pm,omitempty"`
	Model  string   `json:"model,omitempty"`
	Tools  []string `json:"tools,omitempty"`
}

// ProjectStatus is the ephemeral kind-24010 heartbeat a backend
// publishes for a project: which agents are online, their model and
// tool assignments, and the available branches.
type ProjectStatus struct {
	ProjectCoordinate string         `json:"project_coordinate"`
	Agents            []ProjectAgent `json:"agents,omitempty"`
	Branches          []string       `json:"branches,omitempty"`
	// AllModels and AllTools are the sorted, deduplicated global
	// catalogs. They include entries from two-element model/tool
	// tags that assign to no agent.
	AllModels []string `json:"all_models,omitempty"`
	AllTools  []string `json:"all_tools,omitempty"`
	CreatedAt uint64   `json:"created_at"`
	// BackendPubkey is the author of the status event; trust
	// decisions key on it.
	BackendPubkey string `json:"backend_pubkey"`
	EventID       string `json:"event_id"`
	// LastSeenAt is the wall clock at which the store last saw a
	// status for this project. Zero until the store sets it.
	LastSeenAt uint64 `json:"last_seen_at,omitempty"`
}

// ParseProjectStatus parses a kind-24010 note. The project a-tag is
// mandatory.
//
// Agent tags are ["agent", <pubkey>, <name>] with an optional literal
// "pm" fourth element marking the project manager; at most one agent
// is the PM and the first marked one wins. Model and tool tags are
// [kind, <name>, <agent>...]: with three or more elements they assign
// to the named agents, with exactly two they only feed the global
// catalog.
func ParseProjectStatus(n *nostr.Note) (*ProjectStatus, bool) {
	if n.Kind != nostr.KindProjectStatus {
		return nil, false
	}

	s := &ProjectStatus{
		CreatedAt:     n.CreatedAt,
		BackendPubkey: n.PubkeyHex(),
		EventID:       n.IDHex(),
	}

	byName := make(map[string]int)
	havePM := false
	for _, tag := range n.Tags {
		switch tag.Name() {
		case "a":
			if s.ProjectCoordinate == "" && len(tag) >= 2 {
				s.ProjectCoordinate = tag.Value()
			}
		case "agent":
			if len(tag) < 3 {
				continue
			}
			agent := ProjectAgent{
				Pubkey: normalizeID(tag.Value()),
				Name:   tag.At(2),
			}
			if tag.At(3) == "pm" && !havePM {
				agent.IsPM = true
				havePM = true
			}
			if _, dup := byName[agent.Name]; dup {
				continue
			}
			byName[agent.Name] = len(s.Agents)
			s.Agents = append(s.Agents, agent)
		case "branch":
			if len(tag) >= 2 {
				s.Branches = append(s.Branches, tag.Value())
			}
		case "model":
			if len(tag) >= 2 {
				s.AllModels = append(s.AllModels, tag.Value())
			}
		case "tool":
			if len(tag) >= 2 {
				s.AllTools = append(s.AllTools, tag.Value())
			}
		}
	}
	if s.ProjectCoordinate == "" {
		return nil, false
	}

	slices.Sort(s.AllModels)
	s.AllModels = slices.Compact(s.AllModels)
	slices.Sort(s.AllTools)
	s.AllTools = slices.Compact(s.AllTools)

	// Second pass: assignment tags name agents from element 2 on.
	for _, tag := range n.Tags {
		name := tag.Name()
		if (name != "model" && name != "tool") || len(tag) < 3 {
			continue
		}
		value := tag.Value()
		for i := 2; i < len(tag); i++ {
			idx, ok := byName[tag.At(i)]
			if !ok {
				continue
			}
			if name == "model" {
				s.Agents[idx].Model = value
			} else {
				s.Agents[idx].Tools = append(s.Agents[idx].Tools, value)
			}
		}
	}
	return s, true
}

// PMAgent returns the project-manager agent, if one was marked.
func (s *ProjectStatus) PMAgent() (*ProjectAgent, bool) {
	for i := range s.Agents {
		if s.Agents[i].IsPM {
			return &s.Agents[i], true
		}
	}
	return nil, false
}

// Agent returns the agent with the given name.
func (s *ProjectStatus) Agent(name string) (*ProjectAgent, bool) {
	for i := range s.Agents {
		if s.Agents[i].Name == name {
			return &s.Agents[i], true
		}
	}
	return nil, false
}

// DefaultBranch returns the first listed branch, or "".
func (s *ProjectStatus) DefaultBranch() string {
	if len(s.Branches) == 0 {
		return ""
	}
	return s.Branches[0]
}

// AgentAssignedTools returns the sorted, deduplicated set of tools
// assigned to at least one agent. Unlike AllTools it excludes
// catalog-only entries.
func (s *ProjectStatus) AgentAssignedTools() []string {
	var tools []string
	for i := range s.Agents {
		tools = append(tools, s.Agents[i].Tools...)
	}
	slices.Sort(tools)
	return slices.Compact(tools)
}

// IsOnline reports whether the status was seen within the staleness
// threshold.
func (s *ProjectStatus) IsOnline(now time.Time, staleness time.Duration) bool {
	seen := time.Unix(int64(s.LastSeenAt), 0)
	return now.Sub(seen) < staleness
}
