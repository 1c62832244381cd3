// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// AgentDefinition is a kind-4199 agent persona: the instructions live
// in the content, everything else in tags. Parameterized-replaceable
// on (Pubkey, DTag).
type AgentDefinition struct {
	ID           string   `json:"id"`
	Pubkey       string   `json:"pubkey"`
	DTag         string   `json:"d_tag,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Role         string   `json:"role"`
	Instructions string   `json:"instructions,omitempty"`
	Picture      string   `json:"picture,omitempty"`
	Version      string   `json:"version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Tools        []string `json:"tools,omitempty"`
	MCPServers   []string `json:"mcp_servers,omitempty"`
	UseCriteria  []string `json:"use_criteria,omitempty"`
	CreatedAt    uint64   `json:"created_at"`
}

// ParseAgentDefinition parses a kind-4199 note.
func ParseAgentDefinition(n *nostr.Note) (*AgentDefinition, bool) {
	if n.Kind != nostr.KindAgentDefinition {
		return nil, false
	}

	def := &AgentDefinition{
		ID:           n.IDHex(),
		Pubkey:       n.PubkeyHex(),
		Instructions: n.Content,
		CreatedAt:    n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		value := tag.Value()
		switch tag.Name() {
		case "d":
			def.DTag = value
		case "title":
			def.Name = value
		case "description":
			def.Description = value
		case "role":
			def.Role = value
		case "picture", "image":
			def.Picture = value
		case "version":
			def.Version = value
		case "model":
			def.Model = value
		case "tool":
			def.Tools = append(def.Tools, value)
		case "mcp":
			def.MCPServers = append(def.MCPServers, value)
		case "use-criteria":
			def.UseCriteria = append(def.UseCriteria, value)
		}
	}
	if def.Name == "" {
		def.Name = "Unnamed Agent"
	}
	if def.Role == "" {
		def.Role = "assistant"
	}
	return def, true
}

// MCPTool is a kind-4200 MCP server/tool definition.
type MCPTool struct {
	ID          string `json:"id"`
	Pubkey      string `json:"pubkey"`
	DTag        string `json:"d_tag,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ServerURL   string `json:"server_url,omitempty"`
	Version     string `json:"version,omitempty"`
	CreatedAt   uint64 `json:"created_at"`
}

// ParseMCPTool parses a kind-4200 note.
func ParseMCPTool(n *nostr.Note) (*MCPTool, bool) {
	if n.Kind != nostr.KindMCPTool {
		return nil, false
	}

	tool := &MCPTool{
		ID:          n.IDHex(),
		Pubkey:      n.PubkeyHex(),
		Description: n.Content,
		CreatedAt:   n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		value := tag.Value()
		switch tag.Name() {
		case "d":
			tool.DTag = value
		case "title", "name":
			tool.Name = value
		case "server", "url":
			tool.ServerURL = value
		case "version":
			tool.Version = value
		}
	}
	if tool.Name == "" {
		tool.Name = "Unnamed Tool"
	}
	return tool, true
}
