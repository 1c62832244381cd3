// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// replaceableKey is the canonical identity of a parameterized-
// replaceable event: author pubkey plus d-tag.
type replaceableKey struct {
	pubkey string
	dTag   string
}

// ContentStore holds the replaceable content definitions: agent
// definitions, MCP tools, nudges, skills, team packs, and lessons.
// Agent definitions, MCP tools, and team packs are keyed by
// (pubkey, d_tag) with newer-wins replacement; nudges, skills, and
// lessons carry no d-tag and are keyed by event id, with nudge
// supersedes chains hiding replaced revisions from listings.
//
// Construct with [NewContentStore]. Not safe for concurrent use.
type ContentStore struct {
	agentDefs map[replaceableKey]*model.AgentDefinition
	mcpTools  map[replaceableKey]*model.MCPTool
	teamPacks map[replaceableKey]*model.TeamPack

	nudges  map[string]*model.Nudge
	skills  map[string]*model.Skill
	lessons map[string]*model.Lesson

	// supersededNudges holds the ids named by a supersedes tag on any
	// ingested nudge, including ids not seen yet.
	supersededNudges map[string]bool
}

// NewContentStore returns an empty content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		agentDefs:        make(map[replaceableKey]*model.AgentDefinition),
		mcpTools:         make(map[replaceableKey]*model.MCPTool),
		teamPacks:        make(map[replaceableKey]*model.TeamPack),
		nudges:           make(map[string]*model.Nudge),
		skills:           make(map[string]*model.Skill),
		lessons:          make(map[string]*model.Lesson),
		supersededNudges: make(map[string]bool),
	}
}

// InsertAgentDefinition applies newer-wins replacement on
// (pubkey, d_tag). Definitions without a d-tag key on the event id
// via the d-tag slot, so every revision stands alone.
func (c *ContentStore) InsertAgentDefinition(def *model.AgentDefinition) {
	key := replaceableKey{pubkey: def.Pubkey, dTag: def.DTag}
	if def.DTag == "" {
		key.dTag = def.ID
	}
	cur, ok := c.agentDefs[key]
	if ok && !newerWins(cur.CreatedAt, cur.ID, def.CreatedAt, def.ID) {
		return
	}
	c.agentDefs[key] = def
}

// InsertMCPTool applies newer-wins replacement on (pubkey, d_tag).
func (c *ContentStore) InsertMCPTool(tool *model.MCPTool) {
	key := replaceableKey{pubkey: tool.Pubkey, dTag: tool.DTag}
	if tool.DTag == "" {
		key.dTag = tool.ID
	}
	cur, ok := c.mcpTools[key]
	if ok && !newerWins(cur.CreatedAt, cur.ID, tool.CreatedAt, tool.ID) {
		return
	}
	c.mcpTools[key] = tool
}

// InsertTeamPack applies newer-wins replacement on (pubkey, d_tag).
func (c *ContentStore) InsertTeamPack(pack *model.TeamPack) {
	key := replaceableKey{pubkey: pack.Pubkey, dTag: pack.DTag}
	if pack.DTag == "" {
		key.dTag = pack.ID
	}
	cur, ok := c.teamPacks[key]
	if ok && !newerWins(cur.CreatedAt, cur.ID, pack.CreatedAt, pack.ID) {
		return
	}
	c.teamPacks[key] = pack
}

// InsertNudge stores a nudge by id and records its supersedes link.
func (c *ContentStore) InsertNudge(nudge *model.Nudge) {
	c.nudges[nudge.ID] = nudge
	if nudge.Supersedes != "" {
		c.supersededNudges[nudge.Supersedes] = true
	}
}

// InsertSkill stores a skill by id.
func (c *ContentStore) InsertSkill(skill *model.Skill) {
	c.skills[skill.ID] = skill
}

// InsertLesson stores a lesson by id.
func (c *ContentStore) InsertLesson(lesson *model.Lesson) {
	c.lessons[lesson.ID] = lesson
}

// Delete removes any content entity whose event id matches. Used for
// NIP-09 kind-5 deletions; unknown ids are ignored.
func (c *ContentStore) Delete(eventID string) {
	for key, def := range c.agentDefs {
		if def.ID == eventID {
			delete(c.agentDefs, key)
		}
	}
	for key, tool := range c.mcpTools {
		if tool.ID == eventID {
			delete(c.mcpTools, key)
		}
	}
	for key, pack := range c.teamPacks {
		if pack.ID == eventID {
			delete(c.teamPacks, key)
		}
	}
	delete(c.nudges, eventID)
	delete(c.skills, eventID)
	delete(c.lessons, eventID)
}

// AgentDefinitions returns all agent definitions, newest first.
func (c *ContentStore) AgentDefinitions() []*model.AgentDefinition {
	defs := make([]*model.AgentDefinition, 0, len(c.agentDefs))
	for _, def := range c.agentDefs {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b *model.AgentDefinition) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return defs
}

// AgentDefinition returns the definition with the given event id.
func (c *ContentStore) AgentDefinition(id string) (*model.AgentDefinition, bool) {
	for _, def := range c.agentDefs {
		if def.ID == id {
			return def, true
		}
	}
	return nil, false
}

// MCPTools returns all MCP tool definitions, newest first.
func (c *ContentStore) MCPTools() []*model.MCPTool {
	tools := make([]*model.MCPTool, 0, len(c.mcpTools))
	for _, tool := range c.mcpTools {
		tools = append(tools, tool)
	}
	slices.SortFunc(tools, func(a, b *model.MCPTool) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return tools
}

// TeamPacks returns all team packs, newest first.
func (c *ContentStore) TeamPacks() []*model.TeamPack {
	packs := make([]*model.TeamPack, 0, len(c.teamPacks))
	for _, pack := range c.teamPacks {
		packs = append(packs, pack)
	}
	slices.SortFunc(packs, func(a, b *model.TeamPack) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return packs
}

// Nudges returns all nudges that have not been superseded, newest
// first.
func (c *ContentStore) Nudges() []*model.Nudge {
	nudges := make([]*model.Nudge, 0, len(c.nudges))
	for id, nudge := range c.nudges {
		if c.supersededNudges[id] {
			continue
		}
		nudges = append(nudges, nudge)
	}
	slices.SortFunc(nudges, func(a, b *model.Nudge) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return nudges
}

// Skills returns all skills, newest first.
func (c *ContentStore) Skills() []*model.Skill {
	skills := make([]*model.Skill, 0, len(c.skills))
	for _, skill := range c.skills {
		skills = append(skills, skill)
	}
	slices.SortFunc(skills, func(a, b *model.Skill) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return skills
}

// Lesson returns the lesson with the given event id.
func (c *ContentStore) Lesson(id string) (*model.Lesson, bool) {
	lesson, ok := c.lessons[id]
	return lesson, ok
}

// Lessons returns all lessons, newest first.
func (c *ContentStore) Lessons() []*model.Lesson {
	lessons := make([]*model.Lesson, 0, len(c.lessons))
	for _, lesson := range c.lessons {
		lessons = append(lessons, lesson)
	}
	slices.SortFunc(lessons, func(a, b *model.Lesson) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return lessons
}

// compareNewest orders by created_at descending, id descending as the
// tiebreak, matching the replacement rule so listings are stable.
func compareNewest(aAt uint64, aID string, bAt uint64, bID string) int {
	switch {
	case aAt > bAt:
		return -1
	case aAt < bAt:
		return 1
	case aID > bID:
		return -1
	case aID < bID:
		return 1
	}
	return 0
}
