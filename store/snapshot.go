// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// CachedState is the serializable projection of an AppDataStore.
// Derived structures that are cheap to recompute (statistics, the
// effective-activity rollup, thread-root indices) are rebuilt on
// restore rather than cached. Field order and content must stay
// deterministic so identical stores snapshot to identical bytes.
type CachedState struct {
	Projects  []*model.Project       `json:"projects,omitempty"`
	Threads   []*model.Thread        `json:"threads,omitempty"`
	Messages  []*model.Message       `json:"messages,omitempty"`
	Profiles  []*model.Profile       `json:"profiles,omitempty"`
	Statuses  []*model.ProjectStatus `json:"statuses,omitempty"`
	Bookmarks []*model.BookmarkList  `json:"bookmarks,omitempty"`

	AgentDefinitions []*model.AgentDefinition `json:"agent_definitions,omitempty"`
	MCPTools         []*model.MCPTool         `json:"mcp_tools,omitempty"`
	TeamPacks        []*model.TeamPack        `json:"team_packs,omitempty"`
	Nudges           []*model.Nudge           `json:"nudges,omitempty"`
	Skills           []*model.Skill           `json:"skills,omitempty"`
	Lessons          []*model.Lesson          `json:"lessons,omitempty"`

	ReportVersions  map[string][]*model.Report `json:"report_versions,omitempty"`
	DocumentThreads map[string][]string        `json:"document_threads,omitempty"`

	InboxItems []model.InboxItem    `json:"inbox_items,omitempty"`
	Chatter    []model.AgentChatter `json:"chatter,omitempty"`

	HierarchyEdges map[string][]string `json:"hierarchy_edges,omitempty"`
	MetadataAt     map[string]uint64   `json:"metadata_at,omitempty"`

	// PendingMetadata is kind-513 metadata still waiting for its
	// thread root. It must survive the snapshot: catch-up only
	// replays events near the watermark, so a dropped buffer would
	// never be re-seen.
	PendingMetadata []*model.ConversationMetadata `json:"pending_metadata,omitempty"`

	TeamReactions map[string][]TeamReaction `json:"team_reactions,omitempty"`
	TeamComments  map[string][]TeamComment  `json:"team_comments,omitempty"`

	CostEntries []CostEntry `json:"cost_entries,omitempty"`
}

// Snapshot captures the store's cacheable state and the highest
// created_at across every captured entity, the watermark incremental
// catch-up starts from.
func (s *AppDataStore) Snapshot() (*CachedState, uint64) {
	state := &CachedState{
		AgentDefinitions: s.content.AgentDefinitions(),
		MCPTools:         s.content.MCPTools(),
		TeamPacks:        s.content.TeamPacks(),
		Nudges:           s.nudgesIncludingSuperseded(),
		Skills:           s.content.Skills(),
		Lessons:          s.content.Lessons(),
		ReportVersions:   make(map[string][]*model.Report, len(s.reports.versions)),
		DocumentThreads:  make(map[string][]string, len(s.reports.documentThreads)),
		InboxItems:       s.inbox.Items(),
		Chatter:          slices.Clone(s.chatter),
		HierarchyEdges:   s.hierarchy.Edges(),
		MetadataAt:       make(map[string]uint64, len(s.metadataAt)),
		TeamReactions:    make(map[string][]TeamReaction, len(s.teamReactions)),
		TeamComments:     make(map[string][]TeamComment, len(s.teamComments)),
		CostEntries:      slices.Clone(s.costEntries),
	}

	var watermark uint64
	mark := func(at uint64) {
		if at > watermark {
			watermark = at
		}
	}

	for _, key := range sortedMapKeys(s.projects) {
		p := s.projects[key]
		state.Projects = append(state.Projects, p)
		mark(p.CreatedAt)
	}
	for _, key := range sortedMapKeys(s.threads) {
		t := s.threads[key]
		state.Threads = append(state.Threads, t)
		mark(t.CreatedAt)
	}
	for _, key := range sortedMapKeys(s.messagesByThread) {
		for _, m := range s.messagesByThread[key] {
			state.Messages = append(state.Messages, m)
			mark(m.CreatedAt)
		}
	}
	for _, key := range sortedMapKeys(s.profiles) {
		p := s.profiles[key]
		state.Profiles = append(state.Profiles, p)
		mark(p.CreatedAt)
	}
	for _, key := range sortedMapKeys(s.statuses) {
		status := s.statuses[key]
		state.Statuses = append(state.Statuses, status)
		mark(status.CreatedAt)
	}
	for _, key := range sortedMapKeys(s.bookmarks) {
		list := s.bookmarks[key]
		state.Bookmarks = append(state.Bookmarks, list)
		mark(list.LastUpdated)
	}

	for slug, versions := range s.reports.versions {
		state.ReportVersions[slug] = slices.Clone(versions)
		for _, v := range versions {
			mark(v.CreatedAt)
		}
	}
	for doc, ids := range s.reports.documentThreads {
		state.DocumentThreads[doc] = slices.Clone(ids)
	}
	for id, at := range s.metadataAt {
		state.MetadataAt[id] = at
		mark(at)
	}
	for _, id := range sortedMapKeys(s.pendingMetadata) {
		md := s.pendingMetadata[id]
		state.PendingMetadata = append(state.PendingMetadata, md)
		mark(md.CreatedAt)
	}
	for id, reactions := range s.teamReactions {
		state.TeamReactions[id] = slices.Clone(reactions)
	}
	for id, comments := range s.teamComments {
		state.TeamComments[id] = slices.Clone(comments)
	}

	for _, def := range state.AgentDefinitions {
		mark(def.CreatedAt)
	}
	for _, lesson := range state.Lessons {
		mark(lesson.CreatedAt)
	}
	return state, watermark
}

// nudgesIncludingSuperseded returns every stored nudge, not just the
// listed ones: supersedes chains must survive the snapshot.
func (s *AppDataStore) nudgesIncludingSuperseded() []*model.Nudge {
	nudges := make([]*model.Nudge, 0, len(s.content.nudges))
	for _, nudge := range s.content.nudges {
		nudges = append(nudges, nudge)
	}
	slices.SortFunc(nudges, func(a, b *model.Nudge) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return nudges
}

// Restore loads a snapshot into an empty store, re-deriving
// everything the snapshot leaves out: thread-root indices, the
// delegation graph, statistics, and the activity rollup.
func (s *AppDataStore) Restore(state *CachedState) {
	for _, p := range state.Projects {
		s.projects[p.ATag()] = p
	}
	for _, t := range state.Threads {
		s.threads[t.ID] = t
		if project := t.ProjectATag(); project != "" {
			s.threadRoots[project] = append(s.threadRoots[project], t.ID)
		}
		if t.ParentConversationID != "" {
			s.addDelegationEdge(t.ParentConversationID, t.ID)
		}
	}
	for _, m := range state.Messages {
		if s.messageIDs[m.ID] {
			continue
		}
		s.messageIDs[m.ID] = true
		s.insertMessage(m)
		s.recordCostless(m)
	}
	for _, p := range state.Profiles {
		s.profiles[p.Pubkey] = p
	}
	for _, status := range state.Statuses {
		s.statuses[status.ProjectCoordinate] = status
	}
	for _, list := range state.Bookmarks {
		s.bookmarks[list.Pubkey] = list
	}

	for _, def := range state.AgentDefinitions {
		s.content.InsertAgentDefinition(def)
	}
	for _, tool := range state.MCPTools {
		s.content.InsertMCPTool(tool)
	}
	for _, pack := range state.TeamPacks {
		s.content.InsertTeamPack(pack)
	}
	for _, nudge := range state.Nudges {
		s.content.InsertNudge(nudge)
	}
	for _, skill := range state.Skills {
		s.content.InsertSkill(skill)
	}
	for _, lesson := range state.Lessons {
		s.content.InsertLesson(lesson)
	}

	for _, versions := range state.ReportVersions {
		for _, v := range versions {
			s.reports.Add(v)
		}
	}
	for doc, ids := range state.DocumentThreads {
		for _, id := range ids {
			s.reports.AttachThread(doc, id)
		}
	}

	for _, item := range state.InboxItems {
		s.inbox.Add(item)
	}
	for _, entry := range state.Chatter {
		if !s.chatterIDs[entry.ID] {
			s.chatterIDs[entry.ID] = true
			s.chatter = append(s.chatter, entry)
		}
	}

	for parent, children := range state.HierarchyEdges {
		for _, child := range children {
			s.hierarchy.Register(parent, child)
			s.addDelegationEdge(parent, child)
		}
	}
	for id, at := range state.MetadataAt {
		s.metadataAt[id] = at
	}
	for _, md := range state.PendingMetadata {
		s.pendingMetadata[md.ThreadID] = md
	}
	for id, reactions := range state.TeamReactions {
		s.teamReactions[id] = reactions
		for _, r := range reactions {
			s.socialIDs[r.ID] = true
		}
	}
	for id, comments := range state.TeamComments {
		s.teamComments[id] = comments
		for _, c := range comments {
			s.socialIDs[c.ID] = true
		}
	}

	s.costEntries = slices.Clone(state.CostEntries)
	s.costTotalUSD = 0
	for _, entry := range s.costEntries {
		s.costTotalUSD += entry.USD
	}

	s.stats.Rebuild(s.messagesByThread, s.currentUser)
	for id := range s.threads {
		s.bumpActivity(id)
	}
}

// recordCostless registers delegation edges from a restored message
// without re-recording its cost (cost entries restore separately).
func (s *AppDataStore) recordCostless(m *model.Message) {
	if QTagRendered(m.ToolName) {
		for _, q := range m.QTags {
			s.hierarchy.Register(m.ThreadID, q)
			s.addDelegationEdge(m.ThreadID, q)
		}
	}
	if m.DelegationTag != "" && m.DelegationTag != m.ThreadID {
		s.addDelegationEdge(m.DelegationTag, m.ThreadID)
	}
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
