// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tenex-chat/tenex/lib/search"
	"github.com/tenex-chat/tenex/model"
)

// Projects returns all live (non-deleted) projects sorted by title,
// coordinate as the tiebreak.
func (s *AppDataStore) Projects() []*model.Project {
	projects := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if !p.Deleted {
			projects = append(projects, p)
		}
	}
	slices.SortFunc(projects, func(a, b *model.Project) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.ATag(), b.ATag())
	})
	return projects
}

// Project returns the live project at a coordinate.
func (s *AppDataStore) Project(aTag string) (*model.Project, bool) {
	p, ok := s.projects[aTag]
	if !ok || p.Deleted {
		return nil, false
	}
	return p, true
}

// ProjectStatus returns the stored status for a project coordinate.
func (s *AppDataStore) ProjectStatus(aTag string) (*model.ProjectStatus, bool) {
	status, ok := s.statuses[aTag]
	return status, ok
}

// IsProjectOnline reports whether the project's backend has published
// a status within the staleness threshold.
func (s *AppDataStore) IsProjectOnline(aTag string, now time.Time) bool {
	status, ok := s.statuses[aTag]
	return ok && status.IsOnline(now, s.staleness)
}

// OnlineAgents returns the agent list from a live status, or nil when
// the project is offline.
func (s *AppDataStore) OnlineAgents(aTag string, now time.Time) []model.ProjectAgent {
	status, ok := s.statuses[aTag]
	if !ok || !status.IsOnline(now, s.staleness) {
		return nil
	}
	return slices.Clone(status.Agents)
}

// IsProjectBusy reports whether any live operation belongs to one of
// the project's conversations.
func (s *AppDataStore) IsProjectBusy(aTag string) bool {
	roots := s.threadRoots[aTag]
	for _, op := range s.operations.Live() {
		if op.ThreadID != "" && slices.Contains(roots, op.ThreadID) {
			return true
		}
	}
	return false
}

// ProjectConfigOptions returns the configurable option catalogs from
// the project's status: models, tools, branches.
func (s *AppDataStore) ProjectConfigOptions(aTag string) (models, tools, branches []string) {
	status, ok := s.statuses[aTag]
	if !ok {
		return nil, nil, nil
	}
	return slices.Clone(status.AllModels), slices.Clone(status.AllTools), slices.Clone(status.Branches)
}

// Threads returns a project's conversations sorted by
// effective_last_activity descending.
func (s *AppDataStore) Threads(projectATag string) []*model.Thread {
	ids := s.threadRoots[projectATag]
	threads := make([]*model.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.threads[id]; ok {
			threads = append(threads, t)
		}
	}
	sortThreadsByActivity(threads)
	return threads
}

// AllRecentThreads returns the most recently active conversations
// across every project. limit <= 0 means no limit.
func (s *AppDataStore) AllRecentThreads(limit int) []*model.Thread {
	threads := make([]*model.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, t)
	}
	sortThreadsByActivity(threads)
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads
}

// ThreadByID returns the conversation root with the given id.
func (s *AppDataStore) ThreadByID(id string) (*model.Thread, bool) {
	t, ok := s.threads[id]
	return t, ok
}

// Messages returns a thread's messages in created_at-ascending order.
func (s *AppDataStore) Messages(threadID string) []*model.Message {
	return slices.Clone(s.messagesByThread[threadID])
}

// RuntimeAncestors returns the runtime-hierarchy ancestor chain of a
// conversation, nearest first.
func (s *AppDataStore) RuntimeAncestors(threadID string) []string {
	return s.hierarchy.Ancestors(threadID)
}

// QTagRelationships returns every runtime parent→children edge.
func (s *AppDataStore) QTagRelationships() map[string][]string {
	return s.hierarchy.Edges()
}

// ParentConversationFromMessages resolves a thread's parent by
// scanning its messages for a delegation tag, the last-resort rule
// when neither the root nor the runtime hierarchy names one.
func (s *AppDataStore) ParentConversationFromMessages(threadID string) (string, bool) {
	for _, m := range s.messagesByThread[threadID] {
		if m.DelegationTag != "" && m.DelegationTag != threadID {
			return m.DelegationTag, true
		}
	}
	return "", false
}

// HierarchicalRuntime sums the runtime LLM metadata (milliseconds)
// over the thread's own messages and all descendants.
func (s *AppDataStore) HierarchicalRuntime(threadID string) uint64 {
	var total uint64
	seen := make(map[string]bool)
	stack := []string{threadID}
	for len(stack) > 0 && len(seen) < maxHierarchyDepth*maxHierarchyDepth {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, m := range s.messagesByThread[id] {
			ms, _ := strconv.ParseUint(m.LLMMetadata["runtime"], 10, 64)
			total += ms
		}
		stack = append(stack, s.childIndex[id]...)
	}
	return total
}

// StatusbarRuntime returns the total runtime estimate in
// milliseconds (confirmed plus unconfirmed), whether any agents are
// active, and how many.
func (s *AppDataStore) StatusbarRuntime(now uint64) (ms uint64, hasActive bool, activeCount int) {
	activeCount = s.tracking.ActiveAgentCount()
	ms = (s.tracking.ConfirmedRuntimeSecs() + s.tracking.UnconfirmedRuntimeSecs(now)) * 1000
	return ms, activeCount > 0, activeCount
}

// InboxItems returns the inbox, newest first.
func (s *AppDataStore) InboxItems() []model.InboxItem { return s.inbox.Items() }

// MarkInboxRead flags an inbox item read.
func (s *AppDataStore) MarkInboxRead(id string) bool { return s.inbox.MarkRead(id) }

// InboxReadIDs returns the read-id set for persistence.
func (s *AppDataStore) InboxReadIDs() []string { return s.inbox.ReadIDs() }

// Bookmarks returns a user's bookmark list.
func (s *AppDataStore) Bookmarks(pubkey string) (*model.BookmarkList, bool) {
	list, ok := s.bookmarks[pubkey]
	return list, ok
}

// IsBookmarked reports whether the user has bookmarked the item.
func (s *AppDataStore) IsBookmarked(pubkey, itemID string) bool {
	list, ok := s.bookmarks[pubkey]
	return ok && list.Contains(itemID)
}

// Profile returns the stored profile for a pubkey.
func (s *AppDataStore) Profile(pubkey string) (*model.Profile, bool) {
	p, ok := s.profiles[pubkey]
	return p, ok
}

// AgentDefinitions lists all agent definitions, newest first.
func (s *AppDataStore) AgentDefinitions() []*model.AgentDefinition {
	return s.content.AgentDefinitions()
}

// Nudges lists all non-superseded nudges, newest first.
func (s *AppDataStore) Nudges() []*model.Nudge { return s.content.Nudges() }

// Skills lists all skills, newest first.
func (s *AppDataStore) Skills() []*model.Skill { return s.content.Skills() }

// MCPTools lists all MCP tool definitions, newest first.
func (s *AppDataStore) MCPTools() []*model.MCPTool { return s.content.MCPTools() }

// TeamPacks lists all team packs, newest first.
func (s *AppDataStore) TeamPacks() []*model.TeamPack { return s.content.TeamPacks() }

// Lesson returns the lesson with the given event id.
func (s *AppDataStore) Lesson(id string) (*model.Lesson, bool) { return s.content.Lesson(id) }

// Lessons lists all lessons, newest first.
func (s *AppDataStore) Lessons() []*model.Lesson { return s.content.Lessons() }

// TeamWithStats pairs a team pack with its social metrics.
type TeamWithStats struct {
	Pack          *model.TeamPack `json:"pack"`
	ReactionCount int             `json:"reaction_count"`
	CommentCount  int             `json:"comment_count"`
}

// AllTeams returns every team pack with its reaction and comment
// counts, newest first.
func (s *AppDataStore) AllTeams() []TeamWithStats {
	packs := s.content.TeamPacks()
	teams := make([]TeamWithStats, 0, len(packs))
	for _, pack := range packs {
		teams = append(teams, TeamWithStats{
			Pack:          pack,
			ReactionCount: len(s.teamReactions[pack.ID]),
			CommentCount:  len(s.teamComments[pack.ID]),
		})
	}
	return teams
}

// TeamComments returns the comments on a team pack, oldest first.
func (s *AppDataStore) TeamComments(teamID string) []TeamComment {
	comments := slices.Clone(s.teamComments[teamID])
	slices.SortFunc(comments, func(a, b TeamComment) int {
		return compareAsc(a.CreatedAt, b.CreatedAt)
	})
	return comments
}

// Reports lists the latest revision of every report, newest first.
func (s *AppDataStore) Reports() []*model.Report { return s.reports.Reports() }

// Report returns the latest revision for a slug.
func (s *AppDataStore) Report(slug string) (*model.Report, bool) { return s.reports.Report(slug) }

// ReportVersions returns the revision history for a slug, newest
// first.
func (s *AppDataStore) ReportVersions(slug string) []*model.Report { return s.reports.Versions(slug) }

// PreviousReportVersion returns the revision immediately older than
// the given one.
func (s *AppDataStore) PreviousReportVersion(slug, eventID string) (*model.Report, bool) {
	return s.reports.PreviousVersion(slug, eventID)
}

// DocumentThreads returns the discussion threads for a report
// coordinate, most recently active first.
func (s *AppDataStore) DocumentThreads(docATag string) []*model.Thread {
	ids := s.reports.DocumentThreads(docATag)
	threads := make([]*model.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.threads[id]; ok {
			threads = append(threads, t)
		}
	}
	slices.SortFunc(threads, func(a, b *model.Thread) int {
		return compareNewest(a.LastActivity, a.ID, b.LastActivity, b.ID)
	})
	return threads
}

// AgentChatter returns the ambient agent-activity feed, newest first.
func (s *AppDataStore) AgentChatter() []model.AgentChatter { return slices.Clone(s.chatter) }

// PendingApprovals returns backend approval requests awaiting a
// decision, oldest first.
func (s *AppDataStore) PendingApprovals() []model.PendingBackendApproval {
	return s.trust.Pending()
}

// ApprovedBackends returns the approved backend set for persistence.
func (s *AppDataStore) ApprovedBackends() []string { return s.trust.Approved() }

// BlockedBackends returns the blocked backend set for persistence.
func (s *AppDataStore) BlockedBackends() []string { return s.trust.Blocked() }

// MessagesByDay returns the per-day message counts over the window.
func (s *AppDataStore) MessagesByDay(numDays int, now uint64) []DayCount {
	return s.stats.MessagesByDay(numDays, now)
}

// TokensByHour returns the per-hour LLM activity over the window.
func (s *AppDataStore) TokensByHour(numHours int, now uint64) []HourStat {
	return s.stats.TokensByHour(numHours, now)
}

// RuntimeByDay returns the per-day LLM runtime over the window.
func (s *AppDataStore) RuntimeByDay(numDays int, now uint64) []RuntimeDay {
	return s.stats.RuntimeByDay(numDays, now)
}

// TodayRuntimeMS returns the runtime accumulated today (UTC).
func (s *AppDataStore) TodayRuntimeMS(now uint64) uint64 { return s.stats.TodayRuntimeMS(now) }

// TotalCostUSD returns the accumulated LLM cost.
func (s *AppDataStore) TotalCostUSD() float64 { return s.costTotalUSD }

// TotalCostUSDSince sums the LLM cost of messages at or after the
// given timestamp.
func (s *AppDataStore) TotalCostUSDSince(since uint64) float64 {
	var total float64
	for _, entry := range s.costEntries {
		if entry.At >= since {
			total += entry.USD
		}
	}
	return total
}

// SearchConversationsHierarchical finds conversations matching every
// '+'-joined term against title, root content, and message content.
// A match anywhere in a delegation tree surfaces the tree's root
// conversation; results order by effective_last_activity descending.
// visibleProjects, when non-empty, restricts results to those project
// coordinates.
func (s *AppDataStore) SearchConversationsHierarchical(query string, visibleProjects []string) []*model.Thread {
	terms := search.ParseTerms(query)
	if len(terms) == 0 {
		return nil
	}

	rootIDs := make(map[string]bool)
	for id, t := range s.threads {
		if !s.threadMatches(t, terms) {
			continue
		}
		root := s.searchRoot(id)
		rootIDs[root] = true
	}

	var results []*model.Thread
	for id := range rootIDs {
		t, ok := s.threads[id]
		if !ok {
			continue
		}
		if len(visibleProjects) > 0 && !slices.Contains(visibleProjects, t.ProjectATag()) {
			continue
		}
		results = append(results, t)
	}
	sortThreadsByActivity(results)
	return results
}

// threadMatches reports whether all terms appear across the thread's
// searchable text: title, root content, and its messages.
func (s *AppDataStore) threadMatches(t *model.Thread, terms []string) bool {
	var b strings.Builder
	b.WriteString(t.Title)
	b.WriteByte('\n')
	b.WriteString(t.Content)
	for _, m := range s.messagesByThread[t.ID] {
		b.WriteByte('\n')
		b.WriteString(m.Content)
	}
	return search.ContainsAllTerms(b.String(), terms)
}

// searchRoot walks to the top of the delegation chain containing a
// conversation, bounded against cycles.
func (s *AppDataStore) searchRoot(threadID string) string {
	seen := map[string]bool{threadID: true}
	cur := threadID
	for range maxHierarchyDepth {
		parent := s.parentOf(cur)
		if parent == "" || seen[parent] {
			return cur
		}
		seen[parent] = true
		cur = parent
	}
	return cur
}

func sortThreadsByActivity(threads []*model.Thread) {
	slices.SortFunc(threads, func(a, b *model.Thread) int {
		return compareNewest(a.EffectiveLastActivity, a.ID, b.EffectiveLastActivity, b.ID)
	})
}
