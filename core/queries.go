// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"

	"github.com/tenex-chat/tenex/model"
	"github.com/tenex-chat/tenex/store"
)

// The read surface. Every method takes the shared read lock, so reads
// run concurrently with each other but never observe a half-applied
// batch.

func (r *Runtime) Projects() []*model.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Projects()
}

func (r *Runtime) Project(aTag string) (*model.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Project(aTag)
}

func (r *Runtime) ProjectStatus(aTag string) (*model.ProjectStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ProjectStatus(aTag)
}

func (r *Runtime) IsProjectOnline(aTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsProjectOnline(aTag, r.clock.Now())
}

func (r *Runtime) IsProjectBusy(aTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsProjectBusy(aTag)
}

func (r *Runtime) OnlineAgents(aTag string) []model.ProjectAgent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.OnlineAgents(aTag, r.clock.Now())
}

func (r *Runtime) ProjectConfigOptions(aTag string) (models, tools, branches []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ProjectConfigOptions(aTag)
}

func (r *Runtime) Threads(projectATag string) []*model.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Threads(projectATag)
}

func (r *Runtime) AllRecentThreads(limit int) []*model.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.AllRecentThreads(limit)
}

func (r *Runtime) ThreadByID(id string) (*model.Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ThreadByID(id)
}

func (r *Runtime) Messages(threadID string) []*model.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Messages(threadID)
}

func (r *Runtime) RuntimeAncestors(threadID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.RuntimeAncestors(threadID)
}

func (r *Runtime) QTagRelationships() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.QTagRelationships()
}

func (r *Runtime) ParentConversationFromMessages(threadID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ParentConversationFromMessages(threadID)
}

func (r *Runtime) HierarchicalRuntime(threadID string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.HierarchicalRuntime(threadID)
}

func (r *Runtime) StatusbarRuntime() (ms uint64, hasActive bool, activeCount int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.StatusbarRuntime(uint64(r.clock.Now().Unix()))
}

func (r *Runtime) InboxItems() []model.InboxItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.InboxItems()
}

func (r *Runtime) InboxReadIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.InboxReadIDs()
}

func (r *Runtime) Bookmarks(pubkey string) (*model.BookmarkList, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Bookmarks(pubkey)
}

func (r *Runtime) IsBookmarked(itemID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsBookmarked(r.currentUser, itemID)
}

func (r *Runtime) Profile(pubkey string) (*model.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Profile(pubkey)
}

func (r *Runtime) AgentDefinitions() []*model.AgentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.AgentDefinitions()
}

func (r *Runtime) Nudges() []*model.Nudge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Nudges()
}

func (r *Runtime) Skills() []*model.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Skills()
}

func (r *Runtime) MCPTools() []*model.MCPTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.MCPTools()
}

func (r *Runtime) TeamPacks() []*model.TeamPack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TeamPacks()
}

func (r *Runtime) AllTeams() []store.TeamWithStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.AllTeams()
}

func (r *Runtime) TeamComments(teamID string) []store.TeamComment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TeamComments(teamID)
}

func (r *Runtime) Lesson(id string) (*model.Lesson, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Lesson(id)
}

func (r *Runtime) Lessons() []*model.Lesson {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Lessons()
}

func (r *Runtime) Reports() []*model.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Reports()
}

func (r *Runtime) Report(slug string) (*model.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Report(slug)
}

func (r *Runtime) ReportVersions(slug string) []*model.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ReportVersions(slug)
}

func (r *Runtime) PreviousReportVersion(slug, eventID string) (*model.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.PreviousReportVersion(slug, eventID)
}

func (r *Runtime) DocumentThreads(docATag string) []*model.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.DocumentThreads(docATag)
}

func (r *Runtime) AgentChatter() []model.AgentChatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.AgentChatter()
}

func (r *Runtime) PendingApprovals() []model.PendingBackendApproval {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.PendingApprovals()
}

func (r *Runtime) ApprovedBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.ApprovedBackends()
}

func (r *Runtime) BlockedBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.BlockedBackends()
}

func (r *Runtime) SearchConversationsHierarchical(query string, visibleProjects []string) []*model.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.SearchConversationsHierarchical(query, visibleProjects)
}

func (r *Runtime) MessagesByDay(numDays int) []store.DayCount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.MessagesByDay(numDays, uint64(r.clock.Now().Unix()))
}

func (r *Runtime) TokensByHour(numHours int) []store.HourStat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TokensByHour(numHours, uint64(r.clock.Now().Unix()))
}

func (r *Runtime) RuntimeByDay(numDays int) []store.RuntimeDay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.RuntimeByDay(numDays, uint64(r.clock.Now().Unix()))
}

func (r *Runtime) TodayRuntimeMS() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TodayRuntimeMS(uint64(r.clock.Now().Unix()))
}

func (r *Runtime) TotalCostUSD() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TotalCostUSD()
}

func (r *Runtime) TotalCostUSDSince(since uint64) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.TotalCostUSDSince(since)
}

// Mutating conveniences below take the write lock.

// MarkInboxRead marks one inbox item read and reports whether it
// existed.
func (r *Runtime) MarkInboxRead(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.MarkInboxRead(id)
}

// ApproveBackend approves a backend pubkey and applies any statuses
// it queued while pending. The drained change notifications are
// returned to the caller rather than delivered on Events.
func (r *Runtime) ApproveBackend(backend string) []store.CoreEvent {
	now := uint64(r.clock.Now().Unix())
	r.mu.Lock()
	events := r.state.ApproveBackend(backend, now)
	coords := r.state.DrainPendingSubscriptions()
	r.mu.Unlock()
	r.announceProjects(coords)
	return events
}

// BlockBackend blocks a backend pubkey; its queued and future
// statuses are dropped.
func (r *Runtime) BlockBackend(backend string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.BlockBackend(backend)
}

// ToggleBookmark flips one event id in the user's bookmark list and
// submits the full replacement list for publishing. The local state
// updates only when the published note round-trips.
func (r *Runtime) ToggleBookmark(ctx context.Context, itemID string) error {
	r.mu.RLock()
	var items []string
	if list, ok := r.state.Bookmarks(r.currentUser); ok {
		for id := range list.BookmarkedIDs {
			if id != itemID {
				items = append(items, id)
			}
		}
		if !list.BookmarkedIDs[itemID] {
			items = append(items, itemID)
		}
	} else {
		items = []string{itemID}
	}
	r.mu.RUnlock()
	return r.Submit(ctx, PublishBookmarkList{ItemIDs: items})
}
