// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/model"
)

// DefaultStaleness is how long after the last status event a
// project's backend counts as offline.
const DefaultStaleness = 60 * time.Second

// chatterCapacity bounds the agent-chatter feed.
const chatterCapacity = 100

// CoreEvent is a derived change emitted by [AppDataStore.HandleEvent]
// for fan-out to consumers. Exactly one field is non-nil.
type CoreEvent struct {
	Message         *model.Message
	ProjectStatus   *model.ProjectStatus
	PendingApproval *model.PendingBackendApproval
}

// TeamReaction is a NIP-25 reaction to a team pack.
type TeamReaction struct {
	ID        string `json:"id"`
	Pubkey    string `json:"pubkey"`
	Content   string `json:"content"`
	CreatedAt uint64 `json:"created_at"`
}

// TeamComment is a NIP-22 comment on a team pack.
type TeamComment struct {
	ID        string `json:"id"`
	Pubkey    string `json:"pubkey"`
	Content   string `json:"content"`
	CreatedAt uint64 `json:"created_at"`
}

// Options configures an AppDataStore.
type Options struct {
	// CurrentUser is the hex pubkey of the local user; inbox
	// generation and statistics compare authors against it.
	CurrentUser string

	// Staleness overrides [DefaultStaleness] when positive.
	Staleness time.Duration

	// InboxReadIDs seeds the persisted read set.
	InboxReadIDs []string

	// ApprovedBackends and BlockedBackends seed the trust sets.
	ApprovedBackends []string
	BlockedBackends  []string

	Logger *slog.Logger
}

// AppDataStore is the orchestrator: it owns every sub-store and the
// top-level entity collections, routes incoming notes by kind, and
// maintains the cross-cutting indices (thread roots per project, the
// delegation graph, hierarchical activity).
//
// Construct with [NewAppDataStore]. Not safe for concurrent use; the
// core runtime serializes access behind its lock.
type AppDataStore struct {
	currentUser string
	staleness   time.Duration
	logger      *slog.Logger

	projects         map[string]*model.Project // by coordinate, tombstones included
	threads          map[string]*model.Thread
	messagesByThread map[string][]*model.Message
	messageIDs       map[string]bool
	threadRoots      map[string][]string // project coordinate → thread ids
	profiles         map[string]*model.Profile
	statuses         map[string]*model.ProjectStatus // by coordinate
	bookmarks        map[string]*model.BookmarkList  // by user pubkey

	// metadataAt tracks the newest kind-513 applied per thread;
	// pendingMetadata holds metadata that arrived before its thread.
	metadataAt      map[string]uint64
	pendingMetadata map[string]*model.ConversationMetadata

	content    *ContentStore
	reports    *ReportsStore
	inbox      *InboxStore
	trust      *TrustStore
	operations *OperationsStore
	tracking   *AgentTrackingState
	stats      *StatisticsStore
	hierarchy  *RuntimeHierarchy

	// The merged delegation graph across all three edge sources
	// (thread delegation tags, rendered q-tags, message delegation
	// tags), used for activity propagation and runtime rollups.
	parentIndex map[string]string
	childIndex  map[string][]string

	chatter    []model.AgentChatter
	chatterIDs map[string]bool

	teamReactions map[string][]TeamReaction
	teamComments  map[string][]TeamComment
	socialIDs     map[string]bool

	costTotalUSD float64
	costEntries  []CostEntry

	pendingSubscriptions []string
}

// CostEntry records one message's LLM cost contribution.
type CostEntry struct {
	At  uint64  `json:"at"`
	USD float64 `json:"usd"`
}

// NewAppDataStore returns an empty store.
func NewAppDataStore(opts Options) *AppDataStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	staleness := opts.Staleness
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &AppDataStore{
		currentUser:      opts.CurrentUser,
		staleness:        staleness,
		logger:           logger,
		projects:         make(map[string]*model.Project),
		threads:          make(map[string]*model.Thread),
		messagesByThread: make(map[string][]*model.Message),
		messageIDs:       make(map[string]bool),
		threadRoots:      make(map[string][]string),
		profiles:         make(map[string]*model.Profile),
		statuses:         make(map[string]*model.ProjectStatus),
		bookmarks:        make(map[string]*model.BookmarkList),
		metadataAt:       make(map[string]uint64),
		pendingMetadata:  make(map[string]*model.ConversationMetadata),
		content:          NewContentStore(),
		reports:          NewReportsStore(),
		inbox:            NewInboxStore(opts.InboxReadIDs),
		trust:            NewTrustStore(opts.ApprovedBackends, opts.BlockedBackends),
		operations:       NewOperationsStore(),
		tracking:         NewAgentTracking(),
		stats:            NewStatisticsStore(),
		hierarchy:        NewRuntimeHierarchy(),
		parentIndex:      make(map[string]string),
		childIndex:       make(map[string][]string),
		chatterIDs:       make(map[string]bool),
		teamReactions:    make(map[string][]TeamReaction),
		teamComments:     make(map[string][]TeamComment),
		socialIDs:        make(map[string]bool),
	}
}

// HandleEvent routes one note. now is the wall clock in Unix seconds,
// injected so staleness and tracking are testable. Malformed notes
// are dropped; routing never fails.
func (s *AppDataStore) HandleEvent(n *nostr.Note, now uint64) []CoreEvent {
	switch n.Kind {
	case nostr.KindProfile:
		s.handleProfile(n)
	case nostr.KindText:
		return s.handleText(n, now)
	case nostr.KindDeletion:
		s.handleDeletion(n)
	case nostr.KindReaction:
		s.handleReaction(n)
	case nostr.KindConversationMetadata:
		s.handleMetadata(n)
	case nostr.KindTeamComment:
		s.handleTeamComment(n)
	case nostr.KindLesson:
		s.handleLesson(n)
	case nostr.KindAgentDefinition:
		if def, ok := model.ParseAgentDefinition(n); ok {
			s.content.InsertAgentDefinition(def)
		}
	case nostr.KindMCPTool:
		if tool, ok := model.ParseMCPTool(n); ok {
			s.content.InsertMCPTool(tool)
		}
	case nostr.KindNudge:
		if nudge, ok := model.ParseNudge(n); ok {
			s.content.InsertNudge(nudge)
		}
	case nostr.KindSkill:
		if skill, ok := model.ParseSkill(n); ok {
			s.content.InsertSkill(skill)
		}
	case nostr.KindBookmarkList:
		s.handleBookmarkList(n)
	case nostr.KindProjectStatus:
		return s.handleProjectStatus(n, now)
	case nostr.KindOperationsStatus:
		s.handleOperations(n, now)
	case nostr.KindReport:
		if report, ok := model.ParseReport(n); ok {
			s.reports.Add(report)
		}
	case nostr.KindProject:
		s.handleProject(n)
	case nostr.KindTeamPack:
		if pack, ok := model.ParseTeamPack(n); ok {
			s.content.InsertTeamPack(pack)
		}
	default:
		s.logger.Debug("unrecognized kind", "kind", n.Kind, "id", n.IDHex())
	}
	return nil
}

func (s *AppDataStore) handleProfile(n *nostr.Note) {
	profile, ok := model.ParseProfile(n)
	if !ok {
		return
	}
	cur, exists := s.profiles[profile.Pubkey]
	if exists && !newerWins(cur.CreatedAt, "", profile.CreatedAt, "") {
		return
	}
	s.profiles[profile.Pubkey] = profile
}

func (s *AppDataStore) handleText(n *nostr.Note, now uint64) []CoreEvent {
	if m, ok := model.ParseMessage(n); ok {
		return s.handleMessage(n, m, now)
	}
	t, ok := model.ParseThread(n)
	if !ok {
		return nil
	}
	return s.handleThread(n, t)
}

func (s *AppDataStore) handleThread(n *nostr.Note, t *model.Thread) []CoreEvent {
	if _, exists := s.threads[t.ID]; exists {
		return nil
	}
	s.threads[t.ID] = t

	project := t.ProjectATag()
	if project != "" && !slices.Contains(s.threadRoots[project], t.ID) {
		s.threadRoots[project] = append(s.threadRoots[project], t.ID)
	}
	if doc := t.DocumentATag(); doc != "" {
		s.reports.AttachThread(doc, t.ID)
	}
	if t.ParentConversationID != "" {
		s.addDelegationEdge(t.ParentConversationID, t.ID)
	}

	// Metadata that raced ahead of the root applies now.
	if md, ok := s.pendingMetadata[t.ID]; ok {
		delete(s.pendingMetadata, t.ID)
		s.applyMetadata(t, md)
	}

	var events []CoreEvent
	// The root doubles as the conversation's first message.
	if rootMsg, ok := model.MessageFromThreadRoot(n); ok && !s.messageIDs[rootMsg.ID] {
		s.messageIDs[rootMsg.ID] = true
		s.insertMessage(rootMsg)
		s.stats.RecordMessage(rootMsg, s.currentUser)
		s.recordCost(rootMsg)
		events = append(events, CoreEvent{Message: rootMsg})
	}

	// Messages may have arrived before their root: reconcile
	// last_activity to the newest of them.
	for _, m := range s.messagesByThread[t.ID] {
		if m.CreatedAt > t.LastActivity {
			t.LastActivity = m.CreatedAt
		}
	}
	s.bumpActivity(t.ID)
	return events
}

func (s *AppDataStore) handleMessage(n *nostr.Note, m *model.Message, now uint64) []CoreEvent {
	if s.messageIDs[m.ID] {
		return nil
	}
	s.messageIDs[m.ID] = true
	s.insertMessage(m)

	if t, ok := s.threads[m.ThreadID]; ok && m.CreatedAt > t.LastActivity {
		t.LastActivity = m.CreatedAt
	}

	s.stats.RecordMessage(m, s.currentUser)
	s.recordCost(m)

	// Rendered q-tags register runtime delegation edges.
	if QTagRendered(m.ToolName) {
		for _, q := range m.QTags {
			s.hierarchy.Register(m.ThreadID, q)
			s.addDelegationEdge(m.ThreadID, q)
		}
	}
	if m.DelegationTag != "" && m.DelegationTag != m.ThreadID {
		s.addDelegationEdge(m.DelegationTag, m.ThreadID)
	}

	// A message-borne runtime confirmation restarts the unconfirmed
	// estimate for its conversation.
	if _, ok := m.LLMMetadata["runtime"]; ok {
		s.tracking.ResetTimer(m.ThreadID, m.Pubkey, m.CreatedAt, now)
	}

	s.applyInboxEffects(n, m)
	s.pushChatterMessage(m)
	s.bumpActivity(m.ThreadID)
	return []CoreEvent{{Message: m}}
}

// applyInboxEffects implements the cross-cutting kind-1 rules: the
// user replying to an inbox event marks it read; an ask or mention
// addressed to the user generates an item.
func (s *AppDataStore) applyInboxEffects(n *nostr.Note, m *model.Message) {
	if s.currentUser == "" {
		return
	}
	if m.Pubkey == s.currentUser {
		if m.ReplyTo != "" {
			s.inbox.MarkRead(m.ReplyTo)
		}
		return
	}
	if !slices.Contains(m.PTags, s.currentUser) {
		return
	}

	eventType := model.InboxMention
	if model.HasAskTag(n) {
		eventType = model.InboxAsk
	}
	s.inbox.Add(model.InboxItem{
		ID:           m.ID,
		EventType:    eventType,
		Title:        s.inboxTitle(m),
		ProjectATag:  firstProjectTag(m.ATags),
		AuthorPubkey: m.Pubkey,
		CreatedAt:    m.CreatedAt,
		ThreadID:     m.ThreadID,
		AskEvent:     m.AskEvent,
	})
}

// inboxTitle prefers the conversation title, falling back to a
// content snippet.
func (s *AppDataStore) inboxTitle(m *model.Message) string {
	if t, ok := s.threads[m.ThreadID]; ok && t.Title != model.DefaultThreadTitle {
		return t.Title
	}
	line, _, _ := strings.Cut(m.Content, "\n")
	runes := []rune(line)
	if len(runes) > 80 {
		runes = runes[:80]
	}
	return string(runes)
}

func (s *AppDataStore) pushChatterMessage(m *model.Message) {
	project := firstProjectTag(m.ATags)
	if project == "" {
		if t, ok := s.threads[m.ThreadID]; ok {
			project = t.ProjectATag()
		}
	}
	if project == "" {
		return
	}
	if _, known := s.projects[project]; !known {
		return
	}
	s.pushChatter(model.AgentChatter{
		Kind:         model.ChatterMessage,
		ID:           m.ID,
		Content:      m.Content,
		AuthorPubkey: m.Pubkey,
		CreatedAt:    m.CreatedAt,
		ProjectATag:  project,
		ThreadID:     m.ThreadID,
	})
}

func (s *AppDataStore) pushChatter(entry model.AgentChatter) {
	if s.chatterIDs[entry.ID] {
		return
	}
	s.chatterIDs[entry.ID] = true
	s.chatter = append([]model.AgentChatter{entry}, s.chatter...)
	if len(s.chatter) > chatterCapacity {
		evicted := s.chatter[chatterCapacity:]
		for _, e := range evicted {
			delete(s.chatterIDs, e.ID)
		}
		s.chatter = s.chatter[:chatterCapacity]
	}
}

func (s *AppDataStore) handleMetadata(n *nostr.Note) {
	md, ok := model.ParseConversationMetadata(n)
	if !ok {
		return
	}
	t, ok := s.threads[md.ThreadID]
	if !ok {
		// Keep the newest pending metadata per thread until the root
		// arrives.
		if cur, exists := s.pendingMetadata[md.ThreadID]; !exists || md.CreatedAt > cur.CreatedAt {
			s.pendingMetadata[md.ThreadID] = md
		}
		return
	}
	s.applyMetadata(t, md)
	s.bumpActivity(t.ID)
}

// applyMetadata applies a kind-513 to its thread, latest wins. Empty
// fields leave the current value alone.
func (s *AppDataStore) applyMetadata(t *model.Thread, md *model.ConversationMetadata) {
	if md.CreatedAt < s.metadataAt[t.ID] {
		return
	}
	s.metadataAt[t.ID] = md.CreatedAt
	if md.Title != "" {
		t.Title = md.Title
	}
	if md.StatusLabel != "" {
		t.StatusLabel = md.StatusLabel
	}
	if md.CurrentActivity != "" {
		t.CurrentActivity = md.CurrentActivity
	}
	if md.Summary != "" {
		t.Summary = md.Summary
	}
	if md.CreatedAt > t.LastActivity {
		t.LastActivity = md.CreatedAt
	}
}

func (s *AppDataStore) handleProject(n *nostr.Note) {
	p, ok := model.ParseProject(n)
	if !ok {
		return
	}
	key := p.ATag()
	cur, exists := s.projects[key]
	if exists {
		if p.CreatedAt == cur.CreatedAt && p.Deleted != cur.Deleted {
			// Tombstone wins the tie so a deleted project cannot be
			// resurrected by an equal-time revision.
			if !p.Deleted {
				return
			}
		} else if !newerWins(cur.CreatedAt, cur.EventID, p.CreatedAt, p.EventID) {
			return
		}
	}
	s.projects[key] = p

	if !exists && !p.Deleted {
		s.pendingSubscriptions = append(s.pendingSubscriptions, key)
	}
}

func (s *AppDataStore) handleProjectStatus(n *nostr.Note, now uint64) []CoreEvent {
	status, ok := model.ParseProjectStatus(n)
	if !ok {
		return nil
	}
	backend := status.BackendPubkey
	switch {
	case s.trust.IsBlocked(backend):
		return nil
	case s.trust.IsApproved(backend):
		s.applyStatus(status, now)
		return []CoreEvent{{ProjectStatus: status}}
	default:
		approval := model.PendingBackendApproval{
			BackendPubkey:     backend,
			ProjectCoordinate: status.ProjectCoordinate,
			FirstSeenAt:       now,
			Status:            status,
		}
		if s.trust.AddPending(approval) {
			return []CoreEvent{{PendingApproval: &approval}}
		}
		return nil
	}
}

// applyStatus upserts a status into project_statuses, monotonic by
// (created_at, id) per coordinate. Every arrival bumps last_seen_at
// on the stored record, replayed or not.
func (s *AppDataStore) applyStatus(status *model.ProjectStatus, now uint64) {
	cur, exists := s.statuses[status.ProjectCoordinate]
	if exists && !newerWins(cur.CreatedAt, cur.EventID, status.CreatedAt, status.EventID) {
		cur.LastSeenAt = now
		return
	}
	status.LastSeenAt = now
	s.statuses[status.ProjectCoordinate] = status
}

// ApproveBackend trusts a backend, applies its queued statuses, and
// returns them as CoreEvents for fan-out.
func (s *AppDataStore) ApproveBackend(backend string, now uint64) []CoreEvent {
	statuses := s.trust.Approve(backend)
	events := make([]CoreEvent, 0, len(statuses))
	for _, status := range statuses {
		s.applyStatus(status, now)
		events = append(events, CoreEvent{ProjectStatus: status})
	}
	return events
}

// BlockBackend distrusts a backend and drops its queued statuses.
func (s *AppDataStore) BlockBackend(backend string) {
	s.trust.Block(backend)
}

func (s *AppDataStore) handleOperations(n *nostr.Note, now uint64) {
	status, ok := model.ParseOperationsStatus(n)
	if !ok {
		return
	}
	s.operations.Upsert(status)
	s.tracking.Apply(status, now)
}

func (s *AppDataStore) handleBookmarkList(n *nostr.Note) {
	list, ok := model.ParseBookmarkList(n)
	if !ok {
		return
	}
	cur, exists := s.bookmarks[list.Pubkey]
	if exists && list.LastUpdated < cur.LastUpdated {
		return
	}
	s.bookmarks[list.Pubkey] = list
}

func (s *AppDataStore) handleLesson(n *nostr.Note) {
	lesson, ok := model.ParseLesson(n)
	if !ok {
		return
	}
	s.content.InsertLesson(lesson)
	s.pushChatter(model.AgentChatter{
		Kind:         model.ChatterLesson,
		ID:           lesson.ID,
		Content:      lesson.Content,
		AuthorPubkey: lesson.Pubkey,
		CreatedAt:    lesson.CreatedAt,
		Title:        lesson.Title,
		Category:     lesson.Category,
	})
}

func (s *AppDataStore) handleReaction(n *nostr.Note) {
	id := n.IDHex()
	if s.socialIDs[id] {
		return
	}
	target := firstETagValue(n)
	if target == "" {
		return
	}
	s.socialIDs[id] = true
	s.teamReactions[target] = append(s.teamReactions[target], TeamReaction{
		ID:        id,
		Pubkey:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	})
}

func (s *AppDataStore) handleTeamComment(n *nostr.Note) {
	id := n.IDHex()
	if s.socialIDs[id] {
		return
	}
	target := firstETagValue(n)
	if target == "" {
		return
	}
	s.socialIDs[id] = true
	s.teamComments[target] = append(s.teamComments[target], TeamComment{
		ID:        id,
		Pubkey:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	})
}

// handleDeletion applies NIP-09: every e-tagged id is removed from
// whichever collection holds it.
func (s *AppDataStore) handleDeletion(n *nostr.Note) {
	for _, tag := range n.Tags {
		name := tag.Name()
		if (name != "e" && name != "E") || len(tag) < 2 {
			continue
		}
		s.deleteByID(strings.ToLower(tag.Value()))
	}
}

func (s *AppDataStore) deleteByID(id string) {
	s.content.Delete(id)
	s.reports.Delete(id)

	if t, ok := s.threads[id]; ok {
		delete(s.threads, id)
		if project := t.ProjectATag(); project != "" {
			roots := s.threadRoots[project]
			if idx := slices.Index(roots, id); idx >= 0 {
				s.threadRoots[project] = slices.Delete(roots, idx, idx+1)
			}
		}
		for _, m := range s.messagesByThread[id] {
			delete(s.messageIDs, m.ID)
		}
		delete(s.messagesByThread, id)
		return
	}

	// A single message: drop it and reconcile nothing else; activity
	// stays monotonic.
	if !s.messageIDs[id] {
		return
	}
	delete(s.messageIDs, id)
	for threadID, messages := range s.messagesByThread {
		idx := slices.IndexFunc(messages, func(m *model.Message) bool { return m.ID == id })
		if idx >= 0 {
			s.messagesByThread[threadID] = slices.Delete(messages, idx, idx+1)
			return
		}
	}
}

// insertMessage places a message at its created_at-ascending position
// within its thread.
func (s *AppDataStore) insertMessage(m *model.Message) {
	messages := s.messagesByThread[m.ThreadID]
	pos, _ := slices.BinarySearchFunc(messages, m, func(a, b *model.Message) int {
		if c := compareAsc(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	s.messagesByThread[m.ThreadID] = slices.Insert(messages, pos, m)
}

func (s *AppDataStore) recordCost(m *model.Message) {
	raw, ok := m.LLMMetadata["cost-usd"]
	if !ok {
		return
	}
	usd, err := strconv.ParseFloat(raw, 64)
	if err != nil || usd < 0 {
		return
	}
	s.costTotalUSD += usd
	s.costEntries = append(s.costEntries, CostEntry{At: m.CreatedAt, USD: usd})
}

// addDelegationEdge records a parent→child edge in the merged
// delegation graph. First parent wins; self-edges are ignored.
func (s *AppDataStore) addDelegationEdge(parent, child string) {
	if parent == "" || child == "" || parent == child {
		return
	}
	if _, ok := s.parentIndex[child]; ok {
		return
	}
	s.parentIndex[child] = parent
	s.childIndex[parent] = append(s.childIndex[parent], child)
}

// parentOf resolves a thread's parent conversation: the thread's own
// delegation tag first, then the runtime hierarchy, then delegation
// tags on its messages (all already merged into parentIndex).
func (s *AppDataStore) parentOf(threadID string) string {
	if t, ok := s.threads[threadID]; ok && t.ParentConversationID != "" && t.ParentConversationID != threadID {
		return t.ParentConversationID
	}
	if parent, ok := s.hierarchy.Parent(threadID); ok {
		return parent
	}
	if parent, ok := s.parentIndex[threadID]; ok {
		return parent
	}
	return ""
}

// bumpActivity recomputes effective_last_activity for the thread and
// propagates upward through its ancestors. Bounded by depth and a
// seen-set against malformed cycles.
func (s *AppDataStore) bumpActivity(threadID string) {
	seen := make(map[string]bool)
	cur := threadID
	for range maxHierarchyDepth {
		if cur == "" || seen[cur] {
			return
		}
		seen[cur] = true
		s.recomputeEffective(cur)
		cur = s.parentOf(cur)
	}
}

func (s *AppDataStore) recomputeEffective(threadID string) {
	t, ok := s.threads[threadID]
	if !ok {
		return
	}
	eff := t.LastActivity
	for _, child := range s.childIndex[threadID] {
		if childThread, ok := s.threads[child]; ok && childThread.EffectiveLastActivity > eff {
			eff = childThread.EffectiveLastActivity
		}
	}
	t.EffectiveLastActivity = eff
}

// DrainPendingSubscriptions returns and clears the project
// coordinates whose threads and messages still need event-database
// subscriptions, in discovery order.
func (s *AppDataStore) DrainPendingSubscriptions() []string {
	pending := s.pendingSubscriptions
	s.pendingSubscriptions = nil
	return pending
}

func firstProjectTag(aTags []string) string {
	for _, a := range aTags {
		if strings.HasPrefix(a, "31933:") {
			return a
		}
	}
	if len(aTags) > 0 {
		return aTags[0]
	}
	return ""
}

func firstETagValue(n *nostr.Note) string {
	for _, tag := range n.Tags {
		name := tag.Name()
		if (name == "e" || name == "E") && len(tag) >= 2 {
			return strings.ToLower(tag.Value())
		}
	}
	return ""
}
