// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"
	"time"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
	"github.com/tenex-chat/tenex/model"
)

// Seeds used across the orchestrator tests. The current user is seed
// 1, the backend seed 9, agents 2 and 3.
var (
	testUser    = testutil.SeedIDHex(1)
	testAgent   = testutil.SeedIDHex(2)
	testBackend = testutil.SeedIDHex(9)
	testProject = "31933:" + testutil.SeedIDHex(9) + ":proj"
)

func newTestStore(opts Options) *AppDataStore {
	if opts.CurrentUser == "" {
		opts.CurrentUser = testUser
	}
	return NewAppDataStore(opts)
}

func note(kind uint16, idSeed, pubkeySeed byte, at uint64, content string, tags ...nostr.Tag) *nostr.Note {
	return &nostr.Note{
		ID:        testutil.SeedID(idSeed),
		Pubkey:    testutil.SeedID(pubkeySeed),
		Kind:      kind,
		CreatedAt: at,
		Content:   content,
		Tags:      tags,
	}
}

func threadNote(idSeed, pubkeySeed byte, at uint64, content string, tags ...nostr.Tag) *nostr.Note {
	tags = append([]nostr.Tag{nostr.NewTag("a", testProject)}, tags...)
	return note(nostr.KindText, idSeed, pubkeySeed, at, content, tags...)
}

func replyNote(idSeed, pubkeySeed byte, at uint64, rootSeed byte, content string, tags ...nostr.Tag) *nostr.Note {
	tags = append([]nostr.Tag{nostr.NewTag("e", testutil.SeedIDHex(rootSeed), "", "root")}, tags...)
	return note(nostr.KindText, idSeed, pubkeySeed, at, content, tags...)
}

func projectNote(idSeed byte, at uint64, tags ...nostr.Tag) *nostr.Note {
	tags = append([]nostr.Tag{nostr.NewTag("d", "proj")}, tags...)
	return note(nostr.KindProject, idSeed, 9, at, "A project", tags...)
}

func statusNote(idSeed byte, at uint64, tags ...nostr.Tag) *nostr.Note {
	tags = append([]nostr.Tag{nostr.NewTag("a", testProject)}, tags...)
	return note(nostr.KindProjectStatus, idSeed, 9, at, "", tags...)
}

func TestThreadRootDoublesAsFirstMessage(t *testing.T) {
	s := newTestStore(Options{})

	events := s.HandleEvent(threadNote(10, 2, 100, "Initial request"), 1000)
	if len(events) != 1 || events[0].Message == nil {
		t.Fatalf("HandleEvent events = %+v, want one message event", events)
	}
	threadID := testutil.SeedIDHex(10)
	if events[0].Message.ID != threadID || events[0].Message.ThreadID != threadID {
		t.Errorf("root message = %+v", events[0].Message)
	}
	messages := s.Messages(threadID)
	if len(messages) != 1 || messages[0].Content != "Initial request" {
		t.Errorf("Messages = %+v", messages)
	}

	// Replaying the root is a no-op.
	if events := s.HandleEvent(threadNote(10, 2, 100, "Initial request"), 1001); len(events) != 0 {
		t.Errorf("replay produced %d events", len(events))
	}
	if got := s.Messages(threadID); len(got) != 1 {
		t.Errorf("replay duplicated the root message: %d", len(got))
	}
}

func TestOrphanMessagesReconcileOnRootArrival(t *testing.T) {
	s := newTestStore(Options{})

	// Two replies land before their conversation root.
	s.HandleEvent(replyNote(11, 2, 300, 10, "second"), 1000)
	s.HandleEvent(replyNote(12, 2, 200, 10, "first"), 1000)
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)

	threadID := testutil.SeedIDHex(10)
	thread, ok := s.ThreadByID(threadID)
	if !ok {
		t.Fatal("thread missing")
	}
	if thread.LastActivity != 300 {
		t.Errorf("LastActivity = %d, want the newest orphan's 300", thread.LastActivity)
	}
	messages := s.Messages(threadID)
	if len(messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(messages))
	}
	for i, want := range []uint64{100, 200, 300} {
		if messages[i].CreatedAt != want {
			t.Errorf("messages[%d].CreatedAt = %d, want %d", i, messages[i].CreatedAt, want)
		}
	}
}

func TestMessageBumpsThreadActivity(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 250, 10, "reply"), 1000)

	thread, _ := s.ThreadByID(testutil.SeedIDHex(10))
	if thread.LastActivity != 250 || thread.EffectiveLastActivity != 250 {
		t.Errorf("activity = %d/%d, want 250/250", thread.LastActivity, thread.EffectiveLastActivity)
	}
}

func TestInboxAskAndMention(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 1, 100, "root", nostr.NewTag("title", "Deploy plan")), 1000)

	// An agent asks the user a question.
	s.HandleEvent(replyNote(11, 2, 200, 10, "Which target?",
		nostr.NewTag("p", testUser),
		nostr.NewTag("ask"),
		nostr.NewTag("question", "Target", "Where to deploy?", "staging", "production"),
	), 1000)
	// A plain mention.
	s.HandleEvent(replyNote(12, 3, 300, 10, "FYI for you",
		nostr.NewTag("p", testUser)), 1000)
	// A reply not addressed to the user generates nothing.
	s.HandleEvent(replyNote(13, 3, 400, 10, "internal chatter",
		nostr.NewTag("p", testAgent)), 1000)

	items := s.InboxItems()
	if len(items) != 2 {
		t.Fatalf("len(InboxItems) = %d, want 2", len(items))
	}
	if items[0].EventType != model.InboxMention || items[0].CreatedAt != 300 {
		t.Errorf("items[0] = %+v, want the mention", items[0])
	}
	ask := items[1]
	if ask.EventType != model.InboxAsk || ask.AskEvent == nil {
		t.Errorf("items[1] = %+v, want the ask with its questions", ask)
	}
	if ask.Title != "Deploy plan" {
		t.Errorf("ask.Title = %q, want the conversation title", ask.Title)
	}
	if ask.ThreadID != testutil.SeedIDHex(10) {
		t.Errorf("ask.ThreadID = %q", ask.ThreadID)
	}
}

func TestInboxTitleFallsBackToContentSnippet(t *testing.T) {
	s := newTestStore(Options{})
	// No root yet, so no title to borrow.
	s.HandleEvent(replyNote(11, 2, 200, 10, "First line of the question\nsecond line",
		nostr.NewTag("p", testUser)), 1000)

	items := s.InboxItems()
	if len(items) != 1 {
		t.Fatalf("len(InboxItems) = %d", len(items))
	}
	if items[0].Title != "First line of the question" {
		t.Errorf("Title = %q", items[0].Title)
	}
}

func TestInboxUserReplyMarksRead(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 1, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "Question for you",
		nostr.NewTag("p", testUser), nostr.NewTag("ask")), 1000)

	if items := s.InboxItems(); len(items) != 1 || items[0].IsRead {
		t.Fatalf("precondition: one unread item, got %+v", items)
	}

	// The user answers: reply marker names the ask event.
	s.HandleEvent(replyNote(12, 1, 300, 10, "staging please",
		nostr.NewTag("e", testutil.SeedIDHex(11), "", "reply")), 1000)

	items := s.InboxItems()
	if len(items) != 1 || !items[0].IsRead {
		t.Errorf("items = %+v, want the ask marked read", items)
	}
	if ids := s.InboxReadIDs(); len(ids) != 1 || ids[0] != testutil.SeedIDHex(11) {
		t.Errorf("InboxReadIDs = %v", ids)
	}
}

func TestProjectReplacementEitherOrder(t *testing.T) {
	s := newTestStore(Options{})

	newer := projectNote(21, 200, nostr.NewTag("title", "Newer"))
	older := projectNote(20, 100, nostr.NewTag("title", "Older"))
	s.HandleEvent(newer, 1000)
	s.HandleEvent(older, 1000)

	p, ok := s.Project(testProject)
	if !ok || p.Title != "Newer" {
		t.Errorf("Project = %+v, stale revision must not replace", p)
	}

	// The coordinate needs exactly one subscription.
	if pending := s.DrainPendingSubscriptions(); len(pending) != 1 || pending[0] != testProject {
		t.Errorf("pending subscriptions = %v", pending)
	}
	if pending := s.DrainPendingSubscriptions(); len(pending) != 0 {
		t.Errorf("second drain = %v, want empty", pending)
	}
}

func TestProjectTombstoneTieBreak(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(projectNote(20, 200, nostr.NewTag("title", "Live")), 1000)
	// A tombstone with the same created_at wins the tie.
	s.HandleEvent(projectNote(21, 200, nostr.NewTag("deleted")), 1000)

	if _, ok := s.Project(testProject); ok {
		t.Error("deleted project still returned")
	}
	if got := s.Projects(); len(got) != 0 {
		t.Errorf("Projects = %v", got)
	}

	// And the equal-time live revision cannot resurrect it.
	s.HandleEvent(projectNote(22, 200, nostr.NewTag("title", "Back")), 1000)
	if _, ok := s.Project(testProject); ok {
		t.Error("tombstoned project resurrected by an equal-time revision")
	}
}

func TestHierarchicalActivityOrdersThreads(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 10, "parent A"), 1000)
	s.HandleEvent(threadNote(12, 2, 30, "sibling C"), 1000)

	// The delegated child belongs to another project but bumps its
	// parent's effective activity.
	child := note(nostr.KindText, 11, 2, 50, "child B",
		nostr.NewTag("a", "31933:"+testBackend+":other"),
		nostr.NewTag("delegation", testutil.SeedIDHex(10)))
	s.HandleEvent(child, 1000)

	threads := s.Threads(testProject)
	if len(threads) != 2 {
		t.Fatalf("len(Threads) = %d, want 2", len(threads))
	}
	if threads[0].ID != testutil.SeedIDHex(10) {
		t.Errorf("threads[0] = %q, want parent A first on effective activity", threads[0].ID)
	}
	if threads[0].EffectiveLastActivity != 50 {
		t.Errorf("eff(A) = %d, want the child's 50", threads[0].EffectiveLastActivity)
	}
	if threads[1].ID != testutil.SeedIDHex(12) {
		t.Errorf("threads[1] = %q, want sibling C", threads[1].ID)
	}
}

func TestBackendTrustFlow(t *testing.T) {
	s := newTestStore(Options{})

	events := s.HandleEvent(statusNote(30, 100, nostr.NewTag("agent", testAgent, "claude")), 1000)
	if len(events) != 1 || events[0].PendingApproval == nil {
		t.Fatalf("first unknown-backend status events = %+v", events)
	}
	if _, ok := s.ProjectStatus(testProject); ok {
		t.Error("status applied before approval")
	}

	// A newer status from the same backend updates the queue silently.
	if events := s.HandleEvent(statusNote(31, 200, nostr.NewTag("agent", testAgent, "claude")), 1001); len(events) != 0 {
		t.Errorf("second pending status events = %+v", events)
	}
	if pending := s.PendingApprovals(); len(pending) != 1 || pending[0].Status.CreatedAt != 200 {
		t.Errorf("PendingApprovals = %+v", pending)
	}

	events = s.ApproveBackend(testBackend, 1002)
	if len(events) != 1 || events[0].ProjectStatus == nil {
		t.Fatalf("ApproveBackend events = %+v", events)
	}
	status, ok := s.ProjectStatus(testProject)
	if !ok || status.CreatedAt != 200 || status.LastSeenAt != 1002 {
		t.Errorf("applied status = %+v", status)
	}

	// Once approved, statuses apply directly.
	if events := s.HandleEvent(statusNote(32, 300), 1003); len(events) != 1 || events[0].ProjectStatus == nil {
		t.Errorf("post-approval status events = %+v", events)
	}
}

func TestBlockedBackendDropped(t *testing.T) {
	s := newTestStore(Options{BlockedBackends: []string{testBackend}})
	if events := s.HandleEvent(statusNote(30, 100), 1000); len(events) != 0 {
		t.Errorf("blocked backend produced events: %+v", events)
	}
	if pending := s.PendingApprovals(); len(pending) != 0 {
		t.Errorf("blocked backend queued approvals: %+v", pending)
	}
}

func TestStatusStaleReplayBumpsLastSeen(t *testing.T) {
	s := newTestStore(Options{ApprovedBackends: []string{testBackend}})
	s.HandleEvent(statusNote(30, 200), 1000)
	s.HandleEvent(statusNote(31, 100), 2000)

	status, _ := s.ProjectStatus(testProject)
	if status.CreatedAt != 200 {
		t.Errorf("CreatedAt = %d, stale replay must not replace", status.CreatedAt)
	}
	if status.LastSeenAt != 2000 {
		t.Errorf("LastSeenAt = %d, every arrival bumps it", status.LastSeenAt)
	}

	if !s.IsProjectOnline(testProject, time.Unix(2030, 0)) {
		t.Error("project offline 30s after last status")
	}
	if s.IsProjectOnline(testProject, time.Unix(2060, 0)) {
		t.Error("project online at exactly the staleness threshold")
	}
}

func TestQTagHierarchyHonorsDenylist(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)

	delegated := testutil.SeedIDHex(40)
	stored := testutil.SeedIDHex(41)
	s.HandleEvent(replyNote(11, 2, 200, 10, "delegating",
		nostr.NewTag("tool", "delegate"),
		nostr.NewTag("q", delegated)), 1000)
	s.HandleEvent(replyNote(12, 2, 300, 10, "writing a report",
		nostr.NewTag("tool", "report_write"),
		nostr.NewTag("q", stored)), 1000)

	if got := s.RuntimeAncestors(delegated); len(got) != 1 || got[0] != testutil.SeedIDHex(10) {
		t.Errorf("RuntimeAncestors(delegated) = %v", got)
	}
	if got := s.RuntimeAncestors(stored); len(got) != 0 {
		t.Errorf("RuntimeAncestors(report target) = %v, storage q-tags must not register", got)
	}
}

func TestHierarchicalRuntimeRollsUp(t *testing.T) {
	s := newTestStore(Options{})
	root := testutil.SeedIDHex(10)
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "work",
		nostr.NewTag("llm-runtime", "1500"),
		nostr.NewTag("tool", "delegate"),
		nostr.NewTag("q", testutil.SeedIDHex(20))), 1000)

	// The delegated conversation with its own runtime.
	s.HandleEvent(threadNote(20, 2, 210, "child root"), 1000)
	s.HandleEvent(replyNote(21, 2, 300, 20, "child work",
		nostr.NewTag("llm-runtime", "2500")), 1000)

	if got := s.HierarchicalRuntime(root); got != 4000 {
		t.Errorf("HierarchicalRuntime = %d, want 4000", got)
	}
}

func TestDeletionRemovesThreadAndMessages(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "reply"), 1000)

	s.HandleEvent(note(nostr.KindDeletion, 50, 2, 300, "",
		nostr.NewTag("e", testutil.SeedIDHex(10))), 1000)

	if _, ok := s.ThreadByID(testutil.SeedIDHex(10)); ok {
		t.Error("thread survived deletion")
	}
	if got := s.Messages(testutil.SeedIDHex(10)); len(got) != 0 {
		t.Errorf("messages survived thread deletion: %v", got)
	}
	if got := s.Threads(testProject); len(got) != 0 {
		t.Errorf("Threads still lists the deleted root: %v", got)
	}
}

func TestDeletionRemovesSingleMessage(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "reply"), 1000)

	s.HandleEvent(note(nostr.KindDeletion, 50, 2, 300, "",
		nostr.NewTag("e", testutil.SeedIDHex(11))), 1000)

	messages := s.Messages(testutil.SeedIDHex(10))
	if len(messages) != 1 || messages[0].ID != testutil.SeedIDHex(10) {
		t.Errorf("messages = %+v, want only the root", messages)
	}
}

func TestChatterFeedRequiresKnownProject(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "unseen project",
		nostr.NewTag("a", testProject)), 1000)
	if got := s.AgentChatter(); len(got) != 0 {
		t.Fatalf("chatter recorded for an unknown project: %+v", got)
	}

	s.HandleEvent(projectNote(20, 50), 1000)
	s.HandleEvent(replyNote(12, 2, 300, 10, "now visible",
		nostr.NewTag("a", testProject)), 1000)

	chatter := s.AgentChatter()
	if len(chatter) != 1 || chatter[0].Content != "now visible" {
		t.Fatalf("chatter = %+v", chatter)
	}
	if chatter[0].Kind != model.ChatterMessage || chatter[0].ProjectATag != testProject {
		t.Errorf("chatter entry = %+v", chatter[0])
	}
}

func TestLessonFeedsChatter(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(note(nostr.KindLesson, 60, 2, 100, "Always pin versions",
		nostr.NewTag("title", "Pinning"),
		nostr.NewTag("category", "build")), 1000)

	chatter := s.AgentChatter()
	if len(chatter) != 1 || chatter[0].Kind != model.ChatterLesson {
		t.Fatalf("chatter = %+v", chatter)
	}
	if chatter[0].Title != "Pinning" || chatter[0].Category != "build" {
		t.Errorf("lesson entry = %+v", chatter[0])
	}
	if got := s.Lessons(); len(got) != 1 {
		t.Errorf("Lessons = %v", got)
	}
}

func TestPendingMetadataAppliesWhenRootArrives(t *testing.T) {
	s := newTestStore(Options{})
	threadID := testutil.SeedIDHex(10)

	// Two metadata revisions race ahead of the root; only the newest
	// is held.
	s.HandleEvent(note(nostr.KindConversationMetadata, 70, 2, 150, "",
		nostr.NewTag("e", threadID),
		nostr.NewTag("title", "Early title")), 1000)
	s.HandleEvent(note(nostr.KindConversationMetadata, 71, 2, 250, "",
		nostr.NewTag("e", threadID),
		nostr.NewTag("title", "Final title")), 1000)

	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)

	thread, ok := s.ThreadByID(threadID)
	if !ok {
		t.Fatal("thread missing")
	}
	if thread.Title != "Final title" {
		t.Errorf("Title = %q, want the newest pending metadata applied", thread.Title)
	}
	if thread.LastActivity != 250 {
		t.Errorf("LastActivity = %d", thread.LastActivity)
	}

	// A stale metadata revision cannot roll the title back.
	s.HandleEvent(note(nostr.KindConversationMetadata, 72, 2, 200, "",
		nostr.NewTag("e", threadID),
		nostr.NewTag("title", "Old title")), 1000)
	thread, _ = s.ThreadByID(threadID)
	if thread.Title != "Final title" {
		t.Errorf("Title = %q after stale metadata", thread.Title)
	}
}

func TestSearchSurfacesDelegationRoot(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "parent about infra"), 1000)
	s.HandleEvent(threadNote(20, 2, 200, "delegated detail",
		nostr.NewTag("delegation", testutil.SeedIDHex(10))), 1000)
	s.HandleEvent(replyNote(21, 2, 300, 20, "the flamingo incident"), 1000)

	results := s.SearchConversationsHierarchical("flamingo", nil)
	if len(results) != 1 || results[0].ID != testutil.SeedIDHex(10) {
		t.Fatalf("results = %+v, want the delegation root", results)
	}

	// The project filter applies to the surfaced root.
	if got := s.SearchConversationsHierarchical("flamingo", []string{"31933:none:x"}); len(got) != 0 {
		t.Errorf("filtered results = %+v", got)
	}
	if got := s.SearchConversationsHierarchical("flamingo", []string{testProject}); len(got) != 1 {
		t.Errorf("matching filter results = %+v", got)
	}
}

func TestSearchRequiresAllTerms(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "alpha beta"), 1000)
	s.HandleEvent(threadNote(11, 2, 100, "alpha only"), 1000)

	results := s.SearchConversationsHierarchical("alpha+beta", nil)
	if len(results) != 1 || results[0].ID != testutil.SeedIDHex(10) {
		t.Errorf("results = %+v", results)
	}
}

func TestStatusbarRuntimeFromOperations(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)

	s.HandleEvent(note(nostr.KindOperationsStatus, 80, 9, 500, "",
		nostr.NewTag("e", testutil.SeedIDHex(10), "", "root"),
		nostr.NewTag("p", testAgent)), 1000)

	ms, active, count := s.StatusbarRuntime(1030)
	if !active || count != 1 {
		t.Errorf("active = %v count = %d", active, count)
	}
	if ms != 30000 {
		t.Errorf("ms = %d, want 30000 of unconfirmed elapsed time", ms)
	}
	if !s.IsProjectBusy(testProject) {
		t.Error("IsProjectBusy = false with a live operation")
	}

	// The agent's message confirms runtime and restarts the estimate.
	s.HandleEvent(replyNote(11, 2, 600, 10, "done so far",
		nostr.NewTag("llm-runtime", "25000")), 1030)
	ms, _, _ = s.StatusbarRuntime(1040)
	if ms != 10000 {
		t.Errorf("ms = %d after runtime confirmation, want 10000", ms)
	}
}

func TestCostAccumulates(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(threadNote(10, 2, 100, "root"), 1000)
	s.HandleEvent(replyNote(11, 2, 200, 10, "a",
		nostr.NewTag("llm-cost-usd", "0.25")), 1000)
	s.HandleEvent(replyNote(12, 2, 300, 10, "b",
		nostr.NewTag("llm-cost-usd", "0.50")), 1000)
	// Negative and unparseable costs are ignored.
	s.HandleEvent(replyNote(13, 2, 400, 10, "c",
		nostr.NewTag("llm-cost-usd", "-1")), 1000)

	if got := s.TotalCostUSD(); got != 0.75 {
		t.Errorf("TotalCostUSD = %v, want 0.75", got)
	}
	if got := s.TotalCostUSDSince(300); got != 0.50 {
		t.Errorf("TotalCostUSDSince(300) = %v, want 0.50", got)
	}
}

func TestTeamSocialCounts(t *testing.T) {
	s := newTestStore(Options{})
	teamID := testutil.SeedIDHex(90)
	s.HandleEvent(note(nostr.KindTeamPack, 90, 2, 100, `{"description":"a team"}`,
		nostr.NewTag("d", "builders"),
		nostr.NewTag("title", "Builders")), 1000)

	s.HandleEvent(note(nostr.KindReaction, 91, 3, 200, "+",
		nostr.NewTag("e", teamID)), 1000)
	s.HandleEvent(note(nostr.KindTeamComment, 92, 3, 300, "nice lineup",
		nostr.NewTag("e", teamID)), 1000)
	// Replays are ignored.
	s.HandleEvent(note(nostr.KindReaction, 91, 3, 200, "+",
		nostr.NewTag("e", teamID)), 1000)

	teams := s.AllTeams()
	if len(teams) != 1 {
		t.Fatalf("AllTeams = %+v", teams)
	}
	if teams[0].ReactionCount != 1 || teams[0].CommentCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", teams[0].ReactionCount, teams[0].CommentCount)
	}
	comments := s.TeamComments(teamID)
	if len(comments) != 1 || comments[0].Content != "nice lineup" {
		t.Errorf("TeamComments = %+v", comments)
	}
}

func TestProfileNewerWins(t *testing.T) {
	s := newTestStore(Options{})
	s.HandleEvent(note(nostr.KindProfile, 95, 2, 200, `{"name":"newer"}`), 1000)
	s.HandleEvent(note(nostr.KindProfile, 96, 2, 100, `{"name":"older"}`), 1000)

	profile, ok := s.Profile(testAgent)
	if !ok || profile.Name != "newer" {
		t.Errorf("Profile = %+v", profile)
	}
}

func TestDocumentThreadsAttach(t *testing.T) {
	s := newTestStore(Options{})
	doc := "30023:" + testAgent + ":design"
	s.HandleEvent(note(nostr.KindReport, 97, 2, 100, "# Design\nbody",
		nostr.NewTag("d", "design"),
		nostr.NewTag("a", testProject)), 1000)

	s.HandleEvent(note(nostr.KindText, 98, 1, 200, "discussing the doc",
		nostr.NewTag("a", doc),
		nostr.NewTag("a", testProject)), 1000)

	threads := s.DocumentThreads(doc)
	if len(threads) != 1 || threads[0].ID != testutil.SeedIDHex(98) {
		t.Errorf("DocumentThreads = %+v", threads)
	}
	if _, ok := s.Report("design"); !ok {
		t.Error("report missing")
	}
}
