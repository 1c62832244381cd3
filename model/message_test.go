// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
)

func TestParseMessageRootMarker(t *testing.T) {
	root := testutil.SeedIDHex(10)
	note := newNote(nostr.KindText, 1, 2, 1000, "Message content",
		nostr.NewTag("e", root, "", "root"))

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if m.ThreadID != root {
		t.Errorf("ThreadID = %q, want %q", m.ThreadID, root)
	}
	if m.ReplyTo != "" {
		t.Errorf("ReplyTo = %q, want empty", m.ReplyTo)
	}
	if m.Content != "Message content" {
		t.Errorf("Content = %q", m.Content)
	}
}

func TestParseMessageRootAndReplyMarkers(t *testing.T) {
	root := testutil.SeedIDHex(10)
	parent := testutil.SeedIDHex(11)
	note := newNote(nostr.KindText, 1, 2, 1000, "Reply content",
		nostr.NewTag("e", root, "", "root"),
		nostr.NewTag("e", parent, "", "reply"))

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if m.ThreadID != root {
		t.Errorf("ThreadID = %q, want %q", m.ThreadID, root)
	}
	if m.ReplyTo != parent {
		t.Errorf("ReplyTo = %q, want %q", m.ReplyTo, parent)
	}
}

func TestParseMessageUnmarkedETags(t *testing.T) {
	first := testutil.SeedIDHex(10)
	second := testutil.SeedIDHex(11)
	note := newNote(nostr.KindText, 1, 2, 1000, "legacy threading",
		nostr.NewTag("e", first),
		nostr.NewTag("e", second))

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if m.ThreadID != first {
		t.Errorf("ThreadID = %q, want first unmarked e-tag %q", m.ThreadID, first)
	}
	if m.ReplyTo != second {
		t.Errorf("ReplyTo = %q, want second unmarked e-tag %q", m.ReplyTo, second)
	}
}

func TestParseMessageBinaryETag(t *testing.T) {
	raw := testutil.SeedID(10)
	tag := nostr.Tag{nostr.StringElement("e"), {ID: raw[:]}}
	note := newNote(nostr.KindText, 1, 2, 1000, "binary id", tag)

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if m.ThreadID != testutil.SeedIDHex(10) {
		t.Errorf("ThreadID = %q, want lowercase hex of binary id", m.ThreadID)
	}
}

func TestParseMessageUppercaseETag(t *testing.T) {
	root := testutil.SeedIDHex(10)
	note := newNote(nostr.KindText, 1, 2, 1000, "scoped reply",
		nostr.NewTag("E", root))

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if m.ThreadID != root {
		t.Errorf("ThreadID = %q, want %q", m.ThreadID, root)
	}
}

func TestParseMessageRejectsThreadRoot(t *testing.T) {
	note := newNote(nostr.KindText, 1, 2, 1000, "root note",
		nostr.NewTag("a", "31933:pk:proj"))
	if _, ok := ParseMessage(note); ok {
		t.Error("ParseMessage accepted a note without e-tags")
	}

	// A skill reference alone does not make a reply either.
	note = newNote(nostr.KindText, 1, 2, 1000, "root with skill",
		nostr.NewTag("a", "31933:pk:proj"),
		nostr.NewTag("e", testutil.SeedIDHex(9), "", "skill"))
	if _, ok := ParseMessage(note); ok {
		t.Error("ParseMessage accepted a skill-marked e-tag as threading")
	}
}

func TestParseMessageMetadataTags(t *testing.T) {
	root := testutil.SeedIDHex(10)
	delegated := testutil.SeedIDHex(12)
	note := newNote(nostr.KindText, 1, 2, 1000, "did the thing",
		nostr.NewTag("e", root, "", "root"),
		nostr.NewTag("q", delegated),
		nostr.NewTag("a", "31933:pk:proj"),
		nostr.NewTag("p", testutil.SeedIDHex(3)),
		nostr.NewTag("tool", "delegate"),
		nostr.NewTag("tool-args", `{"task":"build"}`),
		nostr.NewTag("llm-total-tokens", "1234"),
		nostr.NewTag("llm-runtime", "5000"),
		nostr.NewTag("llm-model", "claude"),
		nostr.NewTag("reasoning"),
		nostr.NewTag("branch", "feature/parser"),
	)

	m, ok := ParseMessage(note)
	if !ok {
		t.Fatal("ParseMessage failed")
	}
	if len(m.QTags) != 1 || m.QTags[0] != delegated {
		t.Errorf("QTags = %v", m.QTags)
	}
	if len(m.ATags) != 1 || m.ATags[0] != "31933:pk:proj" {
		t.Errorf("ATags = %v", m.ATags)
	}
	if m.ToolName != "delegate" || m.ToolArgs != `{"task":"build"}` {
		t.Errorf("tool = %q args = %q", m.ToolName, m.ToolArgs)
	}
	if m.LLMMetadata["total-tokens"] != "1234" || m.LLMMetadata["runtime"] != "5000" || m.LLMMetadata["model"] != "claude" {
		t.Errorf("LLMMetadata = %v", m.LLMMetadata)
	}
	if !m.IsReasoning {
		t.Error("IsReasoning = false")
	}
	if m.Branch != "feature/parser" {
		t.Errorf("Branch = %q", m.Branch)
	}
}

func TestHasAskTagForms(t *testing.T) {
	tests := []struct {
		name string
		tag  nostr.Tag
		want bool
	}{
		{"bare", nostr.NewTag("ask"), true},
		{"true", nostr.NewTag("ask", "true"), true},
		{"one", nostr.NewTag("ask", "1"), true},
		{"false", nostr.NewTag("ask", "false"), false},
		{"other name", nostr.NewTag("asking", "true"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			note := newNote(nostr.KindText, 1, 2, 1000, "", tc.tag)
			if got := HasAskTag(note); got != tc.want {
				t.Errorf("HasAskTag = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseAskEvent(t *testing.T) {
	note := newNote(nostr.KindText, 1, 2, 1000, "Please decide",
		nostr.NewTag("e", testutil.SeedIDHex(10), "", "root"),
		nostr.NewTag("title", "Deployment"),
		nostr.NewTag("question", "Target", "Where should we deploy?", "staging", "production"),
		nostr.NewTag("multiselect", "Features", "Which features?", "auth", "billing", "search"),
	)

	ask := ParseAskEvent(note)
	if ask == nil {
		t.Fatal("ParseAskEvent returned nil")
	}
	if ask.Title != "Deployment" || ask.Context != "Please decide" {
		t.Errorf("Title = %q Context = %q", ask.Title, ask.Context)
	}
	if len(ask.Questions) != 2 {
		t.Fatalf("Questions = %d, want 2", len(ask.Questions))
	}
	q := ask.Questions[0]
	if q.MultiSelect || q.Title != "Target" || q.Question != "Where should we deploy?" {
		t.Errorf("first question = %+v", q)
	}
	if len(q.Options) != 2 || q.Options[0] != "staging" {
		t.Errorf("suggestions = %v", q.Options)
	}
	q = ask.Questions[1]
	if !q.MultiSelect || len(q.Options) != 3 {
		t.Errorf("multiselect question = %+v", q)
	}

	plain := newNote(nostr.KindText, 1, 2, 1000, "no questions here")
	if ParseAskEvent(plain) != nil {
		t.Error("ParseAskEvent should return nil without question tags")
	}
}

func TestMessageFromThreadRoot(t *testing.T) {
	note := newNote(nostr.KindText, 5, 2, 1000, "Root as first message",
		nostr.NewTag("a", "31933:pk:proj"),
		nostr.NewTag("title", "My thread"),
		nostr.NewTag("q", testutil.SeedIDHex(12)),
		nostr.NewTag("llm-runtime", "250"),
	)

	m, ok := MessageFromThreadRoot(note)
	if !ok {
		t.Fatal("MessageFromThreadRoot failed")
	}
	if m.ID != testutil.SeedIDHex(5) || m.ThreadID != m.ID {
		t.Errorf("ID = %q ThreadID = %q, want thread's own id for both", m.ID, m.ThreadID)
	}
	if m.ReplyTo != "" {
		t.Errorf("ReplyTo = %q, want empty", m.ReplyTo)
	}
	if len(m.QTags) != 1 {
		t.Errorf("QTags = %v", m.QTags)
	}
	if m.LLMMetadata["runtime"] != "250" {
		t.Errorf("LLMMetadata = %v", m.LLMMetadata)
	}

	reply := newNote(nostr.KindText, 6, 2, 1000, "a reply",
		nostr.NewTag("e", testutil.SeedIDHex(5), "", "root"))
	if _, ok := MessageFromThreadRoot(reply); ok {
		t.Error("MessageFromThreadRoot accepted a reply")
	}
}
