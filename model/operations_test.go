// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"slices"
	"testing"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
)

func TestParseOperationsStatusEventSelection(t *testing.T) {
	root := testutil.SeedIDHex(10)
	reply := testutil.SeedIDHex(11)

	t.Run("non-root preferred", func(t *testing.T) {
		note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
			nostr.NewTag("e", root, "", "root"),
			nostr.NewTag("e", reply),
		)
		s, ok := ParseOperationsStatus(note)
		if !ok {
			t.Fatal("ParseOperationsStatus failed")
		}
		if s.EventID != reply {
			t.Errorf("EventID = %s, want the non-root e-tag", s.EventID)
		}
		if s.ThreadID != root {
			t.Errorf("ThreadID = %s, want the root e-tag", s.ThreadID)
		}
	})

	t.Run("root fallback", func(t *testing.T) {
		note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
			nostr.NewTag("e", root, "", "root"))
		s, ok := ParseOperationsStatus(note)
		if !ok {
			t.Fatal("ParseOperationsStatus failed")
		}
		if s.EventID != root || s.ThreadID != root {
			t.Errorf("EventID = %s, ThreadID = %s, want %s for both", s.EventID, s.ThreadID, root)
		}
	})

	t.Run("no e-tag rejected", func(t *testing.T) {
		note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
			nostr.NewTag("p", testutil.SeedIDHex(3)))
		if _, ok := ParseOperationsStatus(note); ok {
			t.Error("status without e-tags accepted")
		}
	})
}

func TestParseOperationsStatusQTagThread(t *testing.T) {
	root := testutil.SeedIDHex(10)
	thread := testutil.SeedIDHex(12)
	note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
		nostr.NewTag("e", root, "", "root"),
		nostr.NewTag("q", thread),
	)
	s, ok := ParseOperationsStatus(note)
	if !ok {
		t.Fatal("ParseOperationsStatus failed")
	}
	if s.ThreadID != thread {
		t.Errorf("ThreadID = %s, q-tag must win over root e-tag", s.ThreadID)
	}
}

func TestParseOperationsStatusAgentsAndRuntime(t *testing.T) {
	pk1 := testutil.SeedIDHex(3)
	pk2 := testutil.SeedIDHex(4)
	note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
		nostr.NewTag("e", testutil.SeedIDHex(10)),
		nostr.NewTag("p", pk1),
		nostr.NewTag("p", pk2),
		nostr.NewTag("a", "31933:pk:proj"),
		nostr.NewTag("llm-runtime", "42"),
	)
	s, ok := ParseOperationsStatus(note)
	if !ok {
		t.Fatal("ParseOperationsStatus failed")
	}
	if !slices.Equal(s.AgentPubkeys, []string{pk1, pk2}) {
		t.Errorf("AgentPubkeys = %v", s.AgentPubkeys)
	}
	if s.ProjectCoordinate != "31933:pk:proj" {
		t.Errorf("ProjectCoordinate = %q", s.ProjectCoordinate)
	}
	if !s.HasLLMRuntime || s.LLMRuntimeSecs != 42 {
		t.Errorf("runtime = %d (has=%v), want 42", s.LLMRuntimeSecs, s.HasLLMRuntime)
	}
	if !s.IsActive() {
		t.Error("status with agents must be active")
	}
}

func TestParseOperationsStatusEmptyAgentList(t *testing.T) {
	note := newNote(nostr.KindOperationsStatus, 1, 2, 1000, "",
		nostr.NewTag("e", testutil.SeedIDHex(10)),
		nostr.NewTag("llm-runtime", "not-a-number"),
	)
	s, ok := ParseOperationsStatus(note)
	if !ok {
		t.Fatal("ParseOperationsStatus failed")
	}
	if s.IsActive() {
		t.Error("status with no p-tags must be inactive")
	}
	if s.HasLLMRuntime {
		t.Error("malformed llm-runtime tag must be ignored")
	}
}
