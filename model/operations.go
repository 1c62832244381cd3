// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strconv"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// OperationsStatus is the ephemeral kind-24133 event listing the
// agents currently working on an event. An empty agent list means the
// operation finished; the store removes its entry.
type OperationsStatus struct {
	// EventID is the event being worked on: the first non-root
	// e-tag, falling back to the first root-marked one.
	EventID           string   `json:"event_id"`
	AgentPubkeys      []string `json:"agent_pubkeys,omitempty"`
	ProjectCoordinate string   `json:"project_coordinate,omitempty"`
	CreatedAt         uint64   `json:"created_at"`
	// ThreadID is the conversation root, from the q-tag when present
	// and otherwise from a root-marked e-tag.
	ThreadID string `json:"thread_id,omitempty"`
	// LLMRuntimeSecs is the confirmed runtime contribution from the
	// llm-runtime tag; counted once per NoteID.
	LLMRuntimeSecs uint64 `json:"llm_runtime_secs,omitempty"`
	HasLLMRuntime  bool   `json:"has_llm_runtime,omitempty"`
	// NoteID is the 24133 note's own id, the dedup key for runtime
	// accounting.
	NoteID string `json:"note_id"`
}

// ParseOperationsStatus parses a kind-24133 note. At least one e-tag
// is mandatory; malformed tags are skipped rather than rejected.
func ParseOperationsStatus(n *nostr.Note) (*OperationsStatus, bool) {
	if n.Kind != nostr.KindOperationsStatus {
		return nil, false
	}

	s := &OperationsStatus{
		CreatedAt: n.CreatedAt,
		NoteID:    n.IDHex(),
	}

	var rootETags, otherETags []string
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "e":
			id := normalizeID(tag.Value())
			if tag.At(3) == "root" {
				rootETags = append(rootETags, id)
			} else {
				otherETags = append(otherETags, id)
			}
		case "q":
			if s.ThreadID == "" {
				s.ThreadID = normalizeID(tag.Value())
			}
		case "p":
			s.AgentPubkeys = append(s.AgentPubkeys, normalizeID(tag.Value()))
		case "a":
			if s.ProjectCoordinate == "" {
				s.ProjectCoordinate = tag.Value()
			}
		case "llm-runtime":
			if secs, err := strconv.ParseUint(tag.Value(), 10, 64); err == nil {
				s.LLMRuntimeSecs = secs
				s.HasLLMRuntime = true
			}
		}
	}

	switch {
	case len(otherETags) > 0:
		s.EventID = otherETags[0]
	case len(rootETags) > 0:
		s.EventID = rootETags[0]
	default:
		return nil, false
	}
	if s.ThreadID == "" && len(rootETags) > 0 {
		s.ThreadID = rootETags[0]
	}
	return s, true
}

// IsActive reports whether any agents are still working.
func (s *OperationsStatus) IsActive() bool { return len(s.AgentPubkeys) > 0 }
