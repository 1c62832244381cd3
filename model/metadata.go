// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// ConversationMetadata is a kind-513 event retitling or annotating a
// thread. The latest per thread applies; empty fields leave the
// thread's current value alone.
type ConversationMetadata struct {
	ThreadID        string `json:"thread_id"`
	Title           string `json:"title,omitempty"`
	StatusLabel     string `json:"status_label,omitempty"`
	CurrentActivity string `json:"current_activity,omitempty"`
	Summary         string `json:"summary,omitempty"`
	CreatedAt       uint64 `json:"created_at"`
}

// ParseConversationMetadata parses a kind-513 note. The e-tag naming
// the target thread is mandatory.
func ParseConversationMetadata(n *nostr.Note) (*ConversationMetadata, bool) {
	if n.Kind != nostr.KindConversationMetadata {
		return nil, false
	}

	md := &ConversationMetadata{CreatedAt: n.CreatedAt}
	for _, tag := range n.Tags {
		switch tag.Name() {
		case "e":
			if md.ThreadID == "" && len(tag) >= 2 {
				md.ThreadID = normalizeID(tag.Value())
			}
		case "title":
			md.Title = tag.Value()
		case "status-label":
			md.StatusLabel = tag.Value()
		case "status-current-activity":
			md.CurrentActivity = tag.Value()
		case "summary":
			md.Summary = tag.Value()
		}
	}
	if md.ThreadID == "" {
		return nil, false
	}
	return md, true
}
