// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// DefaultThreadTitle is used when a thread root has no title tag and
// no kind-513 metadata has supplied one yet.
const DefaultThreadTitle = "Untitled"

// Thread is a conversation root: a kind-1 note with an a-tag and no
// e/E tag. Status fields are filled in later from kind-513 metadata;
// LastActivity and EffectiveLastActivity are maintained by the store
// as messages and child conversations arrive.
type Thread struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Pubkey  string `json:"pubkey"`
	// ATags holds every a-tag value in tag order. The first project
	// coordinate among them is the owning project; a report
	// coordinate marks a document-discussion thread.
	ATags     []string `json:"a_tags,omitempty"`
	CreatedAt uint64   `json:"created_at"`
	// LastActivity is max(own created_at, metadata created_at,
	// message created_at) over everything seen for this thread.
	LastActivity uint64 `json:"last_activity"`
	// EffectiveLastActivity is max(LastActivity, descendants'
	// EffectiveLastActivity); threads list in descending order of it.
	EffectiveLastActivity uint64 `json:"effective_last_activity"`
	StatusLabel           string `json:"status_label,omitempty"`
	CurrentActivity       string `json:"current_activity,omitempty"`
	Summary               string `json:"summary,omitempty"`
	// ParentConversationID comes from the delegation (or legacy
	// "parent") tag. Self-references are rejected at parse time.
	ParentConversationID string    `json:"parent_conversation_id,omitempty"`
	PTags                []string  `json:"p_tags,omitempty"`
	AskEvent             *AskEvent `json:"ask_event,omitempty"`
	IsScheduled          bool      `json:"is_scheduled,omitempty"`
}

// ParseThread parses a kind-1 conversation root. It returns ok=false
// for replies (any non-skill e/E tag) and for kind-1 notes with no
// a-tag at all.
func ParseThread(n *nostr.Note) (*Thread, bool) {
	if n.Kind != nostr.KindText {
		return nil, false
	}

	t := &Thread{
		ID:                    n.IDHex(),
		Content:               n.Content,
		Pubkey:                n.PubkeyHex(),
		CreatedAt:             n.CreatedAt,
		LastActivity:          n.CreatedAt,
		EffectiveLastActivity: n.CreatedAt,
	}

	var title string
	for _, tag := range n.Tags {
		switch tag.Name() {
		case "a":
			if len(tag) >= 2 {
				t.ATags = append(t.ATags, tag.Value())
			}
		case "e", "E":
			if !skillMarked(tag) {
				return nil, false
			}
		case "title":
			title = tag.Value()
		case "delegation", "parent":
			if len(tag) >= 2 {
				t.ParentConversationID = normalizeID(tag.Value())
			}
		case "p":
			if len(tag) >= 2 {
				t.PTags = append(t.PTags, normalizeID(tag.Value()))
			}
		case "scheduled-task-id":
			t.IsScheduled = true
		}
	}
	if len(t.ATags) == 0 {
		return nil, false
	}
	if t.ParentConversationID == t.ID {
		t.ParentConversationID = ""
	}

	if title == "" {
		title = DefaultThreadTitle
	}
	t.Title = title
	t.AskEvent = ParseAskEvent(n)
	return t, true
}

// ProjectATag returns the thread's owning project coordinate.
func (t *Thread) ProjectATag() string { return firstProjectATag(t.ATags) }

// DocumentATag returns the report coordinate this thread discusses,
// or "" when it is not a document-discussion thread.
func (t *Thread) DocumentATag() string { return firstDocumentATag(t.ATags) }

// InvolvesUser reports whether the thread was created by or p-tags
// the given pubkey.
func (t *Thread) InvolvesUser(pubkey string) bool {
	if t.Pubkey == pubkey {
		return true
	}
	for _, p := range t.PTags {
		if p == pubkey {
			return true
		}
	}
	return false
}
