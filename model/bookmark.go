// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// BookmarkList is a user's kind-14202 replaceable bookmark list. Each
// e-tag is one bookmarked nudge or skill event id; the newest
// published list per user is authoritative.
type BookmarkList struct {
	Pubkey string `json:"pubkey"`
	// BookmarkedIDs maps event id to true. Toggling re-publishes the
	// whole list.
	BookmarkedIDs map[string]bool `json:"bookmarked_ids,omitempty"`
	LastUpdated   uint64          `json:"last_updated"`
}

// ParseBookmarkList parses a kind-14202 note.
func ParseBookmarkList(n *nostr.Note) (*BookmarkList, bool) {
	if n.Kind != nostr.KindBookmarkList {
		return nil, false
	}

	list := &BookmarkList{
		Pubkey:        n.PubkeyHex(),
		BookmarkedIDs: make(map[string]bool),
		LastUpdated:   n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if tag.Name() != "e" || len(tag) < 2 {
			continue
		}
		if id := normalizeID(tag.Value()); id != "" {
			list.BookmarkedIDs[id] = true
		}
	}
	return list, true
}

// Contains reports whether the given item id is bookmarked.
func (l *BookmarkList) Contains(itemID string) bool {
	return l.BookmarkedIDs[itemID]
}
