// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// InboxStore holds the derived notification items, sorted by
// created_at descending. Read state is tracked both on the items and
// in a separate id set so an item re-added after a restart keeps its
// read flag.
//
// Construct with [NewInboxStore]. Not safe for concurrent use.
type InboxStore struct {
	items   []model.InboxItem
	readIDs map[string]bool
}

// NewInboxStore returns an inbox seeded with previously persisted
// read ids. A nil slice is fine.
func NewInboxStore(readIDs []string) *InboxStore {
	inbox := &InboxStore{readIDs: make(map[string]bool, len(readIDs))}
	for _, id := range readIDs {
		inbox.readIDs[id] = true
	}
	return inbox
}

// Add inserts an item at its sort position. Items already present by
// id are ignored; items whose id is in the read set come in already
// read.
func (i *InboxStore) Add(item model.InboxItem) {
	for _, existing := range i.items {
		if existing.ID == item.ID {
			return
		}
	}
	if i.readIDs[item.ID] {
		item.IsRead = true
	}
	// Partition point: first index with created_at not greater than
	// the new item's, keeping the slice sorted descending.
	pos, _ := slices.BinarySearchFunc(i.items, item, func(a, b model.InboxItem) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})
	i.items = slices.Insert(i.items, pos, item)
}

// MarkRead flags the item read and remembers the id. Reports whether
// an unread item was found.
func (i *InboxStore) MarkRead(id string) bool {
	i.readIDs[id] = true
	for idx := range i.items {
		if i.items[idx].ID == id && !i.items[idx].IsRead {
			i.items[idx].IsRead = true
			return true
		}
	}
	return false
}

// Items returns a copy of the inbox, newest first.
func (i *InboxStore) Items() []model.InboxItem {
	return slices.Clone(i.items)
}

// UnreadCount returns the number of unread items.
func (i *InboxStore) UnreadCount() int {
	count := 0
	for idx := range i.items {
		if !i.items[idx].IsRead {
			count++
		}
	}
	return count
}

// ReadIDs returns the persisted read-id set for the preferences
// layer, sorted for stable serialization.
func (i *InboxStore) ReadIDs() []string {
	ids := make([]string, 0, len(i.readIDs))
	for id := range i.readIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
