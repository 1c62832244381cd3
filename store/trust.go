// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// TrustStore tracks backend trust decisions. A backend pubkey is in
// at most one of the approved, blocked, or pending sets; moving it
// into one removes it from the others. Pending entries hold the
// status payloads that arrived before the user decided, so approval
// can apply them retroactively.
//
// Construct with [NewTrustStore]. Not safe for concurrent use.
type TrustStore struct {
	approved map[string]bool
	blocked  map[string]bool

	// pending maps backend pubkey to its undecided approvals, one per
	// project coordinate, each holding the newest status seen.
	pending map[string][]model.PendingBackendApproval
}

// NewTrustStore returns a trust store seeded with the persisted
// approved and blocked sets. Nil slices are fine.
func NewTrustStore(approved, blocked []string) *TrustStore {
	t := &TrustStore{
		approved: make(map[string]bool, len(approved)),
		blocked:  make(map[string]bool, len(blocked)),
		pending:  make(map[string][]model.PendingBackendApproval),
	}
	for _, pk := range approved {
		t.approved[pk] = true
	}
	for _, pk := range blocked {
		// Approval wins when the persisted sets disagree.
		if !t.approved[pk] {
			t.blocked[pk] = true
		}
	}
	return t
}

// IsApproved reports whether the backend is trusted.
func (t *TrustStore) IsApproved(backend string) bool { return t.approved[backend] }

// IsBlocked reports whether the backend is blocked.
func (t *TrustStore) IsBlocked(backend string) bool { return t.blocked[backend] }

// IsKnown reports whether the user has decided on the backend either
// way.
func (t *TrustStore) IsKnown(backend string) bool {
	return t.approved[backend] || t.blocked[backend]
}

// AddPending enqueues a status from an undecided backend. A pending
// entry already held for the same (backend, project) pair keeps
// whichever status payload is newer; the first-seen time is
// preserved. Reports whether this is the first pending entry for the
// pair, which is when the orchestrator surfaces an approval prompt.
func (t *TrustStore) AddPending(approval model.PendingBackendApproval) bool {
	entries := t.pending[approval.BackendPubkey]
	for i := range entries {
		if entries[i].ProjectCoordinate != approval.ProjectCoordinate {
			continue
		}
		cur := entries[i].Status
		if cur == nil || newerWins(cur.CreatedAt, cur.EventID, approval.Status.CreatedAt, approval.Status.EventID) {
			entries[i].Status = approval.Status
		}
		return false
	}
	t.pending[approval.BackendPubkey] = append(entries, approval)
	return true
}

// Approve trusts the backend and drains its pending entries,
// returning the contained statuses so the orchestrator can apply them
// and fan them out.
func (t *TrustStore) Approve(backend string) []*model.ProjectStatus {
	t.approved[backend] = true
	delete(t.blocked, backend)

	entries := t.pending[backend]
	delete(t.pending, backend)
	statuses := make([]*model.ProjectStatus, 0, len(entries))
	for i := range entries {
		if entries[i].Status != nil {
			statuses = append(statuses, entries[i].Status)
		}
	}
	return statuses
}

// Block distrusts the backend and forgets its pending entries.
func (t *TrustStore) Block(backend string) {
	t.blocked[backend] = true
	delete(t.approved, backend)
	delete(t.pending, backend)
}

// Pending returns every undecided approval across backends, ordered
// by first-seen time ascending.
func (t *TrustStore) Pending() []model.PendingBackendApproval {
	var all []model.PendingBackendApproval
	for _, entries := range t.pending {
		all = append(all, entries...)
	}
	slices.SortFunc(all, func(a, b model.PendingBackendApproval) int {
		switch {
		case a.FirstSeenAt < b.FirstSeenAt:
			return -1
		case a.FirstSeenAt > b.FirstSeenAt:
			return 1
		}
		return 0
	})
	return all
}

// Approved returns the approved set, sorted, for persistence.
func (t *TrustStore) Approved() []string { return sortedKeys(t.approved) }

// Blocked returns the blocked set, sorted, for persistence.
func (t *TrustStore) Blocked() []string { return sortedKeys(t.blocked) }

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
