// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "slices"

// maxHierarchyDepth bounds every transitive walk over the delegation
// graph. Well-formed data never approaches it; malformed data could
// contain cycles that a seen-set alone would traverse forever when
// edges keep arriving mid-walk.
const maxHierarchyDepth = 64

// RuntimeHierarchy records parent→child conversation edges observed
// at message-ingest time: a rendered q-tag from a message registers
// the q-tagged event as a runtime child of the containing thread.
// Each child has at most one parent; the first registration wins.
//
// Construct with [NewRuntimeHierarchy]. Not safe for concurrent use.
type RuntimeHierarchy struct {
	parentOf map[string]string
	children map[string][]string
}

// NewRuntimeHierarchy returns an empty hierarchy.
func NewRuntimeHierarchy() *RuntimeHierarchy {
	return &RuntimeHierarchy{
		parentOf: make(map[string]string),
		children: make(map[string][]string),
	}
}

// Register records child as a runtime descendant of parent.
// Self-edges, duplicate registrations, and re-parenting attempts are
// ignored.
func (h *RuntimeHierarchy) Register(parent, child string) {
	if parent == "" || child == "" || parent == child {
		return
	}
	if _, ok := h.parentOf[child]; ok {
		return
	}
	h.parentOf[child] = parent
	h.children[parent] = append(h.children[parent], child)
}

// Parent returns the registered parent of a conversation.
func (h *RuntimeHierarchy) Parent(id string) (string, bool) {
	parent, ok := h.parentOf[id]
	return parent, ok
}

// Children returns the direct runtime children of a conversation.
func (h *RuntimeHierarchy) Children(id string) []string {
	return slices.Clone(h.children[id])
}

// Ancestors returns the chain of ancestors from the immediate parent
// upward. The walk is bounded by a seen-set and a depth limit so
// malformed cyclic data terminates.
func (h *RuntimeHierarchy) Ancestors(id string) []string {
	var ancestors []string
	seen := map[string]bool{id: true}
	cur := id
	for range maxHierarchyDepth {
		parent, ok := h.parentOf[cur]
		if !ok || seen[parent] {
			break
		}
		ancestors = append(ancestors, parent)
		seen[parent] = true
		cur = parent
	}
	return ancestors
}

// Root returns the top of the chain containing id: the last ancestor,
// or id itself when it has no parent.
func (h *RuntimeHierarchy) Root(id string) string {
	ancestors := h.Ancestors(id)
	if len(ancestors) == 0 {
		return id
	}
	return ancestors[len(ancestors)-1]
}

// Edges returns every (parent, child) pair, for serialization and the
// q-tag relationship query. Order follows registration order per
// parent but is otherwise unspecified.
func (h *RuntimeHierarchy) Edges() map[string][]string {
	edges := make(map[string][]string, len(h.children))
	for parent, kids := range h.children {
		edges[parent] = slices.Clone(kids)
	}
	return edges
}
