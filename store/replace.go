// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

// newerWins reports whether a candidate revision (newAt, newID)
// replaces the stored revision (curAt, curID). Greater created_at
// wins; ties break to the lexicographically greater event id so that
// any ingestion order converges on the same record.
func newerWins(curAt uint64, curID string, newAt uint64, newID string) bool {
	if newAt != curAt {
		return newAt > curAt
	}
	return newID > curID
}

// qTagRenderDenylist names the tools whose q-tags are internal links
// (report and lesson storage references), not delegation or ask
// references. Messages from these tools never register runtime
// hierarchy edges and their q-tags are not rendered as conversation
// links. Centralized here so the routing, hierarchy, and query paths
// agree.
var qTagRenderDenylist = map[string]bool{
	"report_write":  true,
	"report_read":   true,
	"report_delete": true,
	"lesson_learn":  true,
	"lesson_get":    true,
}

// QTagRendered reports whether q-tags on a message produced by the
// named tool should be treated as delegation/ask references.
func QTagRendered(toolName string) bool {
	return !qTagRenderDenylist[toolName]
}
