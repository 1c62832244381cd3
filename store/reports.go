// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// ReportsStore holds kind-30023 long-form reports. Revisions sharing
// a slug form a version history, newest first; the latest revision
// per slug is the one listings surface. Document-discussion threads
// (kind-1 threads a-tagging a report coordinate) attach by report
// coordinate.
//
// Construct with [NewReportsStore]. Not safe for concurrent use.
type ReportsStore struct {
	latest   map[string]*model.Report
	versions map[string][]*model.Report

	// documentThreads maps a report coordinate ("30023:<pk>:<slug>")
	// to the ids of threads discussing it.
	documentThreads map[string][]string
}

// NewReportsStore returns an empty reports store.
func NewReportsStore() *ReportsStore {
	return &ReportsStore{
		latest:          make(map[string]*model.Report),
		versions:        make(map[string][]*model.Report),
		documentThreads: make(map[string][]string),
	}
}

// Add inserts a report revision. Duplicate event ids are ignored; the
// version list stays sorted newest first and the latest pointer
// follows its head.
func (r *ReportsStore) Add(report *model.Report) {
	versions := r.versions[report.Slug]
	for _, v := range versions {
		if v.ID == report.ID {
			return
		}
	}
	versions = append(versions, report)
	slices.SortFunc(versions, func(a, b *model.Report) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	r.versions[report.Slug] = versions
	r.latest[report.Slug] = versions[0]
}

// Delete removes the revision with the given event id. When the
// deleted revision was the latest, the next-newest takes its place;
// deleting the last revision removes the slug entirely.
func (r *ReportsStore) Delete(eventID string) {
	for slug, versions := range r.versions {
		idx := slices.IndexFunc(versions, func(v *model.Report) bool {
			return v.ID == eventID
		})
		if idx < 0 {
			continue
		}
		versions = slices.Delete(versions, idx, idx+1)
		if len(versions) == 0 {
			delete(r.versions, slug)
			delete(r.latest, slug)
			continue
		}
		r.versions[slug] = versions
		r.latest[slug] = versions[0]
	}
}

// Report returns the latest revision for a slug.
func (r *ReportsStore) Report(slug string) (*model.Report, bool) {
	report, ok := r.latest[slug]
	return report, ok
}

// Reports returns the latest revision of every slug, newest first.
func (r *ReportsStore) Reports() []*model.Report {
	reports := make([]*model.Report, 0, len(r.latest))
	for _, report := range r.latest {
		reports = append(reports, report)
	}
	slices.SortFunc(reports, func(a, b *model.Report) int {
		return compareNewest(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return reports
}

// Versions returns the full revision history for a slug, newest
// first.
func (r *ReportsStore) Versions(slug string) []*model.Report {
	return slices.Clone(r.versions[slug])
}

// PreviousVersion returns the revision immediately older than the one
// with the given event id, or ok=false at the end of the history.
func (r *ReportsStore) PreviousVersion(slug, eventID string) (*model.Report, bool) {
	versions := r.versions[slug]
	for i, v := range versions {
		if v.ID == eventID {
			if i+1 < len(versions) {
				return versions[i+1], true
			}
			return nil, false
		}
	}
	return nil, false
}

// AttachThread records a document-discussion thread for a report
// coordinate. Duplicate attachments are ignored.
func (r *ReportsStore) AttachThread(docATag, threadID string) {
	ids := r.documentThreads[docATag]
	if slices.Contains(ids, threadID) {
		return
	}
	r.documentThreads[docATag] = append(ids, threadID)
}

// DocumentThreads returns the thread ids attached to a report
// coordinate. Ordering by activity is the orchestrator's concern; the
// ids come back in attachment order.
func (r *ReportsStore) DocumentThreads(docATag string) []string {
	return slices.Clone(r.documentThreads[docATag])
}
