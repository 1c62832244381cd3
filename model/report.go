// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strings"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Report is a kind-30023 long-form document. Revisions share a slug
// (the d-tag); the store keeps the full version history per slug
// alongside the latest revision.
type Report struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	ProjectATag string   `json:"project_a_tag"`
	Author      string   `json:"author"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary,omitempty"`
	Content     string   `json:"content,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	CreatedAt   uint64   `json:"created_at"`
}

// ParseReport parses a kind-30023 note. Both the slug (d-tag) and the
// project a-tag are mandatory. A missing title defaults to the first
// content line, a missing summary to the first 160 characters.
func ParseReport(n *nostr.Note) (*Report, bool) {
	if n.Kind != nostr.KindReport {
		return nil, false
	}

	r := &Report{
		ID:        n.IDHex(),
		Author:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "d":
			if r.Slug == "" {
				r.Slug = tag.Value()
			}
		case "a":
			if r.ProjectATag == "" {
				r.ProjectATag = tag.Value()
			}
		case "title":
			r.Title = tag.Value()
		case "summary":
			r.Summary = tag.Value()
		case "t":
			r.Hashtags = append(r.Hashtags, tag.Value())
		}
	}
	if r.Slug == "" || r.ProjectATag == "" {
		return nil, false
	}

	if r.Title == "" {
		line, _, _ := strings.Cut(n.Content, "\n")
		if line == "" {
			line = "Untitled"
		}
		r.Title = line
	}
	if r.Summary == "" {
		runes := []rune(n.Content)
		if len(runes) > 160 {
			runes = runes[:160]
		}
		r.Summary = string(runes)
	}
	return r, true
}

// ATag returns the report's own coordinate, "30023:<author>:<slug>".
// Document-discussion threads a-tag this value.
func (r *Report) ATag() string {
	return fmt.Sprintf("%d:%s:%s", nostr.KindReport, r.Author, r.Slug)
}
