// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/tenex-chat/tenex/lib/nostr"

// Lesson is a kind-4129 learning insight published by an agent. The
// summary lives in the content; the optional deep-dive sections each
// come from their own tag.
type Lesson struct {
	ID            string `json:"id"`
	Pubkey        string `json:"pubkey"`
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	Detailed      string `json:"detailed,omitempty"`
	Reasoning     string `json:"reasoning,omitempty"`
	Metacognition string `json:"metacognition,omitempty"`
	Reflection    string `json:"reflection,omitempty"`
	Category      string `json:"category,omitempty"`
	CreatedAt     uint64 `json:"created_at"`
}

// ParseLesson parses a kind-4129 note.
func ParseLesson(n *nostr.Note) (*Lesson, bool) {
	if n.Kind != nostr.KindLesson {
		return nil, false
	}

	lesson := &Lesson{
		ID:        n.IDHex(),
		Pubkey:    n.PubkeyHex(),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
	for _, tag := range n.Tags {
		if len(tag) < 2 {
			continue
		}
		switch tag.Name() {
		case "title":
			lesson.Title = tag.Value()
		case "detailed":
			lesson.Detailed = tag.Value()
		case "reasoning":
			lesson.Reasoning = tag.Value()
		case "metacognition":
			lesson.Metacognition = tag.Value()
		case "reflection":
			lesson.Reflection = tag.Value()
		case "category":
			lesson.Category = tag.Value()
		}
	}
	if lesson.Title == "" {
		lesson.Title = "Untitled Lesson"
	}
	return lesson, true
}
