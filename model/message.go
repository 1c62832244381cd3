// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strings"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Message is a reply: a kind-1 note with at least one non-skill e/E
// tag. ThreadID is the conversation root it belongs to, which may be
// an orphan reference when the root has not arrived yet.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Pubkey    string `json:"pubkey"`
	ThreadID  string `json:"thread_id"`
	CreatedAt uint64 `json:"created_at"`
	// ReplyTo is the direct parent message id, or "" for replies
	// straight to the thread root.
	ReplyTo     string    `json:"reply_to,omitempty"`
	IsReasoning bool      `json:"is_reasoning,omitempty"`
	AskEvent    *AskEvent `json:"ask_event,omitempty"`
	// QTags reference delegated conversations or ask-event subjects.
	QTags []string `json:"q_tags,omitempty"`
	ATags []string `json:"a_tags,omitempty"`
	PTags []string `json:"p_tags,omitempty"`
	// ToolName/ToolArgs come from "tool" / "tool-args" tags and take
	// precedence over tool-call blocks embedded in Content.
	ToolName string `json:"tool_name,omitempty"`
	ToolArgs string `json:"tool_args,omitempty"`
	// LLMMetadata collects llm-* tags keyed without the prefix:
	// "total-tokens", "runtime", "model", and so on.
	LLMMetadata   map[string]string `json:"llm_metadata,omitempty"`
	DelegationTag string            `json:"delegation_tag,omitempty"`
	Branch        string            `json:"branch,omitempty"`
}

// ParseMessage parses a kind-1 reply.
//
// NIP-10 e-tags are ["e", <id>, <relay>, <marker>]: the first "root"
// marker names the thread, the first "reply" marker the direct
// parent. Unmarked e-tags keep the older convention, first as root
// and second as reply. Uppercase E-tags always name the thread root.
func ParseMessage(n *nostr.Note) (*Message, bool) {
	if n.Kind != nostr.KindText {
		return nil, false
	}

	m := &Message{
		ID:        n.IDHex(),
		Content:   n.Content,
		Pubkey:    n.PubkeyHex(),
		CreatedAt: n.CreatedAt,
	}

	for _, tag := range n.Tags {
		name := tag.Name()
		if after, ok := strings.CutPrefix(name, "llm-"); ok && len(tag) >= 2 {
			if m.LLMMetadata == nil {
				m.LLMMetadata = make(map[string]string)
			}
			m.LLMMetadata[after] = tag.Value()
			continue
		}

		switch name {
		case "e":
			if skillMarked(tag) || len(tag) < 2 {
				continue
			}
			id := normalizeID(tag.Value())
			switch tag.At(3) {
			case "root":
				if m.ThreadID == "" {
					m.ThreadID = id
				}
			case "reply":
				if m.ReplyTo == "" {
					m.ReplyTo = id
				}
			case "":
				if m.ThreadID == "" {
					m.ThreadID = id
				} else if m.ReplyTo == "" {
					m.ReplyTo = id
				}
			}
		case "E":
			if len(tag) >= 2 && m.ThreadID == "" {
				m.ThreadID = normalizeID(tag.Value())
			}
		case "q":
			if len(tag) >= 2 {
				m.QTags = append(m.QTags, normalizeID(tag.Value()))
			}
		case "a":
			if len(tag) >= 2 {
				m.ATags = append(m.ATags, tag.Value())
			}
		case "p":
			if len(tag) >= 2 {
				m.PTags = append(m.PTags, normalizeID(tag.Value()))
			}
		case "tool":
			m.ToolName = tag.Value()
		case "tool-args":
			m.ToolArgs = tag.Value()
		case "reasoning":
			m.IsReasoning = true
		case "delegation":
			if len(tag) >= 2 {
				m.DelegationTag = normalizeID(tag.Value())
			}
		case "branch":
			m.Branch = tag.Value()
		}
	}

	if m.ThreadID == "" {
		return nil, false
	}
	m.AskEvent = ParseAskEvent(n)
	return m, true
}

// MessageFromThreadRoot renders a thread root note as the first
// message of its own conversation: ThreadID is the note's own id and
// ReplyTo is empty. Returns ok=false unless the note parses as a
// [Thread].
func MessageFromThreadRoot(n *nostr.Note) (*Message, bool) {
	t, ok := ParseThread(n)
	if !ok {
		return nil, false
	}

	m := &Message{
		ID:        t.ID,
		Content:   t.Content,
		Pubkey:    t.Pubkey,
		ThreadID:  t.ID,
		CreatedAt: t.CreatedAt,
		ATags:     t.ATags,
		PTags:     t.PTags,
		AskEvent:  t.AskEvent,
	}
	for _, tag := range n.Tags {
		name := tag.Name()
		if after, ok := strings.CutPrefix(name, "llm-"); ok && len(tag) >= 2 {
			if m.LLMMetadata == nil {
				m.LLMMetadata = make(map[string]string)
			}
			m.LLMMetadata[after] = tag.Value()
			continue
		}
		switch name {
		case "q":
			if len(tag) >= 2 {
				m.QTags = append(m.QTags, normalizeID(tag.Value()))
			}
		case "tool":
			m.ToolName = tag.Value()
		case "tool-args":
			m.ToolArgs = tag.Value()
		case "branch":
			m.Branch = tag.Value()
		}
	}
	return m, true
}

// AskQuestion is one question inside an ask event. Suggestions for a
// single-select question and options for a multi-select both live in
// Options, discriminated by MultiSelect.
type AskQuestion struct {
	Title       string   `json:"title"`
	Question    string   `json:"question"`
	MultiSelect bool     `json:"multi_select,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// AskEvent is the interactive-question payload of a message: an agent
// blocked on user input. Context is the message content.
type AskEvent struct {
	Title     string        `json:"title,omitempty"`
	Context   string        `json:"context"`
	Questions []AskQuestion `json:"questions,omitempty"`
}

// ParseAskEvent extracts ask questions from "question" and
// "multiselect" tags (["question", title, text, suggestions...]).
// Returns nil when the note carries no questions.
func ParseAskEvent(n *nostr.Note) *AskEvent {
	var title string
	var questions []AskQuestion

	for _, tag := range n.Tags {
		switch tag.Name() {
		case "title":
			title = tag.Value()
		case "question", "multiselect":
			q := AskQuestion{
				Title:       tag.At(1),
				Question:    tag.At(2),
				MultiSelect: tag.Name() == "multiselect",
			}
			for i := 3; i < len(tag); i++ {
				q.Options = append(q.Options, tag.At(i))
			}
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil
	}
	return &AskEvent{Title: title, Context: n.Content, Questions: questions}
}
