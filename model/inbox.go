// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

// InboxEventType classifies why an event landed in the inbox.
type InboxEventType string

const (
	// InboxAsk is an agent question blocked on user input: a message
	// p-tagging the user that carries an ask tag.
	InboxAsk InboxEventType = "ask"
	// InboxMention is a plain p-tag mention without an ask tag.
	InboxMention InboxEventType = "mention"
)

// InboxItem is a derived record, not a primary event: it is generated
// when an incoming message p-tags the current user.
type InboxItem struct {
	// ID is the id of the event that triggered the item.
	ID           string         `json:"id"`
	EventType    InboxEventType `json:"event_type"`
	Title        string         `json:"title,omitempty"`
	ProjectATag  string         `json:"project_a_tag,omitempty"`
	AuthorPubkey string         `json:"author_pubkey"`
	CreatedAt    uint64         `json:"created_at"`
	IsRead       bool           `json:"is_read,omitempty"`
	ThreadID     string         `json:"thread_id,omitempty"`
	// AskEvent carries the questions when EventType is InboxAsk, for
	// interactive answering.
	AskEvent *AskEvent `json:"ask_event,omitempty"`
}

// ChatterKind discriminates agent-chatter entries.
type ChatterKind string

const (
	ChatterMessage ChatterKind = "message"
	ChatterLesson  ChatterKind = "lesson"
)

// AgentChatter is one entry of the ambient agent-activity feed:
// messages a-tagging a known project, and lessons as they arrive.
type AgentChatter struct {
	Kind         ChatterKind `json:"kind"`
	ID           string      `json:"id"`
	Content      string      `json:"content,omitempty"`
	AuthorPubkey string      `json:"author_pubkey"`
	CreatedAt    uint64      `json:"created_at"`
	// ProjectATag and ThreadID are set for message entries.
	ProjectATag string `json:"project_a_tag,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
	// Title and Category are set for lesson entries.
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// PendingBackendApproval records a project status from a backend the
// user has neither approved nor blocked. The status payload is held
// so approval can apply it retroactively.
type PendingBackendApproval struct {
	BackendPubkey     string         `json:"backend_pubkey"`
	ProjectCoordinate string         `json:"project_coordinate"`
	FirstSeenAt       uint64         `json:"first_seen_at"`
	Status            *ProjectStatus `json:"status"`
}
