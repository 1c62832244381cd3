// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package nostr

import "encoding/hex"

// Element is one slot of a tag. A slot is either a string or a
// 32-byte binary id: storage engines intern 64-character hex strings
// (event ids, pubkeys) as binary, and both forms must be accepted.
// Exactly one of Str and ID is meaningful; ID wins when non-nil.
type Element struct {
	Str string
	ID  []byte
}

// Text returns the slot normalized to a plain string. Binary ids are
// rendered as lowercase hex.
func (e Element) Text() string {
	if e.ID != nil {
		return hex.EncodeToString(e.ID)
	}
	return e.Str
}

// StringElement returns an Element holding a plain string.
func StringElement(s string) Element { return Element{Str: s} }

// Tag is an ordered sequence of elements. The first element is the
// tag name ("e", "p", "agent", ...).
type Tag []Element

// NewTag builds a Tag from plain strings.
func NewTag(parts ...string) Tag {
	tag := make(Tag, len(parts))
	for i, p := range parts {
		tag[i] = Element{Str: p}
	}
	return tag
}

// Name returns the tag name, or "" for an empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0].Text()
}

// Value returns the first value slot normalized to text, or "" if
// the tag has no value slot.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1].Text()
}

// At returns the slot at index i normalized to text, or "" if the
// tag is shorter.
func (t Tag) At(i int) string {
	if i < 0 || i >= len(t) {
		return ""
	}
	return t[i].Text()
}

// Texts returns every slot normalized to text.
func (t Tag) Texts() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Text()
	}
	return out
}
