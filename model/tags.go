// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strings"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// HasAskTag reports whether the note carries an ask marker. Writers
// emit ["ask","true"], but bare ["ask"] and ["ask","1"] are also
// accepted on read.
func HasAskTag(n *nostr.Note) bool {
	for _, tag := range n.Tags {
		if tag.Name() != "ask" {
			continue
		}
		if len(tag) == 1 {
			return true
		}
		if v := tag.Value(); v == "true" || v == "1" {
			return true
		}
	}
	return false
}

// normalizeID lowercases 64-character hex ids so the string and
// binary tag-slot forms of the same id compare equal.
func normalizeID(s string) string {
	if len(s) != 64 {
		return s
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return s
		}
	}
	return strings.ToLower(s)
}

// skillMarked reports whether an e-tag is a skill reference. The
// NIP-10 marker lives at index 3 (["e", id, relay, marker]), but some
// writers omit the relay slot, so index 2 is checked as well.
func skillMarked(tag nostr.Tag) bool {
	return tag.At(3) == "skill" || tag.At(2) == "skill"
}

// firstProjectATag returns the first a-tag value naming a project
// coordinate, or the first a-tag of any kind when none do.
func firstProjectATag(aTags []string) string {
	for _, a := range aTags {
		if strings.HasPrefix(a, "31933:") {
			return a
		}
	}
	if len(aTags) > 0 {
		return aTags[0]
	}
	return ""
}

// firstDocumentATag returns the first a-tag value naming a report
// coordinate ("30023:<pubkey>:<slug>"), or "".
func firstDocumentATag(aTags []string) string {
	for _, a := range aTags {
		if strings.HasPrefix(a, "30023:") {
			return a
		}
	}
	return ""
}
