// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package nostr

// Filter selects notes by kind, author, age, single-letter tag value,
// or explicit id. Empty fields do not constrain. A Filter is used
// both to build event database queries and to route live subscription
// notifications; Matches implements the shared semantics.
type Filter struct {
	// Kinds restricts to these event kinds.
	Kinds []uint16

	// Authors restricts to these author pubkeys (lowercase hex).
	Authors []string

	// IDs restricts to these event ids (lowercase hex).
	IDs []string

	// Since excludes notes with created_at strictly below this value.
	Since uint64

	// TagName and TagValues restrict to notes carrying a tag
	// TagName whose first value is one of TagValues. TagName is a
	// single letter on the wire ("a", "e", "p") but any tag name is
	// accepted.
	TagName   string
	TagValues []string
}

// Matches reports whether the note satisfies every constraint the
// filter carries.
func (f *Filter) Matches(n *Note) bool {
	if len(f.Kinds) > 0 && !containsUint16(f.Kinds, n.Kind) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, n.PubkeyHex()) {
		return false
	}
	if len(f.IDs) > 0 && !containsString(f.IDs, n.IDHex()) {
		return false
	}
	if f.Since > 0 && n.CreatedAt < f.Since {
		return false
	}
	if f.TagName != "" && len(f.TagValues) > 0 {
		matched := false
		for _, value := range n.TagValues(f.TagName) {
			if containsString(f.TagValues, value) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func containsUint16(haystack []uint16, needle uint16) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
