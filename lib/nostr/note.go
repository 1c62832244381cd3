// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package nostr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Note is the canonical in-memory form of a signed Nostr event. The
// core never retains Note references across event-handler calls; it
// extracts value copies into its own structures.
type Note struct {
	ID        [32]byte
	Pubkey    [32]byte
	Kind      uint16
	CreatedAt uint64
	Content   string
	Tags      []Tag
}

// IDHex returns the event id as lowercase hex.
func (n *Note) IDHex() string { return hex.EncodeToString(n.ID[:]) }

// PubkeyHex returns the author pubkey as lowercase hex.
func (n *Note) PubkeyHex() string { return hex.EncodeToString(n.Pubkey[:]) }

// FindTag returns the first tag with the given name.
func (n *Note) FindTag(name string) (Tag, bool) {
	for _, tag := range n.Tags {
		if tag.Name() == name {
			return tag, true
		}
	}
	return nil, false
}

// TagValue returns the first value of the first tag with the given
// name, normalized to lowercase hex when the slot is a binary id.
func (n *Note) TagValue(name string) (string, bool) {
	tag, ok := n.FindTag(name)
	if !ok || len(tag) < 2 {
		return "", ok && len(tag) >= 2
	}
	return tag.Value(), true
}

// TagValues returns the first value of every tag with the given name,
// in tag order.
func (n *Note) TagValues(name string) []string {
	var values []string
	for _, tag := range n.Tags {
		if tag.Name() == name && len(tag) >= 2 {
			values = append(values, tag.Value())
		}
	}
	return values
}

// HasTag reports whether any tag has the given name, regardless of
// whether it carries a value.
func (n *Note) HasTag(name string) bool {
	for _, tag := range n.Tags {
		if tag.Name() == name {
			return true
		}
	}
	return false
}

// Coordinate is the stable address of a parameterized-replaceable
// event: "<kind>:<pubkey>:<identifier>".
type Coordinate struct {
	Kind       uint16
	Pubkey     string
	Identifier string
}

// String renders the coordinate in its canonical a-tag form.
func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%s:%s", c.Kind, c.Pubkey, c.Identifier)
}

// ParseCoordinate parses a "<kind>:<pubkey>:<identifier>" coordinate.
// The identifier may itself contain colons.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("nostr: malformed coordinate %q", s)
	}
	kind, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return Coordinate{}, fmt.Errorf("nostr: coordinate kind %q: %w", parts[0], err)
	}
	return Coordinate{Kind: uint16(kind), Pubkey: parts[1], Identifier: parts[2]}, nil
}

// DecodeID decodes a 64-character hex event id or pubkey.
func DecodeID(s string) ([32]byte, error) {
	var id [32]byte
	if len(s) != 64 {
		return id, fmt.Errorf("nostr: id %q: want 64 hex characters, got %d", s, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("nostr: id %q: %w", s, err)
	}
	copy(id[:], raw)
	return id, nil
}
