// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
)

// newNote builds a note with deterministic id and pubkey from the
// given seeds.
func newNote(kind uint16, idSeed, pubkeySeed byte, createdAt uint64, content string, tags ...nostr.Tag) *nostr.Note {
	return &nostr.Note{
		ID:        testutil.SeedID(idSeed),
		Pubkey:    testutil.SeedID(pubkeySeed),
		Kind:      kind,
		CreatedAt: createdAt,
		Content:   content,
		Tags:      tags,
	}
}
