// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "encoding/hex"

// SeedID returns a 32-byte identifier whose every byte is seed. Useful
// for constructing event IDs and pubkeys in tests: fixtures stay
// readable and distinct seeds never collide.
//
//	note.ID = testutil.SeedID(0x01)
//	note.Pubkey = testutil.SeedID(0xaa)
func SeedID(seed byte) [32]byte {
	var id [32]byte
	for i := range id {
		id[i] = seed
	}
	return id
}

// SeedIDHex returns the lowercase hex form of [SeedID](seed), for
// assertions against hex-normalized tag values and query results.
func SeedIDHex(seed byte) string {
	id := SeedID(seed)
	return hex.EncodeToString(id[:])
}
