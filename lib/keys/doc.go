// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package keys handles Nostr signing-key material: parsing secret keys
// from hex or bech32 ("nsec") form, and password-protecting them at
// rest using the NIP-49 scheme (scrypt key derivation plus
// XChaCha20-Poly1305), producing "ncryptsec" strings that other Nostr
// tooling can decrypt.
//
// A stored credential is either a bare key (hex or nsec) or an
// ncryptsec string; [IsEncrypted] tells the login flow whether it must
// prompt for a password before [Decrypt] can recover the key.
package keys
