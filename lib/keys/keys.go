// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// ncryptsec payload layout (NIP-49):
//
//	version(1) || log_n(1) || salt(16) || nonce(24) || security(1) || ciphertext(32+16)
const (
	ncryptsecVersion = 0x02
	saltSize         = 16
	payloadSize      = 1 + 1 + saltSize + chacha20poly1305.NonceSizeX + 1 + 32 + chacha20poly1305.Overhead

	// DefaultLogN is the scrypt work factor exponent for newly
	// encrypted keys. N=2^16 takes tens of milliseconds on current
	// hardware, which is fine for an interactive login prompt.
	DefaultLogN = 16

	// securityUnknown marks keys whose handling history is not
	// tracked. TENEX never downgrades this to "known secure".
	securityUnknown = 0x02
)

// SecretKey is a 32-byte Nostr signing key.
type SecretKey [32]byte

// Hex returns the lowercase hex form of the key.
func (k SecretKey) Hex() string {
	return hex.EncodeToString(k[:])
}

// Nsec returns the bech32 "nsec" form of the key.
func (k SecretKey) Nsec() string {
	s, err := bech32Encode("nsec", k[:])
	if err != nil {
		// Encoding 32 fixed bytes cannot fail.
		panic("keys: nsec encode: " + err.Error())
	}
	return s
}

// ParseSecret parses a secret key from either 64-character hex or
// bech32 "nsec" form.
func ParseSecret(s string) (SecretKey, error) {
	var key SecretKey
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "nsec1") {
		hrp, raw, err := bech32Decode(s)
		if err != nil {
			return key, err
		}
		if hrp != "nsec" || len(raw) != 32 {
			return key, fmt.Errorf("keys: not an nsec key")
		}
		copy(key[:], raw)
		return key, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("keys: parsing secret key: %w", err)
	}
	if len(raw) != 32 {
		return key, fmt.Errorf("keys: secret key must be 32 bytes, got %d", len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// IsEncrypted reports whether a stored credential requires a password:
// true for "ncryptsec" strings, false for bare hex or nsec keys.
func IsEncrypted(credential string) bool {
	return strings.HasPrefix(strings.TrimSpace(credential), "ncryptsec1")
}

// Encrypt password-protects the key, returning an "ncryptsec" string
// per NIP-49. The password is NFKC-normalized before key derivation so
// that visually identical passwords typed on different platforms
// derive the same key. logN is the scrypt work factor exponent; pass
// [DefaultLogN] unless migrating a credential that recorded its own.
func Encrypt(key SecretKey, password string, logN uint8) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("keys: generating salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("keys: generating nonce: %w", err)
	}

	aead, err := deriveAEAD(password, salt, logN)
	if err != nil {
		return "", err
	}

	security := []byte{securityUnknown}
	ciphertext := aead.Seal(nil, nonce, key[:], security)

	payload := make([]byte, 0, payloadSize)
	payload = append(payload, ncryptsecVersion, logN)
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, security...)
	payload = append(payload, ciphertext...)

	return bech32Encode("ncryptsec", payload)
}

// Decrypt recovers a key from an "ncryptsec" string. A wrong password
// surfaces as an authentication failure, not garbage key bytes.
func Decrypt(ncryptsec, password string) (SecretKey, error) {
	var key SecretKey

	hrp, payload, err := bech32Decode(strings.TrimSpace(ncryptsec))
	if err != nil {
		return key, err
	}
	if hrp != "ncryptsec" {
		return key, fmt.Errorf("keys: not an ncryptsec credential")
	}
	if len(payload) != payloadSize {
		return key, fmt.Errorf("keys: ncryptsec payload is %d bytes, want %d", len(payload), payloadSize)
	}
	if payload[0] != ncryptsecVersion {
		return key, fmt.Errorf("keys: unsupported ncryptsec version %#x", payload[0])
	}

	logN := payload[1]
	salt := payload[2 : 2+saltSize]
	nonce := payload[2+saltSize : 2+saltSize+chacha20poly1305.NonceSizeX]
	security := payload[2+saltSize+chacha20poly1305.NonceSizeX : 2+saltSize+chacha20poly1305.NonceSizeX+1]
	ciphertext := payload[2+saltSize+chacha20poly1305.NonceSizeX+1:]

	aead, err := deriveAEAD(password, salt, logN)
	if err != nil {
		return key, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, security)
	if err != nil {
		return key, fmt.Errorf("keys: decrypting credential (wrong password?): %w", err)
	}
	copy(key[:], plaintext)
	return key, nil
}

// deriveAEAD runs scrypt over the NFKC-normalized password and wraps
// the derived key in an XChaCha20-Poly1305 AEAD.
func deriveAEAD(password string, salt []byte, logN uint8) (cipher.AEAD, error) {
	if logN > 30 {
		return nil, fmt.Errorf("keys: scrypt work factor 2^%d too large", logN)
	}
	normalized := norm.NFKC.String(password)
	derived, err := scrypt.Key([]byte(normalized), salt, 1<<logN, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("keys: deriving encryption key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, fmt.Errorf("keys: initializing cipher: %w", err)
	}
	return aead, nil
}
