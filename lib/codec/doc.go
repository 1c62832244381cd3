// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides TENEX's standard CBOR encoding configuration.
//
// TENEX uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the Nostr wire protocol (events,
//     filters, relay messages), agent profile content, preference
//     files, and audio notification sidecars.
//   - CBOR for internal state: the materialized-state cache snapshot
//     written between sessions.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every TENEX package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which is what lets the cache layer checksum a snapshot and
// verify it byte-for-byte on reload.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON. Examples: the cache envelope and the
//     per-store snapshot types it carries.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: wire event types and
//     parsed profile/preference structures that also land in the
//     cache.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract — doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
