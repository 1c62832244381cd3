// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package nostr holds the wire-level data model shared by every layer
// of the client core: signed notes, their ordered tag lists, query
// filters, and the event kind numbers TENEX uses.
//
// A [Note] is the canonical in-memory form of a signed Nostr event.
// Tag slots may arrive either as strings or as 32-byte binary ids
// (storage engines intern 64-character hex strings as binary); every
// accessor on [Tag] and [Note] normalizes binary slots to lowercase
// hex so downstream code only ever sees hex strings. [Event] is the
// JSON wire form used by the relay transport and the event database's
// raw column, convertible to a Note with [Event.Note].
//
// A [Filter] expresses the query surface the event database supports:
// kinds, authors, since-timestamp, single-letter tag equality, and
// explicit event ids. [Filter.Matches] applies the same semantics
// in-memory, which keeps database queries and live subscription
// routing consistent by construction.
//
// This package has no dependencies beyond the standard library.
package nostr
