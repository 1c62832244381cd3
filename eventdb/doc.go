// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventdb is the local event database: an append-only,
// indexed store of Nostr notes with query and subscription APIs. It
// is the boundary between transport and core — relays write into it
// via [DB.Ingest], and everything downstream consumes note keys from
// [DB.Query] or a live [Subscription].
//
// Notes are immutable once stored and deduplicated by event id, so
// ingesting the same event from three relays stores it once and
// notifies subscribers once. Replacement semantics for replaceable
// kinds live in the materialization layer, not here: the database
// keeps every version.
//
// # Schema
//
// Two tables: notes holds one row per event with the tag list as
// canonical JSON, and note_tags holds one row per (name, value) tag
// pair for indexed tag-equals lookups. A note's key is its rowid;
// keys are the unit of exchange with subscribers so consumers can
// resolve only the notes they care about inside their own
// transaction.
package eventdb
