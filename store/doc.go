// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package store materializes the Nostr event stream into a queryable
// in-memory domain model.
//
// The package is organized as narrow sub-stores, each owning one
// domain slice (content definitions, reports, inbox, trust decisions,
// live operations, statistics), orchestrated by [AppDataStore]. The
// single entry point is [AppDataStore.HandleEvent]: given a note it
// dispatches by kind, updates cross-cutting indices (thread roots per
// project, delegation hierarchy, activity propagation), and returns
// the derived [CoreEvent]s for fan-out.
//
// HandleEvent is idempotent and ordering-insensitive for replaceable
// kinds: replaying the same note leaves state unchanged, and the
// stored record for any replaceable identity is always the one with
// the greatest (created_at, id). Malformed notes are dropped at parse
// time and never abort routing.
//
// Nothing in this package is safe for concurrent use; the caller
// serializes access (see the core package's runtime lock).
package store
