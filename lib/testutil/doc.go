// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for TENEX packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. These are
// the only place in the test suite where real wall-clock timeouts are
// used; everything else injects a fake clock.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// slugs, thread subjects, or message bodies distinguishable in shared
// fixtures.
//
// [SeedID] and [SeedIDHex] produce deterministic 32-byte identifiers
// for events and pubkeys, keeping fixtures readable: two notes built
// from different seeds never collide, and a failing assertion prints a
// recognizable pattern instead of random hex.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no TENEX-internal dependencies.
package testutil
