// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use this instead of time.Now()
// when tests need unique identifiers for slugs, subjects, or message
// bodies that must be distinguishable in shared fixtures.
//
//	slug := testutil.UniqueID("report")    // "report-1", "report-2", ...
//	body := testutil.UniqueID("reply")     // "reply-3", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
