// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package search provides the shared text-matching semantics used by
// conversation and report search: multi-term AND queries joined with
// the '+' operator, matched ASCII case-insensitively. Every search
// surface goes through this package so that the result set and the
// match highlighting agree on what "matches" means.
package search

import "strings"

// ParseTerms splits a query into individual search terms on '+'. Each
// term is trimmed and lowercased; empty terms are dropped. All terms
// must match for a candidate to be a hit (AND semantics).
//
//	ParseTerms("error")            // ["error"]
//	ParseTerms("error+timeout")    // ["error", "timeout"]
//	ParseTerms(" error + timeout") // ["error", "timeout"]
//	ParseTerms("error++timeout")   // ["error", "timeout"]
//	ParseTerms("")                 // nil
func ParseTerms(query string) []string {
	var terms []string
	for _, part := range strings.Split(query, "+") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// ContainsTerm reports whether text contains term, comparing ASCII
// letters case-insensitively. Non-ASCII bytes must match exactly,
// keeping the result consistent with highlight rendering which folds
// only ASCII. An empty term matches everything.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return true
	}
	if len(text) < len(term) {
		return false
	}
	for start := 0; start <= len(text)-len(term); start++ {
		if equalFoldASCII(text[start:start+len(term)], term) {
			return true
		}
	}
	return false
}

// ContainsAllTerms reports whether text contains every term. An empty
// term list matches everything.
func ContainsAllTerms(text string, terms []string) bool {
	for _, term := range terms {
		if !ContainsTerm(text, term) {
			return false
		}
	}
	return true
}

// equalFoldASCII compares equal-length strings folding only the ASCII
// range, unlike strings.EqualFold which also folds Unicode.
func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
