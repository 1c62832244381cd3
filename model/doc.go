// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package model defines the domain entities TENEX derives from Nostr
// notes: projects, threads, messages, statuses, and the content
// catalog (agent definitions, MCP tools, nudges, skills, team packs,
// lessons, reports).
//
// Every entity has a total Parse constructor that returns ok=false
// when the note has the wrong kind or lacks a mandatory tag. Parsing
// never returns an error: a malformed note is dropped by the event
// router, and no note may abort a routing batch.
//
// A kind-1 note is classified by its tags: with no e/E tag it is a
// [Thread] (conversation root), otherwise a [Message] (reply). The
// one exception is an e-tag whose NIP-10 marker slot reads "skill" —
// that is a skill reference, not a reply marker, and does not flip a
// root into a reply.
package model
