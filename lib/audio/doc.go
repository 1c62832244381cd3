// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio manages spoken notification artifacts and the
// deterministic voice/model selection that feeds them.
//
// A notification is a pair of files under
// <data_dir>/audio_notifications: an MP3 named by a fresh UUID and a
// JSON sidecar with the same stem carrying the metadata ([Notification]).
// Writes go through a temp file plus rename so a crash never leaves a
// half-written artifact behind.
//
// Voice assignment is a pure function of the agent's pubkey
// ([SelectVoice]): SHA-256 over the pubkey, first 8 bytes as a
// big-endian integer, modulo the sorted deduplicated candidate list.
// Every client that shares the candidate set hears the same agent in
// the same voice, with no coordination and no stored mapping.
//
// The text-to-speech and text-massaging backends themselves are
// external HTTP services and live with the caller; this package only
// persists their output.
package audio
