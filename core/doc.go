// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package core runs the materialization loop: it owns the event
// database and the in-memory application state, replays stored notes
// into the state at startup (warm-starting from the snapshot cache
// when one is valid), then applies live ingestion batches in arrival
// order and delivers the resulting change notifications on a single
// ordered channel.
//
// The runtime also carries the outbound command surface. Mutating
// operations (publishing a message, toggling a bookmark, managing
// agents) are enqueued as typed commands for a publisher collaborator
// to sign and send; the runtime itself never talks to the network.
package core
