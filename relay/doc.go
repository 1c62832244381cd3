// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay implements a minimal Nostr relay WebSocket client.
// It opens REQ subscriptions for a set of filters, feeds incoming
// EVENT frames into the event database, tracks EOSE so callers can
// tell when the initial backlog has drained, and reconnects with
// exponential backoff when the connection drops.
//
// The client is read-only: signing and publishing are the identity
// collaborator's job.
package relay
