// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"slices"

	"github.com/tenex-chat/tenex/model"
)

// OperationsStore holds the live kind-24133 operations: which agents
// are currently working on which event. Only operations with a
// non-empty agent list are kept; an empty-list update removes the
// entry. Upserts are monotonic in (created_at, id) per event.
//
// Construct with [NewOperationsStore]. Not safe for concurrent use.
type OperationsStore struct {
	byEvent map[string]*model.OperationsStatus
}

// NewOperationsStore returns an empty operations store.
func NewOperationsStore() *OperationsStore {
	return &OperationsStore{byEvent: make(map[string]*model.OperationsStatus)}
}

// Upsert applies an operations status. Out-of-order arrivals for the
// same event are dropped; an empty agent list removes the entry.
// Reports whether the update was applied.
func (o *OperationsStore) Upsert(status *model.OperationsStatus) bool {
	cur, ok := o.byEvent[status.EventID]
	if ok && !newerWins(cur.CreatedAt, cur.NoteID, status.CreatedAt, status.NoteID) {
		return false
	}
	if !status.IsActive() {
		delete(o.byEvent, status.EventID)
		return true
	}
	o.byEvent[status.EventID] = status
	return true
}

// Get returns the live operation for an event.
func (o *OperationsStore) Get(eventID string) (*model.OperationsStatus, bool) {
	status, ok := o.byEvent[eventID]
	return status, ok
}

// Live returns all live operations in no particular order.
func (o *OperationsStore) Live() []*model.OperationsStatus {
	live := make([]*model.OperationsStatus, 0, len(o.byEvent))
	for _, status := range o.byEvent {
		live = append(live, status)
	}
	return live
}

// ActiveInThread reports whether any live operation belongs to the
// given conversation.
func (o *OperationsStore) ActiveInThread(threadID string) bool {
	for _, status := range o.byEvent {
		if status.ThreadID == threadID {
			return true
		}
	}
	return false
}

// trackedOp is one live operation inside AgentTrackingState.
type trackedOp struct {
	agents    []string
	createdAt uint64
	noteID    string
	// startWall is the wall clock (Unix seconds) at which this
	// operation was first seen, the base of the unconfirmed runtime
	// estimate. Message-borne runtime confirmations reset it.
	startWall uint64
}

// trackingKey identifies an operation by conversation and target
// event.
type trackingKey struct {
	conversationID string
	eventID        string
}

// AgentTrackingState is an in-memory, reset-on-restart view over the
// operations stream driving the "active agents" counter and the
// unconfirmed runtime estimate in the status bar. Confirmed runtime
// accumulates from llm-runtime values, deduplicated per 24133 note
// id; the unconfirmed estimate is the elapsed wall time of every live
// operation and deliberately overapproximates.
//
// Construct with [NewAgentTracking]. Not safe for concurrent use.
type AgentTrackingState struct {
	ops map[trackingKey]*trackedOp

	confirmedSecs uint64
	countedNotes  map[string]bool
}

// NewAgentTracking returns empty tracking state.
func NewAgentTracking() *AgentTrackingState {
	return &AgentTrackingState{
		ops:          make(map[trackingKey]*trackedOp),
		countedNotes: make(map[string]bool),
	}
}

// Apply processes one operations status at the given wall clock
// (Unix seconds). Stale updates — older than the latest seen for the
// same (conversation, event) pair — are rejected and report false.
func (a *AgentTrackingState) Apply(status *model.OperationsStatus, now uint64) bool {
	key := trackingKey{conversationID: status.ThreadID, eventID: status.EventID}
	cur, ok := a.ops[key]
	if ok && !newerWins(cur.createdAt, cur.noteID, status.CreatedAt, status.NoteID) {
		return false
	}

	if status.HasLLMRuntime && !a.countedNotes[status.NoteID] {
		a.confirmedSecs += status.LLMRuntimeSecs
		a.countedNotes[status.NoteID] = true
	}

	if !status.IsActive() {
		delete(a.ops, key)
		return true
	}
	op := &trackedOp{
		agents:    slices.Clone(status.AgentPubkeys),
		createdAt: status.CreatedAt,
		noteID:    status.NoteID,
		startWall: now,
	}
	if ok {
		op.startWall = cur.startWall
	}
	a.ops[key] = op
	return true
}

// ResetTimer restarts the unconfirmed-runtime timer for every live
// operation in the conversation that involves the author. A message
// carrying confirmed runtime means the elapsed time up to it has been
// accounted for. Events older than the operation are backfill and are
// ignored.
func (a *AgentTrackingState) ResetTimer(conversationID, author string, eventAt, now uint64) {
	for key, op := range a.ops {
		if key.conversationID != conversationID || eventAt < op.createdAt {
			continue
		}
		if slices.Contains(op.agents, author) {
			op.startWall = now
		}
	}
}

// ConfirmedRuntimeSecs returns the accumulated confirmed runtime.
func (a *AgentTrackingState) ConfirmedRuntimeSecs() uint64 { return a.confirmedSecs }

// ActiveAgentCount returns the size of the union of agent pubkeys
// over all live operations.
func (a *AgentTrackingState) ActiveAgentCount() int {
	agents := make(map[string]bool)
	for _, op := range a.ops {
		for _, pk := range op.agents {
			agents[pk] = true
		}
	}
	return len(agents)
}

// UnconfirmedRuntimeSecs returns the summed elapsed time of all live
// operations at the given wall clock.
func (a *AgentTrackingState) UnconfirmedRuntimeSecs(now uint64) uint64 {
	var total uint64
	for _, op := range a.ops {
		if now > op.startWall {
			total += now - op.startWall
		}
	}
	return total
}
