// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package eventdb

import (
	"sync"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Subscription is a live feed of note keys matching a filter. Read
// batches from C; call Cancel when done.
//
// Deliveries never block ingestion: matched keys go into a pending
// buffer and a per-subscription goroutine hands them to C. While the
// consumer is busy, further matches accumulate and arrive as one
// larger batch, so a slow consumer sees fewer, bigger batches but
// never loses a key.
type Subscription struct {
	db     *DB
	id     int64
	filter nostr.Filter

	mu      sync.Mutex
	pending []NoteKey

	wake chan struct{}
	done chan struct{}
	stop sync.Once
	ch   chan []NoteKey

	// C yields batches of note keys in ingest order.
	C <-chan []NoteKey
}

// Subscribe registers a live filter. Only notes ingested after the
// call are delivered; use [DB.Query] first for the backlog.
func (db *DB) Subscribe(filter nostr.Filter) *Subscription {
	ch := make(chan []NoteKey, 1)
	sub := &Subscription{
		db:     db,
		filter: filter,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		ch:     ch,
		C:      ch,
	}

	db.mu.Lock()
	db.nextSub++
	sub.id = db.nextSub
	db.subs[sub.id] = sub
	db.mu.Unlock()

	go sub.pump()
	return sub
}

// Cancel unregisters the subscription and closes C. Safe to call more
// than once. Keys still pending at cancellation are dropped.
func (s *Subscription) Cancel() {
	s.db.mu.Lock()
	delete(s.db.subs, s.id)
	s.db.mu.Unlock()
	s.stop.Do(func() { close(s.done) })
}

// pump moves pending keys to the consumer channel. It exits, closing
// C, when the subscription is cancelled.
func (s *Subscription) pump() {
	defer close(s.ch)
	for {
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
		for {
			s.mu.Lock()
			batch := s.pending
			s.pending = nil
			s.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			select {
			case s.ch <- batch:
			case <-s.done:
				return
			}
		}
	}
}

// offer queues matched keys and wakes the pump.
func (s *Subscription) offer(keys []NoteKey) {
	s.mu.Lock()
	s.pending = append(s.pending, keys...)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// notify delivers freshly ingested notes to every matching
// subscriber. Called outside the ingest transaction.
func (db *DB) notify(notes []*nostr.Note, keys []NoteKey) {
	db.mu.Lock()
	subs := make([]*Subscription, 0, len(db.subs))
	for _, sub := range db.subs {
		subs = append(subs, sub)
	}
	db.mu.Unlock()

	for _, sub := range subs {
		var matched []NoteKey
		for i, note := range notes {
			if sub.filter.Matches(note) {
				matched = append(matched, keys[i])
			}
		}
		if len(matched) > 0 {
			sub.offer(matched)
		}
	}
}
