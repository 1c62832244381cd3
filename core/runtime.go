// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tenex-chat/tenex/eventdb"
	"github.com/tenex-chat/tenex/lib/clock"
	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/store"
)

// ErrNotStarted is returned by operations that need a running event
// loop before Start has been called.
var ErrNotStarted = errors.New("core: runtime not started")

// ConsumedKinds lists every event kind the materialization loop
// routes. The base subscription, the bootstrap replay, and the relay
// wiring all use it.
func ConsumedKinds() []uint16 {
	return []uint16{
		nostr.KindProfile,
		nostr.KindText,
		nostr.KindDeletion,
		nostr.KindReaction,
		nostr.KindConversationMetadata,
		nostr.KindTeamComment,
		nostr.KindLesson,
		nostr.KindAgentDefinition,
		nostr.KindMCPTool,
		nostr.KindNudge,
		nostr.KindSkill,
		nostr.KindBookmarkList,
		nostr.KindProjectStatus,
		nostr.KindOperationsStatus,
		nostr.KindReport,
		nostr.KindProject,
		nostr.KindTeamPack,
	}
}

// Options configures a Runtime.
type Options struct {
	// DB is the backing event database. Required.
	DB *eventdb.DB

	// CurrentUser is the local user's hex pubkey, forwarded to the
	// application state for inbox and statistics decisions.
	CurrentUser string

	// Staleness overrides the default project-status staleness
	// threshold when positive.
	Staleness time.Duration

	// InboxReadIDs, ApprovedBackends and BlockedBackends seed the
	// persisted sets restored from preferences.
	InboxReadIDs     []string
	ApprovedBackends []string
	BlockedBackends  []string

	// Cache enables snapshot warm starts when non-nil.
	Cache *store.StateCache

	Clock  clock.Clock
	Logger *slog.Logger

	// EventBuffer and CommandBuffer size the outbound channels.
	// Zero means a reasonable default.
	EventBuffer   int
	CommandBuffer int
}

// Runtime owns the event database handle and the in-memory
// application state. Incoming note batches are applied under a single
// write lock in the order the database yields them; the resulting
// change notifications are delivered, still ordered, on Events.
// Reads go through the query surface in queries.go under a shared
// read lock.
type Runtime struct {
	db          *eventdb.DB
	cache       *store.StateCache
	clock       clock.Clock
	logger      *slog.Logger
	currentUser string

	mu    sync.RWMutex
	state *store.AppDataStore

	keys          chan []eventdb.NoteKey
	events        chan []store.CoreEvent
	requests      chan Request
	subscriptions chan []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subMu       sync.Mutex
	subs        []*eventdb.Subscription
	projectSubs map[string]bool

	started     atomic.Bool
	cacheBroken atomic.Bool
}

// New builds a Runtime. The event loop does not run until Start.
func New(opts Options) (*Runtime, error) {
	if opts.DB == nil {
		return nil, errors.New("core: Options.DB is required")
	}
	cl := opts.Clock
	if cl == nil {
		cl = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	eventBuf := opts.EventBuffer
	if eventBuf <= 0 {
		eventBuf = 64
	}
	cmdBuf := opts.CommandBuffer
	if cmdBuf <= 0 {
		cmdBuf = 64
	}
	return &Runtime{
		db:          opts.DB,
		cache:       opts.Cache,
		clock:       cl,
		logger:      logger,
		currentUser: opts.CurrentUser,
		state: store.NewAppDataStore(store.Options{
			CurrentUser:      opts.CurrentUser,
			Staleness:        opts.Staleness,
			InboxReadIDs:     opts.InboxReadIDs,
			ApprovedBackends: opts.ApprovedBackends,
			BlockedBackends:  opts.BlockedBackends,
			Logger:           logger,
		}),
		keys:          make(chan []eventdb.NoteKey, 256),
		events:        make(chan []store.CoreEvent, eventBuf),
		requests:      make(chan Request, cmdBuf),
		subscriptions: make(chan []string, 16),
		projectSubs:   make(map[string]bool),
	}, nil
}

// Start bootstraps the state (warm start from the snapshot cache when
// valid, otherwise a full rebuild from the database), opens the live
// subscription, and launches the event loop. The subscription is
// opened before the bootstrap replay so batches ingested during the
// replay are buffered rather than lost; re-applying them is a no-op.
func (r *Runtime) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return errors.New("core: already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.forward(r.db.Subscribe(nostr.Filter{Kinds: ConsumedKinds()}))

	if err := r.bootstrap(r.ctx); err != nil {
		r.cancel()
		return err
	}

	r.wg.Add(1)
	go r.loop()
	return nil
}

func (r *Runtime) bootstrap(ctx context.Context) error {
	var since uint64
	if r.cache != nil {
		state, watermark, err := r.cache.Load(uint64(r.clock.Now().Unix()))
		switch {
		case err == nil:
			r.mu.Lock()
			r.state.Restore(state)
			r.mu.Unlock()
			if watermark > store.CatchUpSafetyWindowSecs {
				since = watermark - store.CatchUpSafetyWindowSecs
			}
			r.logger.Info("state cache restored", "watermark", watermark, "since", since)
		case errors.Is(err, os.ErrNotExist):
			r.logger.Debug("no state cache, rebuilding from event database")
		default:
			r.logger.Warn("state cache rejected, rebuilding from event database", "error", err)
		}
	}

	keys, err := r.db.Query(ctx, nostr.Filter{Kinds: ConsumedKinds(), Since: since}, 0)
	if err != nil {
		return fmt.Errorf("core: bootstrap query: %w", err)
	}
	// Replay without emitting: consumers see only post-bootstrap
	// changes, the bootstrapped state itself arrives via queries.
	r.applyKeys(ctx, keys)
	r.logger.Info("bootstrap complete", "replayed", len(keys))
	return nil
}

func (r *Runtime) loop() {
	defer r.wg.Done()
	defer close(r.events)
	for {
		select {
		case <-r.ctx.Done():
			return
		case batch := <-r.keys:
			events := r.applyKeys(r.ctx, batch)
			if len(events) == 0 {
				continue
			}
			select {
			case r.events <- events:
			case <-r.ctx.Done():
				return
			}
		}
	}
}

// applyKeys resolves a batch of note keys and applies the notes to
// the state under one write lock. A key that fails to resolve is
// logged and skipped; the batch always runs to completion.
func (r *Runtime) applyKeys(ctx context.Context, keys []eventdb.NoteKey) []store.CoreEvent {
	notes := make([]*nostr.Note, 0, len(keys))
	for _, key := range keys {
		n, err := r.db.GetNoteByKey(ctx, key)
		if err != nil {
			r.logger.Warn("note lookup failed", "key", int64(key), "error", err)
			continue
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil
	}

	now := uint64(r.clock.Now().Unix())
	r.mu.Lock()
	var events []store.CoreEvent
	for _, n := range notes {
		events = append(events, r.state.HandleEvent(n, now)...)
	}
	coords := r.state.DrainPendingSubscriptions()
	r.mu.Unlock()

	r.announceProjects(coords)
	return events
}

// announceProjects publishes newly discovered project coordinates on
// the Subscriptions channel so the relay layer can open per-project
// requests upstream. Coordinates are announced at most once.
func (r *Runtime) announceProjects(coords []string) {
	if len(coords) == 0 {
		return
	}
	r.subMu.Lock()
	fresh := coords[:0]
	for _, coord := range coords {
		if r.projectSubs[coord] {
			continue
		}
		r.projectSubs[coord] = true
		fresh = append(fresh, coord)
	}
	r.subMu.Unlock()
	if len(fresh) == 0 {
		return
	}
	select {
	case r.subscriptions <- fresh:
	default:
		r.logger.Warn("project subscription announcement dropped", "count", len(fresh))
	}
}

func (r *Runtime) forward(sub *eventdb.Subscription) {
	r.subMu.Lock()
	r.subs = append(r.subs, sub)
	r.subMu.Unlock()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for batch := range sub.C {
			select {
			case r.keys <- batch:
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Events delivers change notifications in the order the underlying
// batches were applied. The channel closes when the runtime stops.
func (r *Runtime) Events() <-chan []store.CoreEvent { return r.events }

// Subscriptions delivers newly discovered project coordinates, each
// at most once, for the relay layer to subscribe upstream.
func (r *Runtime) Subscriptions() <-chan []string { return r.subscriptions }

// SaveCache snapshots the state and writes it to the snapshot cache.
// A write failure disables the cache for the rest of the process; the
// runtime keeps working without it.
func (r *Runtime) SaveCache() error {
	if r.cache == nil || r.cacheBroken.Load() {
		return nil
	}
	r.mu.RLock()
	state, watermark := r.state.Snapshot()
	r.mu.RUnlock()
	if err := r.cache.Save(state, uint64(r.clock.Now().Unix()), watermark); err != nil {
		r.cacheBroken.Store(true)
		r.logger.Warn("state cache save failed, cache disabled", "error", err)
		return err
	}
	return nil
}

// Close stops the event loop and waits for all goroutines to exit.
// A final cache snapshot is attempted first.
func (r *Runtime) Close() {
	if !r.started.Load() {
		return
	}
	_ = r.SaveCache()
	r.cancel()
	r.subMu.Lock()
	subs := r.subs
	r.subs = nil
	r.subMu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
	r.wg.Wait()
}
