// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// tenex runs the TENEX materialization daemon: it connects to the
// configured Nostr relays, ingests every consumed event kind into the
// local event database, materializes the application state, and keeps
// the state cache snapshot fresh. Front ends attach to the same data
// directory.
//
// Configuration comes from a single YAML file named by TENEX_CONFIG
// or --config; see lib/config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tenex-chat/tenex/core"
	"github.com/tenex-chat/tenex/eventdb"
	"github.com/tenex-chat/tenex/lib/clock"
	"github.com/tenex-chat/tenex/lib/config"
	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/relay"
	"github.com/tenex-chat/tenex/store"
)

// cacheSnapshotInterval is how often the running daemon refreshes the
// state cache; a final snapshot is also written on shutdown.
const cacheSnapshotInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tenex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var userPubkey string
	var logLevel string
	var extraRelays []string
	var noCache bool
	var doStoreKey bool

	flagSet := pflag.NewFlagSet("tenex", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to tenex.yaml (overrides TENEX_CONFIG)")
	flagSet.StringVar(&userPubkey, "user", "", "hex pubkey of the local user (inbox and statistics)")
	flagSet.StringVar(&logLevel, "log-level", "", "override logging.level from the config")
	flagSet.StringArrayVar(&extraRelays, "relay", nil, "additional relay websocket URL (repeatable)")
	flagSet.BoolVar(&noCache, "no-cache", false, "skip the state cache and rebuild from the event database")
	flagSet.BoolVar(&doStoreKey, "store-key", false, "interactively store a signing key in preferences, then exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Relays = append(cfg.Relays, extraRelays...)
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, closeLog, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	prefs := config.OpenPreferences(cfg.DataDir, clock.Real())
	if doStoreKey {
		return storeKey(prefs)
	}

	db, err := eventdb.Open(eventdb.Config{
		Path:     filepath.Join(cfg.DataDir, "events.db"),
		PoolSize: 4,
		Logger:   logger.With("component", "eventdb"),
	})
	if err != nil {
		return fmt.Errorf("opening event database: %w", err)
	}
	defer db.Close()

	var cache *store.StateCache
	if !cfg.Cache.Disabled && !noCache {
		cache = store.NewStateCache(cfg.DataDir, logger.With("component", "cache"))
	}

	p := prefs.Prefs()
	runtime, err := core.New(core.Options{
		DB:               db,
		CurrentUser:      userPubkey,
		Staleness:        time.Duration(cfg.Status.StalenessSeconds) * time.Second,
		InboxReadIDs:     p.InboxReadIDs,
		ApprovedBackends: p.ApprovedBackendPubkeys,
		BlockedBackends:  p.BlockedBackendPubkeys,
		Cache:            cache,
		Logger:           logger.With("component", "core"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runtime.Start(ctx); err != nil {
		return err
	}
	defer runtime.Close()

	clients := make([]*relay.Client, 0, len(cfg.Relays))
	for _, url := range cfg.Relays {
		client, err := relay.New(relay.Config{
			URL:      url,
			Ingester: db,
			Filters:  []nostr.Filter{{Kinds: core.ConsumedKinds()}},
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		clients = append(clients, client)
		go func() { _ = client.Run(ctx) }()
	}
	if len(clients) == 0 {
		logger.Warn("no relays configured, serving local data only")
	}

	go rejectCommands(ctx, runtime, logger)
	go forwardProjectSubscriptions(ctx, runtime, clients)
	go snapshotLoop(ctx, runtime, logger)

	logger.Info("tenex daemon running",
		"data_dir", cfg.DataDir,
		"relays", len(clients),
		"cache", cache != nil)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case events, ok := <-runtime.Events():
			if !ok {
				return nil
			}
			logEvents(logger, events)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func buildLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeLog = func() { f.Close() }
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeLog, nil
}

// rejectCommands drains the command queue. The daemon carries no
// signing identity, so every publish request fails fast instead of
// waiting out its confirmation window.
func rejectCommands(ctx context.Context, runtime *core.Runtime, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-runtime.Requests():
			logger.Warn("rejecting publish request, no signing identity configured")
			req.Result <- fmt.Errorf("tenex: publishing requires a signing front end")
		}
	}
}

// forwardProjectSubscriptions opens a project-scoped subscription on
// every relay as the runtime discovers project coordinates.
func forwardProjectSubscriptions(ctx context.Context, runtime *core.Runtime, clients []*relay.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case coords, ok := <-runtime.Subscriptions():
			if !ok {
				return
			}
			filter := nostr.Filter{
				Kinds:     []uint16{nostr.KindText, nostr.KindConversationMetadata},
				TagName:   "a",
				TagValues: coords,
			}
			for _, client := range clients {
				client.Subscribe(filter)
			}
		}
	}
}

func snapshotLoop(ctx context.Context, runtime *core.Runtime, logger *slog.Logger) {
	ticker := time.NewTicker(cacheSnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := runtime.SaveCache(); err != nil {
				logger.Warn("cache snapshot failed", "error", err)
			}
		}
	}
}

func logEvents(logger *slog.Logger, events []store.CoreEvent) {
	for _, ev := range events {
		switch {
		case ev.Message != nil:
			logger.Debug("message",
				"thread", ev.Message.ThreadID,
				"author", ev.Message.Pubkey)
		case ev.ProjectStatus != nil:
			logger.Debug("project status", "project", ev.ProjectStatus.ProjectCoordinate)
		case ev.PendingApproval != nil:
			logger.Info("backend awaiting approval",
				"backend", ev.PendingApproval.BackendPubkey,
				"project", ev.PendingApproval.ProjectCoordinate)
		}
	}
}
