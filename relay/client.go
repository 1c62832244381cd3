// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// Ingester receives the notes decoded from EVENT frames. Satisfied by
// *eventdb.DB.
type Ingester interface {
	Ingest(ctx context.Context, notes []*nostr.Note) (int, error)
}

// Config configures a Client.
type Config struct {
	// URL is the relay websocket endpoint (ws:// or wss://). Required.
	URL string

	// Ingester stores decoded events. Required.
	Ingester Ingester

	// Filters are the subscriptions opened on every (re)connect.
	// More can be added later with Subscribe.
	Filters []nostr.Filter

	Logger *slog.Logger

	// DialTimeout bounds the websocket handshake. Default 10 s.
	DialTimeout time.Duration

	// BackoffMin and BackoffMax bound the reconnect backoff.
	// Defaults 1 s and 60 s.
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Client maintains one relay connection. Run drives the connect /
// read / reconnect loop until its context is cancelled.
type Client struct {
	url         string
	ingester    Ingester
	logger      *slog.Logger
	dialTimeout time.Duration
	backoffMin  time.Duration
	backoffMax  time.Duration

	// writeMu serializes frame writes; gorilla/websocket allows only
	// one concurrent writer.
	writeMu sync.Mutex

	mu      sync.Mutex
	filters map[string]nostr.Filter // sub id → filter
	nextSub int
	conn    *websocket.Conn
	eose    map[string]bool
	initial map[string]bool // sub ids counted toward Synced

	synced     chan struct{}
	syncedOnce sync.Once
}

// New builds a Client. Run must be called to connect.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("relay: Config.URL is required")
	}
	if cfg.Ingester == nil {
		return nil, errors.New("relay: Config.Ingester is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{
		url:         cfg.URL,
		ingester:    cfg.Ingester,
		logger:      logger.With("relay", cfg.URL),
		dialTimeout: cfg.DialTimeout,
		backoffMin:  cfg.BackoffMin,
		backoffMax:  cfg.BackoffMax,
		filters:     make(map[string]nostr.Filter),
		eose:        make(map[string]bool),
		initial:     make(map[string]bool),
		synced:      make(chan struct{}),
	}
	if c.dialTimeout <= 0 {
		c.dialTimeout = 10 * time.Second
	}
	if c.backoffMin <= 0 {
		c.backoffMin = time.Second
	}
	if c.backoffMax <= 0 {
		c.backoffMax = time.Minute
	}
	for _, f := range cfg.Filters {
		id := c.addFilter(f)
		c.initial[id] = true
	}
	if len(c.initial) == 0 {
		c.syncedOnce.Do(func() { close(c.synced) })
	}
	return c, nil
}

func (c *Client) addFilter(f nostr.Filter) string {
	id := fmt.Sprintf("sub%d", c.nextSub)
	c.nextSub++
	c.filters[id] = f
	return id
}

// Subscribe adds a filter and, when connected, opens its REQ
// immediately. The filter is re-opened after every reconnect.
func (c *Client) Subscribe(f nostr.Filter) {
	c.mu.Lock()
	id := c.addFilter(f)
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	if err := c.writeReq(conn, id, f); err != nil {
		c.logger.Warn("subscribe failed", "sub", id, "error", err)
	}
}

// Synced closes once every initial subscription has received EOSE.
func (c *Client) Synced() <-chan struct{} { return c.synced }

// Run connects and consumes frames until ctx is cancelled,
// redialling with exponential backoff on every failure.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.backoffMin
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("connection lost, reconnecting", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.backoffMax)
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("relay: dial: %w", err)
	}
	defer conn.Close()

	// Close the socket when ctx ends so the blocked read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	c.mu.Lock()
	c.conn = conn
	// EOSE state is per-connection.
	c.eose = make(map[string]bool)
	subs := make(map[string]nostr.Filter, len(c.filters))
	for id, f := range c.filters {
		subs[id] = f
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	for id, f := range subs {
		if err := c.writeReq(conn, id, f); err != nil {
			return err
		}
	}
	c.logger.Info("connected", "subscriptions", len(subs))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("relay: read: %w", err)
		}
		fr, err := decodeFrame(data)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}
		switch fr.Type {
		case "EVENT":
			c.handleEvent(ctx, fr.Event)
		case "EOSE":
			c.handleEOSE(fr.SubID)
		case "CLOSED":
			c.logger.Warn("subscription closed by relay", "sub", fr.SubID)
		case "NOTICE":
			c.logger.Info("relay notice", "message", fr.Notice)
		}
	}
}

func (c *Client) handleEvent(ctx context.Context, ev *nostr.Event) {
	note, err := ev.Note()
	if err != nil {
		c.logger.Warn("dropping malformed event", "error", err)
		return
	}
	if _, err := c.ingester.Ingest(ctx, []*nostr.Note{note}); err != nil {
		c.logger.Warn("ingest failed", "id", ev.ID, "error", err)
	}
}

func (c *Client) handleEOSE(subID string) {
	c.mu.Lock()
	c.eose[subID] = true
	allInitial := true
	for id := range c.initial {
		if !c.eose[id] {
			allInitial = false
			break
		}
	}
	c.mu.Unlock()
	if allInitial {
		c.syncedOnce.Do(func() { close(c.synced) })
	}
}

func (c *Client) writeReq(conn *websocket.Conn, subID string, f nostr.Filter) error {
	data, err := encodeReq(subID, f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("relay: write REQ: %w", err)
	}
	return nil
}

// Unsubscribe sends CLOSE for every subscription matching the
// predicate and forgets them. Used when a project disappears.
func (c *Client) Unsubscribe(match func(nostr.Filter) bool) {
	c.mu.Lock()
	conn := c.conn
	var closed []string
	for id, f := range c.filters {
		if match(f) {
			delete(c.filters, id)
			closed = append(closed, id)
		}
	}
	c.mu.Unlock()
	if conn == nil {
		return
	}
	for _, id := range closed {
		data, err := encodeClose(id)
		if err != nil {
			continue
		}
		c.writeMu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, data)
		c.writeMu.Unlock()
		if err != nil {
			c.logger.Warn("write CLOSE failed", "sub", id, "error", err)
			return
		}
	}
}
