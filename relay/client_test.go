// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
)

type captureIngester struct {
	mu    sync.Mutex
	notes []*nostr.Note
}

func (c *captureIngester) Ingest(_ context.Context, notes []*nostr.Note) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, notes...)
	return len(notes), nil
}

func (c *captureIngester) ids(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.notes))
	for i, n := range c.notes {
		out[i] = n.IDHex()
	}
	return out
}

// fakeRelay runs handler once per connecting client and returns the
// ws:// URL.
func fakeRelay(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// readReq reads one frame from conn and asserts it is a REQ,
// returning the subscription id.
func readReq(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("server read: %v", err)
		return ""
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) != 3 {
		t.Errorf("REQ frame = %s", data)
		return ""
	}
	var typ, subID string
	_ = json.Unmarshal(parts[0], &typ)
	_ = json.Unmarshal(parts[1], &subID)
	if typ != "REQ" {
		t.Errorf("frame type = %q, want REQ", typ)
	}
	return subID
}

func sendEvent(t *testing.T, conn *websocket.Conn, subID string, ev nostr.Event) {
	t.Helper()
	data, err := json.Marshal([]any{"EVENT", subID, ev})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Errorf("server write: %v", err)
	}
}

func sendEOSE(t *testing.T, conn *websocket.Conn, subID string) {
	t.Helper()
	data, _ := json.Marshal([]any{"EOSE", subID})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Errorf("server write: %v", err)
	}
}

func runClient(t *testing.T, c *Client) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, done, 5*time.Second, "client shutdown")
	})
	return cancel
}

func TestClientIngestsBacklogThenSyncs(t *testing.T) {
	hold := make(chan struct{})
	url := fakeRelay(t, func(conn *websocket.Conn) {
		subID := readReq(t, conn)
		sendEvent(t, conn, subID, nostr.Event{
			ID:        testutil.SeedIDHex(1),
			Pubkey:    testutil.SeedIDHex(2),
			Kind:      nostr.KindText,
			CreatedAt: 100,
			Content:   "backlog",
		})
		sendEOSE(t, conn, subID)
		<-hold
	})
	defer close(hold)

	ingester := &captureIngester{}
	c, err := New(Config{
		URL:      url,
		Ingester: ingester,
		Filters:  []nostr.Filter{{Kinds: []uint16{nostr.KindText}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runClient(t, c)

	testutil.RequireClosed(t, c.Synced(), 5*time.Second, "waiting for EOSE")
	ids := ingester.ids(t)
	if len(ids) != 1 || ids[0] != testutil.SeedIDHex(1) {
		t.Fatalf("ingested = %v", ids)
	}
}

func TestClientDropsMalformedEvents(t *testing.T) {
	hold := make(chan struct{})
	url := fakeRelay(t, func(conn *websocket.Conn) {
		subID := readReq(t, conn)
		// Bad hex id, then a good event.
		sendEvent(t, conn, subID, nostr.Event{ID: "nope", Pubkey: "nope", Kind: 1})
		sendEvent(t, conn, subID, nostr.Event{
			ID:     testutil.SeedIDHex(3),
			Pubkey: testutil.SeedIDHex(2),
			Kind:   nostr.KindText,
		})
		sendEOSE(t, conn, subID)
		<-hold
	})
	defer close(hold)

	ingester := &captureIngester{}
	c, err := New(Config{
		URL:      url,
		Ingester: ingester,
		Filters:  []nostr.Filter{{Kinds: []uint16{nostr.KindText}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runClient(t, c)

	testutil.RequireClosed(t, c.Synced(), 5*time.Second, "waiting for EOSE")
	if ids := ingester.ids(t); len(ids) != 1 || ids[0] != testutil.SeedIDHex(3) {
		t.Fatalf("ingested = %v", ids)
	}
}

func TestClientReconnectsAndReopensSubscriptions(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	hold := make(chan struct{})
	url := fakeRelay(t, func(conn *websocket.Conn) {
		readReq(t, conn)
		mu.Lock()
		dials++
		n := dials
		mu.Unlock()
		if n == 1 {
			return // drop the first connection after the REQ
		}
		sendEOSE(t, conn, "sub0")
		<-hold
	})
	defer close(hold)

	c, err := New(Config{
		URL:        url,
		Ingester:   &captureIngester{},
		Filters:    []nostr.Filter{{Kinds: []uint16{nostr.KindText}}},
		BackoffMin: 10 * time.Millisecond,
		BackoffMax: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runClient(t, c)

	testutil.RequireClosed(t, c.Synced(), 5*time.Second, "waiting for EOSE on second connection")
	mu.Lock()
	defer mu.Unlock()
	if dials < 2 {
		t.Fatalf("dials = %d, want >= 2", dials)
	}
}

func TestSubscribeOnLiveConnection(t *testing.T) {
	subIDs := make(chan string, 2)
	hold := make(chan struct{})
	url := fakeRelay(t, func(conn *websocket.Conn) {
		subIDs <- readReq(t, conn)
		subIDs <- readReq(t, conn)
		<-hold
	})
	defer close(hold)

	c, err := New(Config{
		URL:      url,
		Ingester: &captureIngester{},
		Filters:  []nostr.Filter{{Kinds: []uint16{nostr.KindProject}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runClient(t, c)

	first := testutil.RequireReceive(t, subIDs, 5*time.Second, "initial REQ")

	// Wait for the connection to land before subscribing.
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.mu.Lock()
		connected := c.conn != nil
		c.mu.Unlock()
		if connected {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never connected")
		}
		time.Sleep(time.Millisecond)
	}
	c.Subscribe(nostr.Filter{TagName: "a", TagValues: []string{"31933:pk:proj"}})

	second := testutil.RequireReceive(t, subIDs, 5*time.Second, "project REQ")
	if first == second {
		t.Fatalf("duplicate sub id %q", first)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{Ingester: &captureIngester{}}); err == nil {
		t.Error("New without URL succeeded")
	}
	if _, err := New(Config{URL: "ws://localhost"}); err == nil {
		t.Error("New without Ingester succeeded")
	}
}
