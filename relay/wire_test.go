// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"encoding/json"
	"testing"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/testutil"
)

func TestEncodeReqTagFilter(t *testing.T) {
	data, err := encodeReq("sub0", nostr.Filter{
		Kinds:     []uint16{nostr.KindText},
		Since:     100,
		TagName:   "a",
		TagValues: []string{"31933:pk:proj"},
	})
	if err != nil {
		t.Fatalf("encodeReq: %v", err)
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("frame has %d elements, want 3", len(parts))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(parts[2], &obj); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if string(obj["kinds"]) != "[1]" {
		t.Errorf("kinds = %s", obj["kinds"])
	}
	if string(obj["since"]) != "100" {
		t.Errorf("since = %s", obj["since"])
	}
	if string(obj["#a"]) != `["31933:pk:proj"]` {
		t.Errorf("#a = %s", obj["#a"])
	}
}

func TestEncodeReqOmitsEmptyFields(t *testing.T) {
	data, err := encodeReq("sub0", nostr.Filter{Kinds: []uint16{nostr.KindProject}})
	if err != nil {
		t.Fatalf("encodeReq: %v", err)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(parts[2], &obj); err != nil {
		t.Fatalf("filter: %v", err)
	}
	for _, key := range []string{"since", "authors", "ids"} {
		if _, ok := obj[key]; ok {
			t.Errorf("filter contains %q: %s", key, obj[key])
		}
	}
}

func TestDecodeFrameEvent(t *testing.T) {
	ev := nostr.Event{
		ID:        testutil.SeedIDHex(1),
		Pubkey:    testutil.SeedIDHex(2),
		Kind:      nostr.KindText,
		CreatedAt: 100,
		Content:   "hello",
		Tags:      [][]string{{"a", "31933:pk:proj"}},
	}
	payload, err := json.Marshal([]any{"EVENT", "sub0", ev})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	fr, err := decodeFrame(payload)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if fr.Type != "EVENT" || fr.SubID != "sub0" {
		t.Fatalf("frame = %+v", fr)
	}
	if fr.Event.ID != ev.ID || fr.Event.Content != "hello" {
		t.Errorf("event = %+v", fr.Event)
	}
}

func TestDecodeFrameEOSEAndNotice(t *testing.T) {
	fr, err := decodeFrame([]byte(`["EOSE","sub3"]`))
	if err != nil || fr.Type != "EOSE" || fr.SubID != "sub3" {
		t.Fatalf("EOSE frame = %+v, err = %v", fr, err)
	}

	fr, err = decodeFrame([]byte(`["NOTICE","rate limited"]`))
	if err != nil || fr.Type != "NOTICE" || fr.Notice != "rate limited" {
		t.Fatalf("NOTICE frame = %+v, err = %v", fr, err)
	}

	// Unknown frame types are skippable, not errors.
	fr, err = decodeFrame([]byte(`["AUTH","challenge"]`))
	if err != nil || fr.Type != "" {
		t.Fatalf("AUTH frame = %+v, err = %v", fr, err)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	for _, payload := range []string{`{}`, `[]`, `["EVENT","sub0"]`, `garbage`} {
		if _, err := decodeFrame([]byte(payload)); err == nil {
			t.Errorf("decodeFrame(%q) succeeded", payload)
		}
	}
}
