// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"encoding/json"
	"fmt"

	"github.com/tenex-chat/tenex/lib/nostr"
)

// wireFilter is the NIP-01 JSON form of a filter.
type wireFilter struct {
	Kinds   []int    `json:"kinds,omitempty"`
	Authors []string `json:"authors,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Since   *uint64  `json:"since,omitempty"`

	// Tag filters serialize as "#<name>": [values]; handled in
	// MarshalJSON because the key is dynamic.
	tagName   string
	tagValues []string
}

func toWireFilter(f nostr.Filter) wireFilter {
	wf := wireFilter{
		Authors:   f.Authors,
		IDs:       f.IDs,
		tagName:   f.TagName,
		tagValues: f.TagValues,
	}
	for _, kind := range f.Kinds {
		wf.Kinds = append(wf.Kinds, int(kind))
	}
	if f.Since > 0 {
		since := f.Since
		wf.Since = &since
	}
	return wf
}

func (wf wireFilter) MarshalJSON() ([]byte, error) {
	type plain wireFilter
	data, err := json.Marshal(plain(wf))
	if err != nil {
		return nil, err
	}
	if wf.tagName == "" || len(wf.tagValues) == 0 {
		return data, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	values, err := json.Marshal(wf.tagValues)
	if err != nil {
		return nil, err
	}
	obj["#"+wf.tagName] = values
	return json.Marshal(obj)
}

// encodeReq renders a ["REQ", id, filter] frame.
func encodeReq(subID string, f nostr.Filter) ([]byte, error) {
	return json.Marshal([]any{"REQ", subID, toWireFilter(f)})
}

// encodeClose renders a ["CLOSE", id] frame.
func encodeClose(subID string) ([]byte, error) {
	return json.Marshal([]any{"CLOSE", subID})
}

// frame is a decoded relay-to-client message.
type frame struct {
	Type  string
	SubID string
	Event *nostr.Event
	// Notice carries the text of a NOTICE frame.
	Notice string
}

// decodeFrame parses EVENT, EOSE, NOTICE and CLOSED frames. Unknown
// frame types return kind "" and are skipped by the caller.
func decodeFrame(data []byte) (frame, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return frame{}, fmt.Errorf("relay: malformed frame: %w", err)
	}
	if len(parts) == 0 {
		return frame{}, fmt.Errorf("relay: empty frame")
	}
	var typ string
	if err := json.Unmarshal(parts[0], &typ); err != nil {
		return frame{}, fmt.Errorf("relay: frame type: %w", err)
	}
	out := frame{Type: typ}
	switch typ {
	case "EVENT":
		if len(parts) < 3 {
			return frame{}, fmt.Errorf("relay: EVENT frame with %d elements", len(parts))
		}
		if err := json.Unmarshal(parts[1], &out.SubID); err != nil {
			return frame{}, err
		}
		ev, err := nostr.ParseEvent(parts[2])
		if err != nil {
			return frame{}, err
		}
		out.Event = ev
	case "EOSE", "CLOSED":
		if len(parts) < 2 {
			return frame{}, fmt.Errorf("relay: %s frame with %d elements", typ, len(parts))
		}
		if err := json.Unmarshal(parts[1], &out.SubID); err != nil {
			return frame{}, err
		}
	case "NOTICE":
		if len(parts) >= 2 {
			_ = json.Unmarshal(parts[1], &out.Notice)
		}
	default:
		out.Type = ""
	}
	return out, nil
}
