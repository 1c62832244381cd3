// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"slices"
	"strings"
)

// modelListPrefix marks an openrouter_models preference value that
// encodes a JSON array. Values without the prefix are legacy single
// model IDs.
const modelListPrefix = "tenex:openrouter_models:v1:"

// SelectVoice deterministically assigns one of the candidate voice IDs
// to the agent with the given pubkey. Candidates are sorted and
// deduplicated first, so the assignment is independent of list order
// and of repeated entries. Returns false if no candidates remain.
//
// The hash must be stable across runs, platforms, and releases —
// voice identity is part of the user's mental model of each agent —
// so this is SHA-256, never a seeded or randomized hash.
func SelectVoice(agentPubkey string, candidates []string) (string, bool) {
	normalized := normalizeCandidates(candidates)
	if len(normalized) == 0 {
		return "", false
	}
	digest := sha256.Sum256([]byte(agentPubkey))
	index := binary.BigEndian.Uint64(digest[:8]) % uint64(len(normalized))
	return normalized[index], true
}

// SelectModel assigns an LLM model ID the same way [SelectVoice]
// assigns voices, over the decoded openrouter_models setting.
func SelectModel(agentPubkey, setting string) (string, bool) {
	return SelectVoice(agentPubkey, DecodeModelList(setting))
}

// DecodeModelList parses the openrouter_models preference value.
// A value carrying the versioned prefix holds a JSON string array;
// anything else is a legacy single model ID. Entries are trimmed,
// empties dropped, and the result sorted and deduplicated. A prefixed
// value with malformed JSON decodes to nil rather than guessing.
func DecodeModelList(setting string) []string {
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return nil
	}
	if rest, ok := strings.CutPrefix(setting, modelListPrefix); ok {
		var models []string
		if err := json.Unmarshal([]byte(rest), &models); err != nil {
			return nil
		}
		return normalizeCandidates(models)
	}
	return normalizeCandidates([]string{setting})
}

// EncodeModelList renders a model list into the versioned preference
// form that [DecodeModelList] reads back.
func EncodeModelList(models []string) string {
	normalized := normalizeCandidates(models)
	if normalized == nil {
		normalized = []string{}
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		// A []string cannot fail to marshal.
		panic("audio: encoding model list: " + err.Error())
	}
	return modelListPrefix + string(encoded)
}

// normalizeCandidates trims entries, drops empties, sorts, and
// deduplicates. Returns nil when nothing survives.
func normalizeCandidates(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
