// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Draft is an unsent message composed for a project, keyed by the
// project's a-tag. Drafts survive restarts so half-written prompts are
// not lost.
type Draft struct {
	ProjectATag         string `json:"project_a_tag"`
	Text                string `json:"text"`
	SelectedAgentPubkey string `json:"selected_agent_pubkey,omitempty"`
	LastModified        uint64 `json:"last_modified"`
}

// IsEmpty reports whether the draft has no content worth keeping.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// DraftStore persists drafts to project_drafts.json in the data
// directory. Like [PreferencesStore], reads tolerate JSONC and a
// corrupt file resets to empty rather than failing startup.
type DraftStore struct {
	path   string
	drafts map[string]Draft
}

// OpenDrafts loads the draft file from dataDir.
func OpenDrafts(dataDir string) *DraftStore {
	store := &DraftStore{
		path:   filepath.Join(dataDir, "project_drafts.json"),
		drafts: make(map[string]Draft),
	}
	if data, err := os.ReadFile(store.path); err == nil {
		_ = json.Unmarshal(jsonc.ToJSON(data), &store.drafts)
	}
	return store
}

// Save stores a draft, or deletes it when empty: clearing the compose
// box clears the draft.
func (s *DraftStore) Save(draft Draft) error {
	if draft.IsEmpty() {
		delete(s.drafts, draft.ProjectATag)
	} else {
		s.drafts[draft.ProjectATag] = draft
	}
	return s.persist()
}

// Load returns the draft for a project.
func (s *DraftStore) Load(projectATag string) (Draft, bool) {
	draft, ok := s.drafts[projectATag]
	return draft, ok
}

// Delete removes the draft for a project.
func (s *DraftStore) Delete(projectATag string) error {
	delete(s.drafts, projectATag)
	return s.persist()
}

func (s *DraftStore) persist() error {
	data, err := json.MarshalIndent(s.drafts, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encoding drafts: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config: writing drafts: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: replacing drafts: %w", err)
	}
	return nil
}
