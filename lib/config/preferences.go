// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"

	"github.com/tenex-chat/tenex/lib/clock"
)

// Preferences is the mutable per-user state, persisted as JSON under
// the data directory. Reads tolerate JSONC (comments and trailing
// commas) so hand-edited files survive; writes always emit plain
// pretty-printed JSON.
type Preferences struct {
	LastProjectATag   string   `json:"last_project_a_tag,omitempty"`
	SelectedProjects  []string `json:"selected_projects,omitempty"`
	ShowLLMMetadata   bool     `json:"show_llm_metadata,omitempty"`
	HideScheduled     bool     `json:"hide_scheduled,omitempty"`
	ArchivedThreadIDs []string `json:"archived_thread_ids,omitempty"`
	ArchivedProjects  []string `json:"archived_project_ids,omitempty"`

	// Trust decisions about backend pubkeys. A pubkey is in at most
	// one of the two sets; approving removes a block and vice versa.
	ApprovedBackendPubkeys []string `json:"approved_backend_pubkeys,omitempty"`
	BlockedBackendPubkeys  []string `json:"blocked_backend_pubkeys,omitempty"`

	// InboxReadIDs are the event ids of inbox items the user has
	// read, carried across restarts.
	InboxReadIDs []string `json:"inbox_read_ids,omitempty"`

	// StoredCredentials is a bare key (hex or nsec) or an ncryptsec
	// blob; see lib/keys.
	StoredCredentials string `json:"stored_credentials,omitempty"`

	Workspaces        []Workspace `json:"workspaces,omitempty"`
	ActiveWorkspaceID string      `json:"active_workspace_id,omitempty"`

	Audio AudioSettings `json:"audio,omitempty"`
}

// Workspace is a named group of projects visible across all views.
type Workspace struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ProjectIDs []string `json:"project_ids"`
	CreatedAt  uint64   `json:"created_at"`
	Pinned     bool     `json:"pinned"`
}

// AudioSettings configures spoken notifications.
type AudioSettings struct {
	Enabled          bool     `json:"enabled,omitempty"`
	SelectedVoiceIDs []string `json:"selected_voice_ids,omitempty"`
	// OpenRouterModels is either a single legacy model ID or a
	// versioned JSON list; lib/audio decodes it.
	OpenRouterModels        string `json:"openrouter_models,omitempty"`
	AudioPrompt             string `json:"audio_prompt,omitempty"`
	InactivityThresholdSecs uint64 `json:"tts_inactivity_threshold_secs,omitempty"`
}

// PreferencesStore owns the preferences file. Every mutating method
// persists immediately; a crash loses at most the in-flight change.
// Not safe for concurrent use — the core serializes access.
type PreferencesStore struct {
	path  string
	clock clock.Clock
	prefs Preferences
}

// OpenPreferences loads preferences.json from dataDir, starting from
// zero values if the file is missing or unreadable. User state must
// never block startup; a corrupt file costs the preferences, not the
// session.
func OpenPreferences(dataDir string, clk clock.Clock) *PreferencesStore {
	if clk == nil {
		clk = clock.Real()
	}
	store := &PreferencesStore{
		path:  filepath.Join(dataDir, "preferences.json"),
		clock: clk,
	}
	if data, err := os.ReadFile(store.path); err == nil {
		// jsonc.ToJSON strips comments and trailing commas; invalid
		// JSON after that falls back to defaults.
		_ = json.Unmarshal(jsonc.ToJSON(data), &store.prefs)
	}
	return store
}

// Prefs returns a copy of the current preferences.
func (s *PreferencesStore) Prefs() Preferences {
	return s.prefs
}

// save persists the preferences via temp file and rename.
func (s *PreferencesStore) save() error {
	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encoding preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config: writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: replacing preferences: %w", err)
	}
	return nil
}

// SetLastProject records the most recently selected project a-tag.
func (s *PreferencesStore) SetLastProject(aTag string) error {
	s.prefs.LastProjectATag = aTag
	return s.save()
}

// LastProject returns the most recently selected project a-tag.
func (s *PreferencesStore) LastProject() string {
	return s.prefs.LastProjectATag
}

// SetSelectedProjects replaces the manually selected project set.
func (s *PreferencesStore) SetSelectedProjects(aTags []string) error {
	s.prefs.SelectedProjects = slices.Clone(aTags)
	return s.save()
}

// SetShowLLMMetadata toggles display of llm-* message metadata.
func (s *PreferencesStore) SetShowLLMMetadata(show bool) error {
	s.prefs.ShowLLMMetadata = show
	return s.save()
}

// SetHideScheduled toggles filtering of scheduled conversations.
func (s *PreferencesStore) SetHideScheduled(hide bool) error {
	s.prefs.HideScheduled = hide
	return s.save()
}

// IsThreadArchived reports whether the thread is archived.
func (s *PreferencesStore) IsThreadArchived(threadID string) bool {
	return slices.Contains(s.prefs.ArchivedThreadIDs, threadID)
}

// ToggleThreadArchived flips a thread's archived state, returning the
// new state.
func (s *PreferencesStore) ToggleThreadArchived(threadID string) (bool, error) {
	if slices.Contains(s.prefs.ArchivedThreadIDs, threadID) {
		s.prefs.ArchivedThreadIDs = removeString(s.prefs.ArchivedThreadIDs, threadID)
		return false, s.save()
	}
	s.prefs.ArchivedThreadIDs = append(s.prefs.ArchivedThreadIDs, threadID)
	return true, s.save()
}

// IsProjectArchived reports whether the project is archived.
func (s *PreferencesStore) IsProjectArchived(aTag string) bool {
	return slices.Contains(s.prefs.ArchivedProjects, aTag)
}

// ToggleProjectArchived flips a project's archived state, returning
// the new state.
func (s *PreferencesStore) ToggleProjectArchived(aTag string) (bool, error) {
	if slices.Contains(s.prefs.ArchivedProjects, aTag) {
		s.prefs.ArchivedProjects = removeString(s.prefs.ArchivedProjects, aTag)
		return false, s.save()
	}
	s.prefs.ArchivedProjects = append(s.prefs.ArchivedProjects, aTag)
	return true, s.save()
}

// SetInboxReadIDs replaces the persisted inbox read set.
func (s *PreferencesStore) SetInboxReadIDs(ids []string) error {
	s.prefs.InboxReadIDs = slices.Clone(ids)
	return s.save()
}

// IsBackendApproved reports whether the pubkey is in the approved set.
func (s *PreferencesStore) IsBackendApproved(pubkey string) bool {
	return slices.Contains(s.prefs.ApprovedBackendPubkeys, pubkey)
}

// IsBackendBlocked reports whether the pubkey is in the blocked set.
func (s *PreferencesStore) IsBackendBlocked(pubkey string) bool {
	return slices.Contains(s.prefs.BlockedBackendPubkeys, pubkey)
}

// ApproveBackend moves a backend pubkey into the approved set,
// removing any block.
func (s *PreferencesStore) ApproveBackend(pubkey string) error {
	s.prefs.BlockedBackendPubkeys = removeString(s.prefs.BlockedBackendPubkeys, pubkey)
	if !slices.Contains(s.prefs.ApprovedBackendPubkeys, pubkey) {
		s.prefs.ApprovedBackendPubkeys = append(s.prefs.ApprovedBackendPubkeys, pubkey)
	}
	return s.save()
}

// BlockBackend moves a backend pubkey into the blocked set, removing
// any approval.
func (s *PreferencesStore) BlockBackend(pubkey string) error {
	s.prefs.ApprovedBackendPubkeys = removeString(s.prefs.ApprovedBackendPubkeys, pubkey)
	if !slices.Contains(s.prefs.BlockedBackendPubkeys, pubkey) {
		s.prefs.BlockedBackendPubkeys = append(s.prefs.BlockedBackendPubkeys, pubkey)
	}
	return s.save()
}

// HasStoredCredentials reports whether any credential is stored.
func (s *PreferencesStore) HasStoredCredentials() bool {
	return s.prefs.StoredCredentials != ""
}

// StoredCredentials returns the stored credential string, empty if
// none.
func (s *PreferencesStore) StoredCredentials() string {
	return s.prefs.StoredCredentials
}

// StoreCredentials persists a credential (bare key or ncryptsec).
func (s *PreferencesStore) StoreCredentials(credential string) error {
	s.prefs.StoredCredentials = credential
	return s.save()
}

// ClearCredentials removes the stored credential.
func (s *PreferencesStore) ClearCredentials() error {
	s.prefs.StoredCredentials = ""
	return s.save()
}

// AddWorkspace creates a workspace from the given projects and
// persists it.
func (s *PreferencesStore) AddWorkspace(name string, projectIDs []string) (Workspace, error) {
	now := s.clock.Now()
	workspace := Workspace{
		ID:         fmt.Sprintf("ws_%d", now.UnixMilli()),
		Name:       name,
		ProjectIDs: slices.Clone(projectIDs),
		CreatedAt:  uint64(now.Unix()),
	}
	s.prefs.Workspaces = append(s.prefs.Workspaces, workspace)
	return workspace, s.save()
}

// DeleteWorkspace removes a workspace, clearing the active selection
// if it pointed there.
func (s *PreferencesStore) DeleteWorkspace(id string) error {
	s.prefs.Workspaces = slices.DeleteFunc(s.prefs.Workspaces, func(w Workspace) bool {
		return w.ID == id
	})
	if s.prefs.ActiveWorkspaceID == id {
		s.prefs.ActiveWorkspaceID = ""
	}
	return s.save()
}

// SetActiveWorkspace selects a workspace, or clears the selection with
// an empty ID.
func (s *PreferencesStore) SetActiveWorkspace(id string) error {
	s.prefs.ActiveWorkspaceID = id
	return s.save()
}

// ActiveWorkspace returns the selected workspace, if any.
func (s *PreferencesStore) ActiveWorkspace() (Workspace, bool) {
	for _, w := range s.prefs.Workspaces {
		if w.ID == s.prefs.ActiveWorkspaceID && w.ID != "" {
			return w, true
		}
	}
	return Workspace{}, false
}

// SetAudioSettings replaces the audio notification settings.
func (s *PreferencesStore) SetAudioSettings(settings AudioSettings) error {
	s.prefs.Audio = settings
	return s.save()
}

func removeString(list []string, value string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == value })
}
