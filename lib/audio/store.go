// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tenex-chat/tenex/lib/clock"
)

// Notification is the metadata sidecar stored next to each generated
// MP3. The JSON form is the on-disk format.
type Notification struct {
	ID                string `json:"id"`
	AgentPubkey       string `json:"agent_pubkey"`
	ConversationTitle string `json:"conversation_title"`
	OriginalText      string `json:"original_text"`
	MassagedText      string `json:"massaged_text"`
	VoiceID           string `json:"voice_id"`
	AudioFilePath     string `json:"audio_file_path"`
	CreatedAt         uint64 `json:"created_at"`
}

// Store persists audio notifications under a data directory.
type Store struct {
	dir    string
	clock  clock.Clock
	logger *slog.Logger
}

// NewStore returns a Store rooted at <dataDir>/audio_notifications.
// The directory is created on first save. A nil logger discards.
func NewStore(dataDir string, clk clock.Clock, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Store{
		dir:    filepath.Join(dataDir, "audio_notifications"),
		clock:  clk,
		logger: logger,
	}
}

// Save writes the MP3 bytes and metadata sidecar for a new
// notification, assigning it a fresh UUID. Both files are written via
// temp file plus rename so a crash cannot leave a torn artifact. The
// returned Notification has ID, AudioFilePath, and CreatedAt filled in.
func (s *Store) Save(meta Notification, mp3 []byte) (Notification, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Notification{}, fmt.Errorf("audio: creating notification directory: %w", err)
	}

	meta.ID = uuid.NewString()
	meta.CreatedAt = uint64(s.clock.Now().Unix())
	meta.AudioFilePath = filepath.Join(s.dir, meta.ID+".mp3")

	if err := writeAtomic(meta.AudioFilePath, mp3); err != nil {
		return Notification{}, fmt.Errorf("audio: writing mp3: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Notification{}, fmt.Errorf("audio: encoding metadata: %w", err)
	}
	if err := writeAtomic(s.metadataPath(meta.ID), sidecar); err != nil {
		return Notification{}, fmt.Errorf("audio: writing metadata: %w", err)
	}

	s.logger.Debug("audio notification saved",
		"id", meta.ID,
		"agent", meta.AgentPubkey,
		"bytes", len(mp3),
	)
	return meta, nil
}

// Get loads a notification's metadata by ID.
func (s *Store) Get(id string) (Notification, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		return Notification{}, fmt.Errorf("audio: reading notification %s: %w", id, err)
	}
	var meta Notification
	if err := json.Unmarshal(data, &meta); err != nil {
		return Notification{}, fmt.Errorf("audio: parsing notification %s: %w", id, err)
	}
	return meta, nil
}

// List returns all notifications, newest first. Sidecars that fail to
// parse are skipped: a corrupt entry should not hide the rest.
func (s *Store) List() ([]Notification, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audio: listing notifications: %w", err)
	}

	var notifications []Notification
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var meta Notification
		if err := json.Unmarshal(data, &meta); err != nil {
			s.logger.Warn("skipping unreadable notification sidecar", "file", name, "error", err)
			continue
		}
		notifications = append(notifications, meta)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	return notifications, nil
}

// Delete removes a notification's MP3 and sidecar. Missing files are
// not an error.
func (s *Store) Delete(id string) error {
	for _, path := range []string{s.metadataPath(id), filepath.Join(s.dir, id+".mp3")} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("audio: deleting %s: %w", path, err)
		}
	}
	return nil
}

// Cleanup deletes notifications older than maxAge, returning how many
// were removed.
func (s *Store) Cleanup(maxAge time.Duration) (int, error) {
	notifications, err := s.List()
	if err != nil {
		return 0, err
	}
	cutoff := uint64(s.clock.Now().Add(-maxAge).Unix())

	deleted := 0
	for _, meta := range notifications {
		if meta.CreatedAt >= cutoff {
			continue
		}
		if err := s.Delete(meta.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Info("cleaned up old audio notifications", "deleted", deleted)
	}
	return deleted, nil
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// writeAtomic writes data to path via a dot-prefixed temp file in the
// same directory followed by rename.
func writeAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
