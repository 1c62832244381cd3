// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/tenex-chat/tenex/lib/codec"
)

// CacheSchemaVersion is the snapshot format version. Bumping it
// invalidates every on-disk cache; there is no migration path, the
// store rebuilds from the event database.
const CacheSchemaVersion = 1

// CacheFileName is the snapshot file under the data directory.
const CacheFileName = "app_state_cache.bin"

const (
	// maxCacheAgeSecs discards snapshots older than 7 days on load.
	maxCacheAgeSecs = 7 * 24 * 3600

	// CatchUpSafetyWindowSecs is subtracted from the watermark when
	// requesting incremental catch-up, so late-arriving backfill
	// around the snapshot boundary is replayed rather than lost.
	CatchUpSafetyWindowSecs = 5 * 60
)

// ErrCacheInvalid reports an unusable snapshot: version mismatch,
// expiry, checksum failure, or decode error. Callers fall back to a
// full rebuild.
var ErrCacheInvalid = errors.New("store: cache invalid")

// cacheEnvelope is the on-disk frame around the compressed snapshot.
type cacheEnvelope struct {
	Version      uint32   `json:"version"`
	SavedAt      uint64   `json:"saved_at"`
	MaxCreatedAt uint64   `json:"max_created_at"`
	Checksum     [32]byte `json:"checksum"`
	Payload      []byte   `json:"payload"`
}

// zstd coders are reused across calls; both are safe for concurrent
// use.
var (
	cacheZstdEncoder *zstd.Encoder
	cacheZstdDecoder *zstd.Decoder
)

func init() {
	var err error
	cacheZstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	cacheZstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// StateCache persists AppDataStore snapshots for warm starts. The
// snapshot is deterministic CBOR, zstd-compressed, BLAKE3-checksummed,
// and written atomically via tmp+rename.
type StateCache struct {
	path   string
	logger *slog.Logger
}

// NewStateCache returns a cache writing to dir/app_state_cache.bin.
func NewStateCache(dir string, logger *slog.Logger) *StateCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StateCache{path: filepath.Join(dir, CacheFileName), logger: logger}
}

// Path returns the snapshot file path.
func (c *StateCache) Path() string { return c.path }

// Save writes the snapshot. savedAt is the wall clock in Unix
// seconds; maxCreatedAt is the watermark from [AppDataStore.Snapshot].
func (c *StateCache) Save(state *CachedState, savedAt, maxCreatedAt uint64) error {
	raw, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	payload := cacheZstdEncoder.EncodeAll(raw, nil)

	envelope := cacheEnvelope{
		Version:      CacheSchemaVersion,
		SavedAt:      savedAt,
		MaxCreatedAt: maxCreatedAt,
		Checksum:     blake3.Sum256(payload),
		Payload:      payload,
	}
	data, err := codec.Marshal(&envelope)
	if err != nil {
		return fmt.Errorf("store: encode cache envelope: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("store: write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename cache: %w", err)
	}
	c.logger.Debug("state cache saved",
		"path", c.path,
		"bytes", len(data),
		"max_created_at", maxCreatedAt)
	return nil
}

// Load reads and validates the snapshot. Returns the cached state and
// the max_created_at watermark; catch-up should start at
// watermark - [CatchUpSafetyWindowSecs]. Any validation failure
// returns [ErrCacheInvalid] (wrapped) and the caller rebuilds from
// scratch; a missing file returns os.ErrNotExist.
func (c *StateCache) Load(now uint64) (*CachedState, uint64, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, 0, err
	}

	var envelope cacheEnvelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: envelope decode: %v", ErrCacheInvalid, err)
	}
	if envelope.Version != CacheSchemaVersion {
		return nil, 0, fmt.Errorf("%w: schema version %d, want %d",
			ErrCacheInvalid, envelope.Version, CacheSchemaVersion)
	}
	if now > envelope.SavedAt && now-envelope.SavedAt > maxCacheAgeSecs {
		return nil, 0, fmt.Errorf("%w: snapshot is %d seconds old",
			ErrCacheInvalid, now-envelope.SavedAt)
	}
	if sum := blake3.Sum256(envelope.Payload); !bytes.Equal(sum[:], envelope.Checksum[:]) {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", ErrCacheInvalid)
	}

	raw, err := cacheZstdDecoder.DecodeAll(envelope.Payload, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decompress: %v", ErrCacheInvalid, err)
	}
	var state CachedState
	if err := codec.Unmarshal(raw, &state); err != nil {
		return nil, 0, fmt.Errorf("%w: snapshot decode: %v", ErrCacheInvalid, err)
	}
	return &state, envelope.MaxCreatedAt, nil
}
