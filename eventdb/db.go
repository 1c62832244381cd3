// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package eventdb

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tenex-chat/tenex/lib/nostr"
	"github.com/tenex-chat/tenex/lib/sqlitepool"
)

// NoteKey identifies a stored note. Keys are assigned at ingest in
// storage order and never reused.
type NoteKey int64

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	key INTEGER PRIMARY KEY,
	id BLOB NOT NULL UNIQUE,
	pubkey BLOB NOT NULL,
	kind INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL,
	raw TEXT
);
CREATE INDEX IF NOT EXISTS notes_kind_created_at ON notes(kind, created_at);
CREATE INDEX IF NOT EXISTS notes_pubkey ON notes(pubkey);
CREATE INDEX IF NOT EXISTS notes_created_at ON notes(created_at);

CREATE TABLE IF NOT EXISTS note_tags (
	note_key INTEGER NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS note_tags_name_value ON note_tags(name, value);
CREATE INDEX IF NOT EXISTS note_tags_note_key ON note_tags(note_key);
`

// Config holds the parameters for opening an event database.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string

	// PoolSize is passed through to the connection pool.
	PoolSize int

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// DB is the event database handle. Safe for concurrent use.
type DB struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger

	mu      sync.Mutex
	nextSub int64
	subs    map[int64]*Subscription
}

// Open opens (creating if needed) the event database at cfg.Path.
func Open(cfg Config) (*DB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eventdb: %w", err)
	}
	return &DB{
		pool:   pool,
		logger: logger,
		subs:   make(map[int64]*Subscription),
	}, nil
}

// Close cancels all subscriptions and closes the pool.
func (db *DB) Close() error {
	db.mu.Lock()
	subs := make([]*Subscription, 0, len(db.subs))
	for _, sub := range db.subs {
		subs = append(subs, sub)
	}
	db.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
	return db.pool.Close()
}

// Ingest stores the given notes atomically, deduplicating by event
// id, and notifies matching subscribers. Returns the number of notes
// that were actually new. Re-ingesting known events is a no-op and
// wakes nobody.
func (db *DB) Ingest(ctx context.Context, notes []*nostr.Note) (stored int, err error) {
	if len(notes) == 0 {
		return 0, nil
	}
	conn, err := db.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer db.pool.Put(conn)

	var fresh []*nostr.Note
	var freshKeys []NoteKey

	// Commit before waking subscribers so they can immediately
	// resolve the keys on another connection.
	err = func() (err error) {
		endFn, beginErr := sqlitex.ImmediateTransaction(conn)
		if beginErr != nil {
			return fmt.Errorf("eventdb: begin ingest: %w", beginErr)
		}
		defer endFn(&err)

		for _, note := range notes {
			wireTags := nostr.WireTags(note)
			tagsJSON, marshalErr := json.Marshal(wireTags)
			if marshalErr != nil {
				return fmt.Errorf("eventdb: encoding tags for %s: %w", note.IDHex(), marshalErr)
			}
			rawJSON, marshalErr := json.Marshal(nostr.Event{
				ID:        note.IDHex(),
				Pubkey:    note.PubkeyHex(),
				Kind:      note.Kind,
				CreatedAt: note.CreatedAt,
				Content:   note.Content,
				Tags:      wireTags,
			})
			if marshalErr != nil {
				return fmt.Errorf("eventdb: encoding raw for %s: %w", note.IDHex(), marshalErr)
			}

			execErr := sqlitex.Execute(conn,
				`INSERT OR IGNORE INTO notes (id, pubkey, kind, created_at, content, tags, raw)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{
					Args: []any{note.ID[:], note.Pubkey[:], int64(note.Kind), int64(note.CreatedAt), note.Content, string(tagsJSON), string(rawJSON)},
				})
			if execErr != nil {
				return fmt.Errorf("eventdb: inserting %s: %w", note.IDHex(), execErr)
			}
			if conn.Changes() == 0 {
				continue // duplicate
			}
			key := NoteKey(conn.LastInsertRowID())

			for _, tag := range note.Tags {
				if len(tag) < 2 {
					continue
				}
				execErr := sqlitex.Execute(conn,
					`INSERT INTO note_tags (note_key, name, value) VALUES (?, ?, ?)`,
					&sqlitex.ExecOptions{
						Args: []any{int64(key), tag.Name(), tag.Value()},
					})
				if execErr != nil {
					return fmt.Errorf("eventdb: indexing tags for %s: %w", note.IDHex(), execErr)
				}
			}

			fresh = append(fresh, note)
			freshKeys = append(freshKeys, key)
		}
		return nil
	}()
	if err != nil {
		return 0, err
	}

	if len(fresh) > 0 {
		db.notify(fresh, freshKeys)
		db.logger.Debug("ingested notes", "new", len(fresh), "offered", len(notes))
	}
	return len(fresh), nil
}

// Query returns the keys of stored notes matching the filter, ordered
// by created_at ascending (key ascending as tiebreak). limit <= 0
// means no limit.
func (db *DB) Query(ctx context.Context, filter nostr.Filter, limit int) ([]NoteKey, error) {
	conn, err := db.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer db.pool.Put(conn)

	query, args, err := buildQuery(filter, limit)
	if err != nil {
		return nil, err
	}

	var keys []NoteKey
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			keys = append(keys, NoteKey(stmt.ColumnInt64(0)))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eventdb: query: %w", err)
	}
	return keys, nil
}

// GetNoteByKey resolves a note key to its note.
func (db *DB) GetNoteByKey(ctx context.Context, key NoteKey) (*nostr.Note, error) {
	return db.getNote(ctx, "key = ?", int64(key))
}

// GetNoteByID resolves an event id to its note.
func (db *DB) GetNoteByID(ctx context.Context, id [32]byte) (*nostr.Note, error) {
	return db.getNote(ctx, "id = ?", id[:])
}

func (db *DB) getNote(ctx context.Context, where string, arg any) (*nostr.Note, error) {
	conn, err := db.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer db.pool.Put(conn)

	var note *nostr.Note
	err = sqlitex.Execute(conn,
		"SELECT id, pubkey, kind, created_at, content, tags FROM notes WHERE "+where,
		&sqlitex.ExecOptions{
			Args: []any{arg},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n, rowErr := noteFromRow(stmt)
				if rowErr != nil {
					return rowErr
				}
				note = n
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("eventdb: get note: %w", err)
	}
	if note == nil {
		return nil, fmt.Errorf("eventdb: note not found")
	}
	return note, nil
}

func noteFromRow(stmt *sqlite.Stmt) (*nostr.Note, error) {
	note := &nostr.Note{
		Kind:      uint16(stmt.ColumnInt64(2)),
		CreatedAt: uint64(stmt.ColumnInt64(3)),
		Content:   stmt.ColumnText(4),
	}
	if stmt.ColumnBytes(0, note.ID[:]) != len(note.ID) {
		return nil, fmt.Errorf("eventdb: stored id is not 32 bytes")
	}
	if stmt.ColumnBytes(1, note.Pubkey[:]) != len(note.Pubkey) {
		return nil, fmt.Errorf("eventdb: stored pubkey is not 32 bytes")
	}
	var wire [][]string
	if err := json.Unmarshal([]byte(stmt.ColumnText(5)), &wire); err != nil {
		return nil, fmt.Errorf("eventdb: decoding stored tags: %w", err)
	}
	note.Tags = make([]nostr.Tag, 0, len(wire))
	for _, parts := range wire {
		note.Tags = append(note.Tags, nostr.NewTag(parts...))
	}
	return note, nil
}

// buildQuery renders a filter into SQL over the notes table.
func buildQuery(filter nostr.Filter, limit int) (string, []any, error) {
	var where []string
	var args []any

	if len(filter.Kinds) > 0 {
		where = append(where, "kind IN ("+placeholders(len(filter.Kinds))+")")
		for _, k := range filter.Kinds {
			args = append(args, int64(k))
		}
	}
	if len(filter.Authors) > 0 {
		where = append(where, "pubkey IN ("+placeholders(len(filter.Authors))+")")
		for _, a := range filter.Authors {
			raw, err := hex.DecodeString(a)
			if err != nil || len(raw) != 32 {
				return "", nil, fmt.Errorf("eventdb: author %q is not a 64-character hex pubkey", a)
			}
			args = append(args, raw)
		}
	}
	if len(filter.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(filter.IDs))+")")
		for _, id := range filter.IDs {
			raw, err := hex.DecodeString(id)
			if err != nil || len(raw) != 32 {
				return "", nil, fmt.Errorf("eventdb: id %q is not a 64-character hex id", id)
			}
			args = append(args, raw)
		}
	}
	if filter.Since > 0 {
		where = append(where, "created_at >= ?")
		args = append(args, int64(filter.Since))
	}
	if filter.TagName != "" && len(filter.TagValues) > 0 {
		where = append(where,
			"EXISTS (SELECT 1 FROM note_tags WHERE note_tags.note_key = notes.key AND note_tags.name = ? AND note_tags.value IN ("+placeholders(len(filter.TagValues))+"))")
		args = append(args, filter.TagName)
		for _, v := range filter.TagValues {
			args = append(args, v)
		}
	}

	query := "SELECT key FROM notes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, key ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query, args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
