package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS threads (
	thread_id  TEXT PRIMARY KEY,
	stage      TEXT NOT NULL,
	query      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_threads_updated_at ON threads(updated_at);
`

// SQLiteStore implements Store on a single SQLite file. WAL mode and a busy
// timeout give concurrent readers; the version column gives per-thread write
// exclusivity.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and migrates) the checkpoint database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_OPEN_FAILED, "open checkpoint db", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, types.WrapError(types.CHECKPOINT_OPEN_FAILED, "ping checkpoint db", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, types.WrapError(types.CHECKPOINT_OPEN_FAILED, "migrate checkpoint db", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Get returns the state for threadID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, threadID types.ID) (*thread.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM threads WHERE thread_id = ?`, threadID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "query thread state", err)
	}

	var state thread.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "decode thread state", err)
	}
	return &state, nil
}

// Put persists state with an optimistic version check. The stored document
// is written in one statement, so a reader sees either the whole previous
// write or the whole new one.
func (s *SQLiteStore) Put(ctx context.Context, state *thread.State) error {
	if err := state.Validate(); err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "invalid state", err)
	}

	next := *state
	next.Version = state.Version + 1
	raw, err := json.Marshal(&next)
	if err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "encode thread state", err)
	}

	var res sql.Result
	if state.Version == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO threads (thread_id, stage, query, version, state, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(thread_id) DO NOTHING`,
			next.ThreadID.String(), next.Stage.String(), next.Query,
			next.Version, string(raw), next.UpdatedAt)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE threads SET stage = ?, query = ?, version = ?, state = ?, updated_at = ?
			 WHERE thread_id = ? AND version = ?`,
			next.Stage.String(), next.Query, next.Version, string(raw), next.UpdatedAt,
			next.ThreadID.String(), state.Version)
	}
	if err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "write thread state", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "write thread state", err)
	}
	if affected == 0 {
		return ErrStaleWrite
	}

	state.Version = next.Version
	return nil
}

// Delete removes a thread's state.
func (s *SQLiteStore) Delete(ctx context.Context, threadID types.ID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM threads WHERE thread_id = ?`, threadID.String())
	if err != nil {
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED, "delete thread state", err)
	}
	return nil
}

// List returns thread summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, stage, query, updated_at FROM threads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "list threads", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id    string
			stage string
			query string
			at    time.Time
		)
		if err := rows.Scan(&id, &stage, &query, &at); err != nil {
			return nil, types.WrapError(types.CHECKPOINT_READ_FAILED, "scan thread row", err)
		}
		out = append(out, Summary{
			ThreadID:  types.ID(id),
			Stage:     thread.Stage(stage),
			Query:     query,
			UpdatedAt: at,
		})
	}
	return out, rows.Err()
}

// PurgeExpired deletes threads not updated within ttl.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM threads WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, types.WrapError(types.CHECKPOINT_WRITE_FAILED, "purge threads", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, types.WrapError(types.CHECKPOINT_WRITE_FAILED, "purge threads", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
