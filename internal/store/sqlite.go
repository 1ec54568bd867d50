package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pantry-cli/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "pantry.sqlite"

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.SQLitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI keep reading while a CLI invocation writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			ts_unixms INTEGER NOT NULL,
			type TEXT NOT NULL,
			item_id INTEGER NOT NULL DEFAULT 0,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_unixms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func kvGet(ctx context.Context, db *sql.DB, k string) (string, bool, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// kvRevision returns the stored revision, 0 when nothing was ever saved.
func kvRevision(ctx context.Context, db queryer) (int64, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, KeyRevision).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	rev, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", KeyRevision, err)
	}
	return rev, nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx) (int64, error) {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, '1', strftime('%s','now') * 1000)
		ON CONFLICT(k) DO UPDATE SET v = CAST(CAST(kv.v AS INTEGER) + 1 AS TEXT), updated_at_unixms = excluded.updated_at_unixms`, KeyRevision)
	if err != nil {
		return 0, err
	}
	return kvRevision(ctx, tx)
}

func kvSet(ctx context.Context, db execer, k, v string) error {
	_, err := db.ExecContext(ctx, `INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, ?, strftime('%s','now') * 1000)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixms = excluded.updated_at_unixms`, k, v)
	return err
}

// saveState replaces the whole collection; there is no incremental diffing.
func saveState(ctx context.Context, db *sql.DB, st *DB) error {
	items := st.Items
	if items == nil {
		items = []model.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := kvSet(ctx, tx, KeyInventory, string(raw)); err != nil {
		return err
	}
	if st.Passphrase != "" {
		if err := kvSet(ctx, tx, KeyPassphrase, st.Passphrase); err != nil {
			return err
		}
	}
	rev, err := bumpRevision(ctx, tx)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	st.Revision = rev
	return nil
}

func decodeItems(b []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// ParseExport decodes a browser export. Accepted shapes:
//   - the raw `inventory` array
//   - an object of localStorage keys, where `inventory` is either the array or its JSON string
//     and `editPassword` optionally carries the passphrase
func ParseExport(b []byte) (*DB, error) {
	var items []model.Item
	if err := json.Unmarshal(b, &items); err == nil {
		if items == nil {
			items = []model.Item{}
		}
		return &DB{Items: items}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("unrecognized export: %w", err)
	}
	st := &DB{Items: []model.Item{}}
	if raw, ok := obj[KeyInventory]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = json.RawMessage(s)
		}
		got, err := decodeItems(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyInventory, err)
		}
		st.Items = got
	}
	if raw, ok := obj[KeyPassphrase]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyPassphrase, err)
		}
		st.Passphrase = s
	}
	return st, nil
}
