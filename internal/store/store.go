package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pantry-cli/internal/model"
)

const (
	// Storage keys. They match the browser's localStorage keys so exports line up.
	KeyInventory  = "inventory"
	KeyPassphrase = "editPassword"

	// KeyRevision counts committed saves. Readers compare it to skip redundant reloads.
	KeyRevision = "revision"

	// DefaultPassphrase is written on first access when no passphrase is stored.
	DefaultPassphrase = "0000"

	legacyExportFileName = "inventory.json"
)

// DB is the in-memory workspace state: the item collection plus the edit passphrase.
// It is always loaded and saved as a whole.
type DB struct {
	Items      []model.Item `json:"inventory"`
	Passphrase string       `json:"editPassword"`

	// Revision is the stored revision this state was loaded at or last saved as.
	Revision int64 `json:"-"`
}

type Store struct {
	Dir string
}

func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Load reads the collection and passphrase. A missing passphrase is initialized to
// DefaultPassphrase and persisted, mirroring first-run behavior.
//
// When the workspace has never stored an inventory but an inventory.json export sits in the
// store dir, it is imported once.
func (s Store) Load() (*DB, error) {
	return s.LoadContext(context.Background())
}

func (s Store) LoadContext(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	raw, ok, err := kvGet(ctx, db, KeyInventory)
	if err != nil {
		return nil, err
	}
	if !ok {
		if b, err := os.ReadFile(filepath.Join(s.Dir, legacyExportFileName)); err == nil && len(b) > 0 {
			imported, err := ParseExport(b)
			if err != nil {
				return nil, fmt.Errorf("import %s: %w", legacyExportFileName, err)
			}
			if err := saveState(ctx, db, imported); err != nil {
				return nil, err
			}
		}
	}

	st := &DB{Items: []model.Item{}}
	raw, ok, err = kvGet(ctx, db, KeyInventory)
	if err != nil {
		return nil, err
	}
	if ok && strings.TrimSpace(raw) != "" {
		items, err := decodeItems([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyInventory, err)
		}
		st.Items = items
	}

	pass, ok, err := kvGet(ctx, db, KeyPassphrase)
	if err != nil {
		return nil, err
	}
	if !ok || pass == "" {
		pass = DefaultPassphrase
		if err := kvSet(ctx, db, KeyPassphrase, pass); err != nil {
			return nil, err
		}
	}
	st.Passphrase = pass

	rev, err := kvRevision(ctx, db)
	if err != nil {
		return nil, err
	}
	st.Revision = rev
	return st, nil
}

// Revision reads the stored revision without loading the collection.
func (s Store) Revision(ctx context.Context) (int64, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return kvRevision(ctx, db)
}

// Save writes the full collection and the passphrase in one transaction.
func (s Store) Save(st *DB) error {
	return s.SaveContext(context.Background(), st)
}

func (s Store) SaveContext(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return saveState(ctx, db, st)
}

// Reset wipes the stored state back to first run: no items, default passphrase.
// The event log is kept. The inventory key stays present (as an empty array) so a legacy
// inventory.json is not imported again.
func (s Store) Reset(ctx context.Context) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := kvSet(ctx, tx, KeyInventory, "[]"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, KeyPassphrase); err != nil {
		return err
	}
	if _, err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SQLitePath is the workspace database file. The TUI watches it for external changes.
func (s Store) SQLitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), sqliteFileName)
}

func (db *DB) FindItem(id int64) (*model.Item, bool) {
	for i := range db.Items {
		if db.Items[i].ID == id {
			return &db.Items[i], true
		}
	}
	return nil, false
}

// NextItemID returns a creation-timestamp id (Unix milliseconds) that is unique in the
// collection. Two adds within the same millisecond get consecutive ids.
func (db *DB) NextItemID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, it := range db.Items {
		if it.ID >= id {
			id = it.ID + 1
		}
	}
	return id
}
