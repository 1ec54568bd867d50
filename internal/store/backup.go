package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pantry-cli/internal/model"
)

const (
	backupDirLayout    = "20060102-150405"
	backupEventsFile   = "events.jsonl"
	backupSQLiteFile   = sqliteFileName
	backupExportedFile = legacyExportFileName
)

type BackupResult struct {
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
	Items   int      `json:"items"`
	Events  int      `json:"events"`
}

// Backup writes a point-in-time copy of the workspace into <toDir>/<timestamp>/:
//   - pantry.sqlite, a compacted copy of the database (VACUUM INTO)
//   - inventory.json, the collection in the browser export shape
//   - events.jsonl, the event log oldest first
//
// Restoring is `pantry import <dir>/inventory.json --replace`, or dropping inventory.json into
// an empty workspace dir.
func (s Store) Backup(ctx context.Context, toDir string, now time.Time) (BackupResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return BackupResult{}, errors.New("missing --to")
	}
	outDir := filepath.Join(filepath.Clean(toDir), now.Format(backupDirLayout))
	if _, err := os.Stat(outDir); err == nil {
		return BackupResult{}, errors.New("backup exists: " + outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BackupResult{}, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return BackupResult{}, err
	}
	defer db.Close()

	res := BackupResult{Dir: outDir}

	sqlitePath := filepath.Join(outDir, backupSQLiteFile)
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, sqlitePath); err != nil {
		return BackupResult{}, err
	}
	res.Written = append(res.Written, sqlitePath)

	st, err := s.LoadContext(ctx)
	if err != nil {
		return BackupResult{}, err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return BackupResult{}, err
	}
	exportPath := filepath.Join(outDir, backupExportedFile)
	if err := os.WriteFile(exportPath, append(b, '\n'), 0o644); err != nil {
		return BackupResult{}, err
	}
	res.Written = append(res.Written, exportPath)
	res.Items = len(st.Items)

	evs, err := s.ReadEvents(ctx, 0)
	if err != nil {
		return BackupResult{}, err
	}
	// ReadEvents is newest first.
	for i, j := 0, len(evs)-1; i < j; i, j = i+1, j-1 {
		evs[i], evs[j] = evs[j], evs[i]
	}
	eventsPath := filepath.Join(outDir, backupEventsFile)
	if err := WriteEventsJSONL(eventsPath, evs); err != nil {
		return BackupResult{}, err
	}
	res.Written = append(res.Written, eventsPath)
	res.Events = len(evs)

	return res, nil
}

// WriteEventsJSONL writes one event per line.
func WriteEventsJSONL(path string, evs []model.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
