package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pantry-cli/internal/model"
)

func withEnv(t *testing.T, k, v string, fn func()) {
	t.Helper()
	old, had := os.LookupEnv(k)
	if err := os.Setenv(k, v); err != nil {
		t.Fatalf("setenv %s: %v", k, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(k, old)
		} else {
			_ = os.Unsetenv(k)
		}
	})
	fn()
}

func TestStore_Load_FirstRunDefaultsPassphrase(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Items) != 0 {
		t.Fatalf("expected empty collection, got %+v", db.Items)
	}
	if db.Passphrase != DefaultPassphrase {
		t.Fatalf("expected default passphrase %q, got %q", DefaultPassphrase, db.Passphrase)
	}
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	db := &DB{
		Items: []model.Item{
			{ID: 1, Name: "milk", Quantity: 2, Expiry: "2024-01-10", Location: "fridge"},
			{ID: 2, Name: "rice", Quantity: 1, IsCompleted: true},
		},
		Passphrase: "abcd",
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "milk" || got.Items[1].Name != "rice" {
		t.Fatalf("unexpected items (order must be preserved): %+v", got.Items)
	}
	if got.Items[0].Location != "fridge" || !got.Items[1].IsCompleted {
		t.Fatalf("fields not preserved: %+v", got.Items)
	}
	if got.Passphrase != "abcd" {
		t.Fatalf("expected passphrase abcd, got %q", got.Passphrase)
	}
}

func TestStore_Load_CorruptInventoryIsAnError(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	db, err := s.openSQLite(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := kvSet(ctx, db, KeyInventory, "{not json"); err != nil {
		t.Fatalf("kvSet: %v", err)
	}
	_ = db.Close()

	if _, err := s.Load(); err == nil {
		t.Fatalf("expected load to fail on corrupt inventory")
	}
}

func TestStore_Load_ImportsLegacyExportOnce(t *testing.T) {
	dir := t.TempDir()
	export := `{"inventory":"[{\"id\":5,\"name\":\"eggs\",\"quantity\":6,\"expiry\":\"\",\"location\":\"\",\"isCompleted\":false}]","editPassword":"9999"}`
	if err := os.WriteFile(filepath.Join(dir, legacyExportFileName), []byte(export), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	s := Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Items) != 1 || db.Items[0].Name != "eggs" || db.Items[0].Quantity != 6 {
		t.Fatalf("expected imported eggs, got %+v", db.Items)
	}
	if db.Passphrase != "9999" {
		t.Fatalf("expected imported passphrase, got %q", db.Passphrase)
	}

	// Once the store has an inventory, the export is ignored.
	db.Items = nil
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Items) != 0 {
		t.Fatalf("expected export not to be re-imported, got %+v", again.Items)
	}
}

func TestStore_Reset(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(&DB{Items: []model.Item{{ID: 1, Name: "x", Quantity: 1}}, Passphrase: "zzzz"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Items) != 0 || db.Passphrase != DefaultPassphrase {
		t.Fatalf("expected first-run state after reset, got %+v", db)
	}
}

func TestStore_Reset_DoesNotReimportLegacyExport(t *testing.T) {
	dir := t.TempDir()
	export := `[{"id":5,"name":"eggs","quantity":6,"expiry":"","location":"","isCompleted":false}]`
	if err := os.WriteFile(filepath.Join(dir, legacyExportFileName), []byte(export), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	s := Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Items) != 1 {
		t.Fatalf("expected imported export, got %+v", db.Items)
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	db, err = s.Load()
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if len(db.Items) != 0 {
		t.Fatalf("expected reset to stay empty, got %+v", db.Items)
	}
}

func TestStore_RevisionAdvancesOnWrites(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if db.Revision != 0 {
		t.Fatalf("expected revision 0 on first run, got %d", db.Revision)
	}

	db.Items = []model.Item{{ID: 1, Name: "milk", Quantity: 1}}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}
	if db.Revision != 1 {
		t.Fatalf("expected save to record revision 1, got %d", db.Revision)
	}

	// Loading is read-only.
	for i := 0; i < 2; i++ {
		again, err := s.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if again.Revision != 1 {
			t.Fatalf("expected revision 1 after load, got %d", again.Revision)
		}
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	rev, err := s.Revision(ctx)
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if rev != 2 {
		t.Fatalf("expected reset to advance revision to 2, got %d", rev)
	}
}

func TestParseExport_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantItems int
		wantPass  string
		wantErr   bool
	}{
		{name: "raw array", in: `[{"id":1,"name":"a","quantity":1}]`, wantItems: 1},
		{name: "object with array", in: `{"inventory":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`, wantItems: 2},
		{name: "object with string", in: `{"inventory":"[]","editPassword":"abcd"}`, wantItems: 0, wantPass: "abcd"},
		{name: "garbage", in: `42`, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExport([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExport: %v", err)
			}
			if len(got.Items) != tt.wantItems || got.Passphrase != tt.wantPass {
				t.Fatalf("got items=%d pass=%q; want items=%d pass=%q", len(got.Items), got.Passphrase, tt.wantItems, tt.wantPass)
			}
		})
	}
}

func TestDB_NextItemID_UniqueWithinSameMillisecond(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	db := &DB{}

	a := db.NextItemID(now)
	db.Items = append(db.Items, model.Item{ID: a})
	b := db.NextItemID(now)
	if a == b {
		t.Fatalf("expected distinct ids, got %d twice", a)
	}
	if a != now.UnixMilli() || b != a+1 {
		t.Fatalf("unexpected ids a=%d b=%d", a, b)
	}
}

func TestStore_Events_AppendAndRead(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	if _, err := s.AppendEvent(ctx, "item.create", 1, map[string]any{"name": "milk"}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if _, err := s.AppendEvent(ctx, "item.toggle", 1, map[string]any{"isCompleted": true}); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	evs, err := s.ReadEvents(ctx, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != "item.toggle" || evs[1].Type != "item.create" {
		t.Fatalf("expected newest first, got %s, %s", evs[0].Type, evs[1].Type)
	}
	if evs[0].ID == "" || evs[0].ID == evs[1].ID {
		t.Fatalf("expected unique event ids, got %q %q", evs[0].ID, evs[1].ID)
	}

	limited, err := s.ReadEvents(ctx, 1)
	if err != nil {
		t.Fatalf("read limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 event with limit, got %d", len(limited))
	}
}

func TestConfig_SaveLoad_YAML(t *testing.T) {
	withEnv(t, "PANTRY_CONFIG_DIR", t.TempDir(), func() {
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("load empty: %v", err)
		}
		if got := cfg.EffectivePolicy(); got != model.DefaultPolicy() {
			t.Fatalf("expected default policy, got %+v", got)
		}

		p := model.Policy{EnforceEditGate: false, MergeOnDuplicateKey: true, TrackQuantity: false}
		cfg.CurrentWorkspace = "kitchen"
		cfg.Policy = &p
		if err := SaveConfig(cfg); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := LoadConfig()
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got.CurrentWorkspace != "kitchen" || got.EffectivePolicy() != p {
			t.Fatalf("unexpected config: %+v policy=%+v", got, got.EffectivePolicy())
		}
	})
}

func TestNormalizeWorkspaceName(t *testing.T) {
	if _, err := NormalizeWorkspaceName("  "); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	if _, err := NormalizeWorkspaceName("a/b"); err == nil {
		t.Fatalf("expected path separators to be rejected")
	}
	if got, err := NormalizeWorkspaceName(" kitchen "); err != nil || got != "kitchen" {
		t.Fatalf("got %q, %v", got, err)
	}
}
