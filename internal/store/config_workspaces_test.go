package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkspaceDir_UnderConfigDir(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("PANTRY_CONFIG_DIR", cfgDir)

	got, err := WorkspaceDir(" kitchen ")
	if err != nil {
		t.Fatalf("WorkspaceDir: %v", err)
	}
	if want := filepath.Join(cfgDir, "workspaces", "kitchen"); got != want {
		t.Fatalf("WorkspaceDir = %q, want %q", got, want)
	}

	if _, err := WorkspaceDir("../escape"); err == nil {
		t.Fatalf("expected path-like workspace name to be rejected")
	}
}

func TestListWorkspaces_SortedDirsOnly(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("PANTRY_CONFIG_DIR", cfgDir)

	got, err := ListWorkspaces()
	if err != nil {
		t.Fatalf("ListWorkspaces (empty): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no workspaces, got %v", got)
	}

	for _, name := range []string{"garage", "default"} {
		if err := (Store{Dir: filepath.Join(cfgDir, "workspaces", name)}).Ensure(); err != nil {
			t.Fatalf("ensure %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "workspaces", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	got, err = ListWorkspaces()
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if diff := cmp.Diff([]string{"default", "garage"}, got); diff != "" {
		t.Fatalf("ListWorkspaces mismatch (-want +got):\n%s", diff)
	}
}
