package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDiscoverDatabaseInDir_CurrentDirOnly verifies that discoverDatabaseInDir
// only checks the specified directory and does NOT walk up the tree.
func TestDiscoverDatabaseInDir_CurrentDirOnly(t *testing.T) {
	// tmpRoot/
	//   parent/
	//     .partsbin/
	//       inventory.db
	//     child/
	tmpRoot := t.TempDir()
	parentDir := filepath.Join(tmpRoot, "parent")
	childDir := filepath.Join(parentDir, "child")

	parentDataDir := filepath.Join(parentDir, DataDir)
	if err := os.MkdirAll(parentDataDir, 0755); err != nil {
		t.Fatalf("failed to create parent data dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(parentDataDir, "inventory.db"), []byte(""), 0644); err != nil {
		t.Fatalf("failed to create parent database: %v", err)
	}
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatalf("failed to create child dir: %v", err)
	}

	if _, err := discoverDatabaseInDir(childDir); err == nil {
		t.Error("expected error from child dir, parent database must not be discovered")
	}

	path, err := discoverDatabaseInDir(parentDir)
	if err != nil {
		t.Fatalf("expected parent database to be discovered: %v", err)
	}
	if filepath.Base(path) != "inventory.db" {
		t.Errorf("expected inventory.db, got %s", path)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %s", path)
	}
}

func TestDiscoverDatabaseInDir_NoDataDir(t *testing.T) {
	_, err := discoverDatabaseInDir(t.TempDir())
	if err == nil {
		t.Fatal("expected error when no data directory exists")
	}
	if !strings.Contains(err.Error(), "--db") {
		t.Errorf("error should mention --db flag, got: %v", err)
	}
}

func TestDiscoverDatabaseInDir_EmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, DataDir), 0755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	if _, err := discoverDatabaseInDir(dir); err == nil {
		t.Error("expected error for empty data directory")
	}
}

func TestDiscoverDatabase_WithEnvVar(t *testing.T) {
	t.Setenv("PARTSBIN_DB_PATH", ":memory:")
	path, err := DiscoverDatabase()
	if err != nil {
		t.Fatalf("DiscoverDatabase with PARTSBIN_DB_PATH failed: %v", err)
	}
	if path != ":memory:" {
		t.Errorf("expected :memory:, got %s", path)
	}

	t.Setenv("PARTSBIN_DB_PATH", "/tmp/parts.db")
	path, err = DiscoverDatabase()
	if err != nil {
		t.Fatalf("DiscoverDatabase failed: %v", err)
	}
	if path != "/tmp/parts.db" {
		t.Errorf("expected /tmp/parts.db, got %s", path)
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	got := DefaultDatabasePath("/work")
	want := filepath.Join("/work", ".partsbin", "inventory.db")
	if got != want {
		t.Errorf("DefaultDatabasePath = %s, want %s", got, want)
	}
}
