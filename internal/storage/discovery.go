package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDir is the per-project directory holding the inventory database.
const DataDir = ".partsbin"

// DefaultDatabaseName is the file created by 'partsbin' when no database exists yet.
const DefaultDatabaseName = "inventory.db"

// DiscoverDatabase looks for .partsbin/*.db in the current directory only.
// Returns the absolute path to the database file, or an error if not found.
//
// PARTSBIN_DB_PATH is checked first so tests and scripts can point at an
// explicit file (or ":memory:") without touching the working directory.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv("PARTSBIN_DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return discoverDatabaseInDir(dir)
}

// DefaultDatabasePath returns the path a new database is created at for dir.
func DefaultDatabasePath(dir string) string {
	return filepath.Join(dir, DataDir, DefaultDatabaseName)
}

// discoverDatabaseInDir checks for .partsbin/*.db in the specified directory only.
// Parent directories are not searched so a nested project never picks up an
// enclosing project's inventory.
func discoverDatabaseInDir(dir string) (string, error) {
	dataDir := filepath.Join(dir, DataDir)

	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(dataDir)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".db") {
					dbPath := filepath.Join(dataDir, entry.Name())
					absPath, err := filepath.Abs(dbPath)
					if err != nil {
						return "", fmt.Errorf("failed to get absolute path: %w", err)
					}
					return absPath, nil
				}
			}
		}
	}

	return "", fmt.Errorf(
		"no %s/*.db found in %s\n"+
			"  Add a component with 'partsbin add' to create one\n"+
			"  Or use --db flag to specify database path explicitly",
		DataDir, dir)
}
