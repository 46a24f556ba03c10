package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := newLogger(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("merged components", "source_id", 2, "target_id", 1)

	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "merged components")
	assert.Contains(t, stderr.String(), "source_id=2")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &entry))
	assert.Equal(t, "merged components", entry["msg"])
	assert.Equal(t, float64(1), entry["target_id"])
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	var stderr bytes.Buffer
	logger := newLogger(&stderr, nil, slog.LevelDebug)

	logger.Debug("found candidates", "component_id", 7)
	assert.Contains(t, stderr.String(), "component_id=7")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsbin.log")

	logger, cleanup := SetupLogger(path, slog.LevelWarn)
	logger.Warn("store failure", "op", "merge")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"store failure"`)
}

func TestSetupLoggerStderrOnly(t *testing.T) {
	logger, cleanup := SetupLogger("", slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())

	logger, cleanup = SetupLogger(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())
}
