package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/gateway"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database: data/termstore.db
schema: /etc/termstore/schema.cue
log_level: debug
exec_context: transaction
trace: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "data", "termstore.db"), cfg.Database)
	assert.Equal(t, "/etc/termstore/schema.cue", cfg.Schema)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, gateway.Transaction, cfg.DefaultExecContext())
	assert.True(t, cfg.Trace)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "schema: schema.yaml\n"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Database)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, gateway.Dirty, cfg.DefaultExecContext())
	assert.False(t, cfg.Trace)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "databse: x.db\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databse")
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "unknown log level")

	_, err = Load(writeConfig(t, "exec_context: sometimes\n"))
	assert.ErrorContains(t, err, "invalid execution context")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
