package nxtvk

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nxtvk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "log_level: debug\ntrace: true\nqueue_family: 2\nlayers: [VK_LAYER_KHRONOS_validation]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		LogLevel:    "debug",
		FatalLog:    DefaultFatalLog,
		Trace:       true,
		QueueFamily: 2,
		Layers:      []string{"VK_LAYER_KHRONOS_validation"},
	}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad level", body: "log_level: loud\n"},
		{name: "empty fatal log", body: "fatal_log: \"\"\n"},
		{name: "not yaml", body: "log_level: [debug\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigLevel(t *testing.T) {
	level, err := Config{}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = Config{LogLevel: "warn"}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	assert.NoError(t, DefaultConfig().Validate())
}
