package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qengine/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, engine.DefaultShots, cfg.Shots)
	assert.Nil(t, cfg.Seed)
	require.NoError(t, cfg.Validate())

	f, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, engine.StateVectorFormat, f)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "shots: 200\nseed: 42\nformat: counts\nlog_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Shots)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)

	f, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, engine.CountsFormat, f)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, lvl)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "format: memory\n"))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultShots, cfg.Shots)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Seed)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{"negative shots", "shots: -5\n", engine.ErrInvalidShots},
		{"unknown format", "format: histogram\n", engine.ErrUnknownFormat},
		{"bad log level", "log_level: loud\n", nil},
		{"unknown key", "qubits: 3\n", nil},
		{"not yaml", "shots: [1, 2\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEngineOptions(t *testing.T) {
	assert.Len(t, Default().EngineOptions(), 1)

	seed := uint64(7)
	cfg := Config{Shots: 3, Seed: &seed}
	assert.Len(t, cfg.EngineOptions(), 2)
}
