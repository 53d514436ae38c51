package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "lessons.log")

	log, err := New(file, "debug")
	require.NoError(t, err)

	log.Info("hold placed on slot %d", 42)
	_ = log.Close()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hold placed on slot 42")
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lessons.log")

	log, err := New(file, "warn")
	require.NoError(t, err)

	log.Debug("debug line")
	log.Warn("warn line")
	_ = log.Close()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "debug line")
	assert.Contains(t, string(data), "warn line")
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("", "verbose")
	assert.Error(t, err)
}
