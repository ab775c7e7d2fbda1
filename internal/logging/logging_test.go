package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alot.log")
	log, err := New(path, false)
	require.NoError(t, err)

	log.Info("hello")
	log.Debug("hidden at info level")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "hello")
	require.NotContains(t, string(raw), "hidden at info level")
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alot.log")
	log, err := New(path, true)
	require.NoError(t, err)

	log.Debug("visible now")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "visible now")
}
