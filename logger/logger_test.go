package logger

import (
	"os"
	"path/filepath"
	"testing"

	"quotecollector/config"

	"github.com/stretchr/testify/require"
)

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

// go test -v --run TestNewWithFile
func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "collector.log")

	log, err := New(config.LogConfig{
		Level:       "info",
		Format:      "json",
		OutputFile:  path,
		Environment: "prod",
	})
	require.NoError(t, err)

	log.Info("received data for stock")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "received data for stock")
	require.Contains(t, string(data), config.AppName)
}
