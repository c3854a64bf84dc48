package main

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/mugloar/tui/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, logFile string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mugloar.yaml")
	body := "log:\n  file: " + logFile + "\n  level: info\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunReturnsOnInvalidURL(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	logFile := filepath.Join(t.TempDir(), "client.log")

	err := run([]string{"-config", writeConfig(t, logFile), "-url", "ftp://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "invalid config")
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	assert.Error(t, run([]string{"-no-such-flag"}))
}

func TestStartMockStop(t *testing.T) {
	stop, url, err := startMock(config.Default(), zap.NewNop())
	require.NoError(t, err)

	resp, err := http.Get(url + "/game/history")
	require.NoError(t, err)
	resp.Body.Close()

	stop()
	_, err = http.Get(url + "/game/history")
	assert.Error(t, err, "server still listening after stop")
}
