package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestConfigureFiltersByLevel(t *testing.T) {
	t.Cleanup(Close)

	var buf bytes.Buffer
	Configure(LevelWarn, &buf, false)

	Info("hidden")
	Component("mcp").Warn("server unreachable", "name", "git")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "server unreachable")
	assert.Contains(t, out, "component=mcp")
	assert.Contains(t, out, "name=git")
}

func TestEnableFileLogging(t *testing.T) {
	t.Cleanup(Close)

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, EnableFileLogging(dir, LevelDebug))

	Debug("turn committed", "messages", 2)
	Close()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"turn committed"`)
	assert.Contains(t, string(data), `"messages":2`)
}
