package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgFile = "" })

	root := newToolCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestToolCommandReportsNotFound(t *testing.T) {
	_, err := executeCmd(t, "git", "git_push")
	require.Error(t, err)
	assert.Equal(t, "Tool 'git_push' not found in server 'git'", err.Error())
}

func TestToolCommandRejectsBadJSON(t *testing.T) {
	_, err := executeCmd(t, "filesystem", "read_file", "{path")
	assert.ErrorContains(t, err, "invalid JSON arguments")
}

func TestToolCommandRunsTicket(t *testing.T) {
	out, err := executeCmd(t, "builtin", "show_linear_ticket", `{"title":"Fix login"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login")
}

func TestRuntimeSkipsBadServersAndKeepsClient(t *testing.T) {
	for _, k := range []string{
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME",
		"TASKPILOT_PROVIDER", "TASKPILOT_API_KEY", "TASKPILOT_ENDPOINT", "TASKPILOT_MODEL",
		"TASKPILOT_AUTO_CONNECT",
	} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`api:
  provider: azure
  api_key: az
  endpoint: https://example.openai.azure.com
  deployment: gpt-4o
mcp:
  servers:
    - name: git
      host: localhost
      port: 3002
    - name: bad
      host: localhost
      port: 0
`), 0600))
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	rt, err := newRuntime(context.Background())
	require.NoError(t, err)

	assert.NoError(t, rt.clientErr)
	assert.True(t, rt.controller.Configured())
	assert.Equal(t, []string{"git"}, rt.servers.Names())
	require.Len(t, rt.serverConfigs, 1)
	assert.Equal(t, "git", rt.serverConfigs[0].Name)
}
