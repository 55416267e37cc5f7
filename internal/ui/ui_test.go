package ui

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/chat"
	"taskpilot/internal/client"
	"taskpilot/internal/config"
	"taskpilot/internal/mcp"
	"taskpilot/internal/profile"
	"taskpilot/internal/tools"
)

type scriptClient struct {
	frags []client.Fragment
}

func (c *scriptClient) Name() string  { return "script" }
func (c *scriptClient) Model() string { return "script" }

func (c *scriptClient) Stream(ctx context.Context, req *client.Request) iter.Seq2[client.Fragment, error] {
	return func(yield func(client.Fragment, error) bool) {
		for _, f := range c.frags {
			if !yield(f, nil) {
				return
			}
		}
	}
}

type downProber struct{}

func (downProber) Probe(context.Context, string, int) bool { return false }

func plainUI() config.UIConfig {
	return config.UIConfig{MarkdownRendering: false, ShowToolCalls: true, HighlightStyle: "monokai"}
}

func newTestREPL(t *testing.T, in string, c client.Client) (*REPL, *bytes.Buffer) {
	t.Helper()
	catalog, err := tools.LoadCatalog()
	require.NoError(t, err)
	d, err := tools.NewDispatcher(catalog, t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	rd, err := NewRenderer(plainUI())
	require.NoError(t, err)

	session := chat.NewSession(profile.LookupOrGuest(cfg.Session.DefaultUser),
		mcp.NewManager(catalog, downProber{}, config.DefaultServers()))

	var out bytes.Buffer
	repl := NewREPL(Options{
		In:         strings.NewReader(in),
		Out:        &out,
		Config:     cfg,
		Session:    session,
		Controller: chat.NewController(c, d, cfg.Model),
		Dispatcher: d,
		Renderer:   rd,
		Version:    "test",
	})
	return repl, &out
}

func TestTicketCard(t *testing.T) {
	rd, err := NewRenderer(plainUI())
	require.NoError(t, err)

	card := rd.Ticket(tools.Ticket{
		Title: "Fix login", Status: "In Progress", Assignee: "Jane Smith",
		Deadline: "2024-02-01", Tags: []string{"auth", "bug"},
	})
	for _, want := range []string{"Fix login", "🟡 In Progress", "Jane Smith", "2024-02-01", "auth, bug"} {
		assert.Contains(t, card, want)
	}
	assert.Contains(t, rd.Ticket(tools.TicketFromArgs(nil)), "none")
}

func TestTurnRendering(t *testing.T) {
	rd, err := NewRenderer(plainUI())
	require.NoError(t, err)

	out := rd.Turn(&chat.TurnResult{
		Text:    "Here you go",
		Tickets: []tools.Ticket{tools.TicketFromArgs(map[string]any{"title": "Ship it"})},
		Errors:  []string{"Invalid arguments for show_linear_ticket"},
		Ignored: []string{"read_file"},
	})
	assert.Contains(t, out, "Here you go")
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "Invalid arguments")
	assert.Contains(t, out, "read_file")

	assert.Contains(t, rd.Turn(&chat.TurnResult{}), "(no response)")
}

func TestMarkdownRendering(t *testing.T) {
	rd, err := NewRenderer(config.UIConfig{MarkdownRendering: true, Theme: "notty", WordWrap: 80})
	require.NoError(t, err)

	out := rd.Markdown("# Title\n\n- one\n- two")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "two")
}

func TestResultRendering(t *testing.T) {
	rd, err := NewRenderer(plainUI())
	require.NoError(t, err)

	out := rd.Result("list_directory", nil, tools.NewSuccessResult(map[string]any{"files": []string{"main.go"}}))
	assert.Contains(t, out, "main.go")

	out = rd.Result("read_file", map[string]any{"path": "main.go"},
		tools.NewSuccessResult(map[string]any{"content": "package main"}))
	assert.Contains(t, out, "package")
	assert.NotContains(t, out, `"content"`)
}

func TestREPLSession(t *testing.T) {
	in := strings.Join([]string{
		"/user jane.smith@company.com",
		"",
		"what should I work on?",
		"/connect git",
		"/quit",
		"never reached",
	}, "\n")
	repl, out := newTestREPL(t, in, &scriptClient{frags: []client.Fragment{{Text: "Review PR 42."}}})

	require.NoError(t, repl.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Signed in as John Doe")
	assert.Contains(t, got, "Switched to Jane Smith")
	assert.Contains(t, got, "jane.smith ›")
	assert.Contains(t, got, "Review PR 42.")
	assert.Contains(t, got, "Connection failed")
	assert.Equal(t, 2, repl.GetSession().Transcript.Len())
}

func TestREPLWithoutClient(t *testing.T) {
	repl, out := newTestREPL(t, "Show me my current tasks\n", nil)
	repl.opts.ClientErr = client.ErrNotConfigured

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "AI client is not configured")
	assert.Zero(t, repl.GetSession().Transcript.Len())
}

func TestREPLReportsClientFailureCause(t *testing.T) {
	repl, out := newTestREPL(t, "hello\n", nil)
	repl.opts.ClientErr = errors.New("unsupported provider: bard")

	require.NoError(t, repl.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "AI client unavailable: unsupported provider: bard")
	assert.NotContains(t, got, "AZURE_OPENAI_API_KEY")
}

func TestREPLRunsTask(t *testing.T) {
	repl, out := newTestREPL(t, "/run quick_status\n", &scriptClient{frags: []client.Fragment{{Text: "All green."}}})

	require.NoError(t, repl.Run(context.Background()))
	assert.Contains(t, out.String(), "All green.")

	entries := repl.GetSession().Transcript.Entries()
	require.Len(t, entries, 2)
	action, _ := repl.GetSession().FindTask("quick_status")
	assert.Equal(t, action.Action, entries[0].Content)
}

func TestREPLSettingsSaveToDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	repl, out := newTestREPL(t, "/settings set max_tokens 800\n", nil)
	require.NoError(t, repl.Run(context.Background()))

	assert.Contains(t, out.String(), "Saved.")
	assert.Equal(t, int32(800), repl.GetController().ModelSettings().MaxTokens)

	saved, err := config.LoadFrom(filepath.Join(dir, config.AppName, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int32(800), saved.Model.MaxTokens)
}
