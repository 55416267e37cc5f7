package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestDispatcher(t testing.TB, workDir string) *Dispatcher {
	t.Helper()
	catalog, err := LoadCatalog()
	require.NoError(t, err)
	d, err := NewDispatcher(catalog, workDir)
	require.NoError(t, err)
	return d
}

func TestCatalogResolves(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	assert.Equal(t,
		[]ProviderID{ProviderFetch, ProviderFilesystem, ProviderGit, ProviderMemory, ProviderSQLite, ProviderWebSearch},
		catalog.Providers())

	builtin := catalog.Builtin()
	require.Len(t, builtin, 1)
	assert.Equal(t, ShowTicketTool, builtin[0].Name)
	assert.Equal(t, []string{"title", "status", "assignee", "deadline", "tags"}, builtin[0].Required())

	schema := builtin[0].Schema()
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, "string", schema.Properties["tags"].Items.Type)

	d, ok := catalog.Lookup(ProviderGit, "git_log")
	require.True(t, ok)
	assert.NoError(t, d.Validate(map[string]any{"path": ".", "limit": float64(3)}))
	assert.Error(t, d.Validate(map[string]any{"limit": "three"}))
}

func TestDescriptorResolveRejectsBadDeclarations(t *testing.T) {
	bad := []*Descriptor{
		{Name: ""},
		{Name: "dup", Params: []Param{{Name: "a", Type: TypeString}, {Name: "a", Type: TypeString}}},
		{Name: "arr", Params: []Param{{Name: "a", Type: TypeArray}}},
		{Name: "odd", Params: []Param{{Name: "a", Type: "object"}}},
	}
	for _, d := range bad {
		assert.Error(t, d.Resolve(), d.Name)
	}

	unresolved := &Descriptor{Name: "x"}
	assert.Error(t, unresolved.Validate(nil))
}

func TestRegisterIsClosed(t *testing.T) {
	d := newTestDispatcher(t, "")
	noop := func(context.Context, map[string]any) (Result, error) { return NewSuccessResult(nil), nil }

	assert.ErrorContains(t, d.Register(ProviderGit, "git_status", noop), "already registered")
	assert.ErrorContains(t, d.Register(ProviderGit, "git_push", noop), "not declared")
	assert.ErrorContains(t, d.Register("slack", "post", noop), "unknown provider")
	assert.ErrorContains(t, d.Register(ProviderGit, "git_status", nil), "nil handler")
	assert.Empty(t, d.Unhandled())
}

func TestUnknownOperationAlwaysFails(t *testing.T) {
	d := newTestDispatcher(t, "")

	rapid.Check(t, func(t *rapid.T) {
		provider := rapid.String().Draw(t, "provider")
		operation := rapid.String().Draw(t, "operation")
		if _, ok := d.catalog.Lookup(ProviderID(provider), operation); ok {
			t.Skip("drew a registered pair")
		}
		args := rapid.MapOf(rapid.String(), rapid.SampledFrom([]any{"x", float64(1), true, nil})).Draw(t, "args")

		res := d.Execute(context.Background(), provider, operation, args)
		if res.Success() {
			t.Fatalf("unknown pair %q/%q succeeded", provider, operation)
		}
		if res.Message() == "" {
			t.Fatalf("unknown pair %q/%q has no message", provider, operation)
		}
	})

	res := d.Execute(context.Background(), "git", "git_push", nil)
	assert.Equal(t, "Tool 'git_push' not found in server 'git'", res.Message())
}

func TestListDirectoryMatchesContents(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.go", "c.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	d := newTestDispatcher(t, "")
	ctx := context.Background()

	res := d.Execute(ctx, "filesystem", "list_directory", map[string]any{"path": dir})
	require.True(t, res.Success(), res.ErrorText())
	files := res["files"].([]string)
	sort.Strings(files)
	assert.Equal(t, []string{"a.txt", "b.go", "c.go", "sub"}, files)

	res = d.Execute(ctx, "filesystem", "list_directory", map[string]any{"path": dir, "pattern": "*.go"})
	require.True(t, res.Success())
	assert.ElementsMatch(t, []string{"b.go", "c.go"}, res["files"])

	res = d.Execute(ctx, "filesystem", "list_directory", map[string]any{"path": filepath.Join(dir, "missing")})
	assert.False(t, res.Success())
	assert.NotEmpty(t, res.ErrorText())
}

func TestListDirectoryRelativeToWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.txt"), nil, 0644))

	d := newTestDispatcher(t, dir)
	res := d.Execute(context.Background(), "filesystem", "list_directory", map[string]any{})
	require.True(t, res.Success(), res.ErrorText())
	assert.Equal(t, []string{"only.txt"}, res["files"])
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(t, dir)
	ctx := context.Background()

	res := d.Execute(ctx, "filesystem", "write_file", map[string]any{"path": "notes.md", "content": "one\ntwo\n"})
	require.True(t, res.Success(), res.ErrorText())
	assert.Equal(t, "File written to notes.md", res.Message())
	assert.Equal(t, true, res["created"])

	res = d.Execute(ctx, "filesystem", "write_file", map[string]any{"path": "notes.md", "content": "one\nthree\nfour\n"})
	require.True(t, res.Success())
	assert.Equal(t, 2, res["lines_added"])
	assert.Equal(t, 1, res["lines_removed"])

	res = d.Execute(ctx, "filesystem", "read_file", map[string]any{"path": "notes.md"})
	require.True(t, res.Success())
	assert.Equal(t, "one\nthree\nfour\n", res["content"])

	res = d.Execute(ctx, "filesystem", "read_file", map[string]any{"path": "nope.md"})
	assert.False(t, res.Success())
	assert.NotEmpty(t, res.ErrorText())

	res = d.Execute(ctx, "filesystem", "write_file", map[string]any{"path": "nested/dir/x.txt", "content": "x"})
	require.True(t, res.Success(), res.ErrorText())

	// notes.md is a file, so it cannot be a parent directory.
	res = d.Execute(ctx, "filesystem", "write_file", map[string]any{"path": "notes.md/x.txt", "content": "x"})
	assert.False(t, res.Success())
}

func TestGitProvider(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	d := newTestDispatcher(t, "")
	ctx := context.Background()

	res := d.Execute(ctx, "git", "git_status", map[string]any{"path": filepath.Join(dir, "missing")})
	assert.False(t, res.Success())
	assert.NotEmpty(t, res.ErrorText())

	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644))

	res = d.Execute(ctx, "git", "git_status", map[string]any{"path": dir})
	require.True(t, res.Success(), res.ErrorText())
	assert.Contains(t, res["status"], "?? new.txt")
}

func TestFixtureProviders(t *testing.T) {
	d := newTestDispatcher(t, "")
	ctx := context.Background()

	res := d.Execute(ctx, "web_search", "search_web", map[string]any{"query": "mcp", "max_results": float64(1)})
	require.True(t, res.Success())
	results := res["results"].([]map[string]any)
	require.Len(t, results, 1)
	assert.Equal(t, "Search result 1 for 'mcp'", results[0]["title"])

	res = d.Execute(ctx, "web_search", "search_web", map[string]any{"query": "mcp"})
	assert.Len(t, res["results"], 2)

	res = d.Execute(ctx, "web_search", "get_webpage_content", map[string]any{"url": "https://example.com/a?b=1&c=2"})
	require.True(t, res.Success())
	assert.Equal(t, "Simulated page: https://example.com/a?b=1&c=2", res["title"])
	content := res["content"].(string)
	assert.Contains(t, content, "# Simulated content")
	assert.Contains(t, content, "- Open issues: **12**")
	assert.NotContains(t, content, "trackVisit")

	res = d.Execute(ctx, "fetch", "fetch_url", map[string]any{"url": "https://api.example.com", "method": "post"})
	require.True(t, res.Success())
	assert.Equal(t, "POST", res["method"])
	assert.Equal(t, 200, res["status"])

	res = d.Execute(ctx, "memory", "create_memory", map[string]any{"content": "remember", "tags": []any{"a", 1, "b"}})
	require.True(t, res.Success())
	mem := res["memory"].(map[string]any)
	assert.Equal(t, "remember", mem["content"])
	assert.Equal(t, []string{"a", "b"}, mem["tags"])

	res = d.Execute(ctx, "memory", "search_memories", map[string]any{"query": "DEPLOY"})
	require.True(t, res.Success())
	assert.Len(t, res["memories"], 1)

	res = d.Execute(ctx, "memory", "search_memories", map[string]any{})
	assert.Len(t, res["memories"], len(fixtureMemories))
}

func TestSQLiteFixtures(t *testing.T) {
	d := newTestDispatcher(t, "")
	ctx := context.Background()

	res := d.Execute(ctx, "sqlite", "list_tables", map[string]any{"database": "project.db"})
	require.True(t, res.Success(), res.ErrorText())
	assert.Equal(t, []string{"issues", "sprints", "team_members"}, res["tables"])
	assert.Equal(t, "project.db", res["database"])

	res = d.Execute(ctx, "sqlite", "execute_query", map[string]any{
		"database": "project.db",
		"query":    "SELECT title FROM issues WHERE assignee = 'jane.smith@company.com' ORDER BY id",
	})
	require.True(t, res.Success(), res.ErrorText())
	rows := res["rows"].([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fix login redirect loop", rows[0]["title"])

	// Writes never leak into the next call.
	res = d.Execute(ctx, "sqlite", "execute_query", map[string]any{"database": "x", "query": "DELETE FROM issues"})
	require.True(t, res.Success(), res.ErrorText())
	assert.EqualValues(t, 4, res["rows_affected"])

	res = d.Execute(ctx, "sqlite", "execute_query", map[string]any{"database": "x", "query": "SELECT COUNT(*) AS n FROM issues"})
	require.True(t, res.Success())
	assert.EqualValues(t, 4, res["rows"].([]map[string]any)[0]["n"])

	res = d.Execute(ctx, "sqlite", "execute_query", map[string]any{"database": "x", "query": "SELECT * FROM nope"})
	assert.False(t, res.Success())
	assert.NotEmpty(t, res.ErrorText())
}

func TestShowLinearTicketDefaults(t *testing.T) {
	d := newTestDispatcher(t, "")

	res := d.Execute(context.Background(), "builtin", ShowTicketTool, map[string]any{"title": "Ship it", "status": "Done"})
	require.True(t, res.Success())

	ticket, ok := TicketFromResult(res)
	require.True(t, ok)
	assert.Equal(t, Ticket{Title: "Ship it", Status: "Done", Assignee: "Unassigned", Deadline: "No deadline", Tags: []string{}}, ticket)
	assert.Equal(t, "✅", StatusIcon(ticket.Status))
	assert.Equal(t, "❓", StatusIcon("Blocked"))
}
