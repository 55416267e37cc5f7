package commands

import (
	"context"
	"os"
	"path/filepath"
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

type upProber struct{}

func (upProber) Probe(context.Context, string, int) bool { return true }

type fakeApp struct {
	session    *chat.Session
	dispatcher *tools.Dispatcher
	cfg        *config.Config
	controller *chat.Controller
	configPath string
	prompts    []string
}

func newFakeApp(t *testing.T) *fakeApp {
	t.Helper()
	catalog, err := tools.LoadCatalog()
	require.NoError(t, err)
	d, err := tools.NewDispatcher(catalog, t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Tools.WorkDir = t.TempDir()
	servers := mcp.NewManager(catalog, upProber{}, config.DefaultServers())
	return &fakeApp{
		session:    chat.NewSession(profile.LookupOrGuest(cfg.Session.DefaultUser), servers),
		dispatcher: d,
		cfg:        cfg,
		controller: chat.NewController(nil, d, cfg.Model),
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (a *fakeApp) GetSession() *chat.Session        { return a.session }
func (a *fakeApp) GetDispatcher() *tools.Dispatcher { return a.dispatcher }
func (a *fakeApp) GetConfig() *config.Config        { return a.cfg }
func (a *fakeApp) GetVersion() string               { return "test" }
func (a *fakeApp) ClearConversation()               { a.session.Clear() }
func (a *fakeApp) GetController() *chat.Controller  { return a.controller }
func (a *fakeApp) SaveConfig() error                { return a.cfg.SaveTo(a.configPath) }

func (a *fakeApp) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	return "answered", nil
}

func (a *fakeApp) RunTask(ctx context.Context, id string) (string, error) {
	task, ok := a.session.FindTask(id)
	if !ok {
		return "", chat.ErrTaskNotFound
	}
	return a.SubmitPrompt(ctx, task.Action)
}

func run(t *testing.T, h *Handler, app AppInterface, input string) (string, error) {
	t.Helper()
	name, args, ok := h.Parse(input)
	require.True(t, ok, "not a command: %s", input)
	return h.Execute(context.Background(), name, args, app)
}

func TestParse(t *testing.T) {
	h := NewHandler()

	name, args, ok := h.Parse("  /connect git  ")
	assert.True(t, ok)
	assert.Equal(t, "connect", name)
	assert.Equal(t, []string{"git"}, args)

	_, _, ok = h.Parse("/home/user/file.txt")
	assert.False(t, ok)
	_, _, ok = h.Parse("show my tasks")
	assert.False(t, ok)
}

func TestHelpListsEveryCommand(t *testing.T) {
	h := NewHandler()
	out, err := run(t, h, newFakeApp(t), "/help")
	require.NoError(t, err)

	for _, cmd := range h.ListCommands() {
		assert.Contains(t, out, cmd.Usage())
	}

	out, err = run(t, h, newFakeApp(t), "/help run")
	require.NoError(t, err)
	assert.Contains(t, out, "/run <id>")
}

func TestUserSwitch(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)

	out, err := run(t, h, app, "/user jane.smith@company.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched to Jane Smith")

	out, err = run(t, h, app, "/tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "`my_issues`")
	assert.Contains(t, out, "`my_tasks`")
	assert.NotContains(t, out, "`project_overview`")

	_, err = run(t, h, app, "/user ghost@company.com")
	assert.ErrorIs(t, err, profile.ErrUserNotFound)
}

func TestRunAndPrompt(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)

	out, err := run(t, h, app, "/run quick_status")
	require.NoError(t, err)
	assert.Equal(t, "answered", out)

	_, err = run(t, h, app, "/prompt 1")
	require.NoError(t, err)
	require.Len(t, app.prompts, 2)
	assert.Equal(t, profile.Prompts()[0].Prompt, app.prompts[1])

	_, err = run(t, h, app, "/prompt 99")
	assert.Error(t, err)
	_, err = run(t, h, app, "/run nope")
	assert.ErrorIs(t, err, chat.ErrTaskNotFound)
}

func TestServerCommands(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)

	out, err := run(t, h, app, "/connect git")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected successfully. Found 3 tools.")

	out, err = run(t, h, app, "/tools")
	require.NoError(t, err)
	assert.Contains(t, out, "`show_linear_ticket`")
	assert.Contains(t, out, "`git_log`")

	_, err = run(t, h, app, "/connect nope")
	assert.ErrorIs(t, err, mcp.ErrServerNotFound)

	out, err = run(t, h, app, "/add jira localhost 4100 Issue tracker")
	require.NoError(t, err)
	assert.Contains(t, out, "jira")
	srv, ok := app.session.Servers.Get("jira")
	require.True(t, ok)
	assert.Equal(t, "Issue tracker", srv.Description)

	out, err = run(t, h, app, "/servers")
	require.NoError(t, err)
	assert.Contains(t, out, "| git | ● connected | localhost:3002 | 3 |")
	assert.Contains(t, out, "| jira | ○ disconnected | localhost:4100 | 0 | Issue tracker |")

	_, err = run(t, h, app, "/disconnect git")
	require.NoError(t, err)
	_, err = run(t, h, app, "/remove jira")
	require.NoError(t, err)
	_, err = run(t, h, app, "/remove jira")
	assert.Error(t, err)

	_, err = run(t, h, app, "/add bad localhost notaport")
	assert.Error(t, err)
}

func TestCallCommand(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)

	out, err := run(t, h, app, `/call memory search_memories {"query": "sprint"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "```json")
	assert.Contains(t, out, `"success": true`)

	out, err = run(t, h, app, "/call nope nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "Tool 'nothing' not found in server 'nope'")

	_, err = run(t, h, app, "/call memory search_memories {bad")
	assert.Error(t, err)
}

func TestExportAndClear(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)

	out, err := run(t, h, app, "/export")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to export yet.", out)

	app.session.Transcript.Append(
		client.Message{Role: client.RoleUser, Content: "hi"},
		client.Message{Role: client.RoleAssistant, Content: "hello"},
	)
	_, err = run(t, h, app, "/export chat.md")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(app.cfg.Tools.WorkDir, "chat.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Assistant")

	_, err = run(t, h, app, "/clear")
	require.NoError(t, err)
	assert.Zero(t, app.session.Transcript.Len())

	_, err = run(t, h, app, "/quit")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestSettings(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)
	app.cfg.API.Provider = config.ProviderAzure
	app.cfg.API.Deployment = "gpt-4o"

	out, err := run(t, h, app, "/settings")
	require.NoError(t, err)
	assert.Contains(t, out, "**Provider:** azure")
	assert.Contains(t, out, "**Deployment:** gpt-4o")
	assert.Contains(t, out, "Not configured")
	assert.Contains(t, out, "AZURE_OPENAI_DEPLOYMENT_NAME=")

	out, err = run(t, h, app, "/settings set temperature 0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "Temperature 0.3")
	_, err = run(t, h, app, "/settings set max_tokens 1500")
	require.NoError(t, err)

	got := app.controller.ModelSettings()
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.Equal(t, int32(1500), got.MaxTokens)

	saved, err := config.LoadFrom(app.configPath)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, saved.Model.Temperature, 1e-6)
	assert.Equal(t, int32(1500), saved.Model.MaxTokens)

	out, err = run(t, h, app, "/settings")
	require.NoError(t, err)
	assert.Contains(t, out, "**Temperature:** 0.3")
	assert.Contains(t, out, "**Max tokens:** 1500")
}

func TestSettingsRejectsOutOfRange(t *testing.T) {
	h := NewHandler()
	app := newFakeApp(t)
	before := app.controller.ModelSettings()

	for _, in := range []string{
		"/settings set temperature 2.5",
		"/settings set temperature warm",
		"/settings set max_tokens 50",
		"/settings set top_p 1",
		"/settings set temperature",
	} {
		_, err := run(t, h, app, in)
		assert.Error(t, err, in)
	}

	assert.Equal(t, before, app.controller.ModelSettings())
	_, err := os.Stat(app.configPath)
	assert.True(t, os.IsNotExist(err))
}
