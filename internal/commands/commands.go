// Package commands implements the slash commands of the interactive session.
// Commands return markdown, which the terminal renders.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"taskpilot/internal/chat"
	"taskpilot/internal/config"
	"taskpilot/internal/tools"
)

// ErrQuit is returned by the quit command to end the session.
var ErrQuit = errors.New("quit")

// Command represents a slash command.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Execute(ctx context.Context, args []string, app AppInterface) (string, error)
}

// AppInterface defines what commands need from the application.
type AppInterface interface {
	GetSession() *chat.Session
	GetDispatcher() *tools.Dispatcher
	GetConfig() *config.Config
	GetVersion() string
	GetController() *chat.Controller
	// SaveConfig persists the current configuration.
	SaveConfig() error
	// SubmitPrompt runs a chat turn and returns its rendered output.
	SubmitPrompt(ctx context.Context, prompt string) (string, error)
	// RunTask runs the chat turn for a task or quick action id.
	RunTask(ctx context.Context, id string) (string, error)
	ClearConversation()
}

// Handler manages slash commands.
type Handler struct {
	commands map[string]Command
}

// NewHandler creates a new command handler with built-in commands.
func NewHandler() *Handler {
	h := &Handler{
		commands: make(map[string]Command),
	}

	// Session
	h.Register(&HelpCommand{handler: h})
	h.Register(&ClearCommand{})
	h.Register(&ExportCommand{})
	h.Register(&SettingsCommand{})
	h.Register(&QuitCommand{})

	// Profile and suggestions
	h.Register(&UserCommand{})
	h.Register(&UsersCommand{})
	h.Register(&TasksCommand{})
	h.Register(&ActionsCommand{})
	h.Register(&RunCommand{})
	h.Register(&PromptsCommand{})
	h.Register(&PromptCommand{})

	// Servers and tools
	h.Register(&ServersCommand{})
	h.Register(&ConnectCommand{})
	h.Register(&DisconnectCommand{})
	h.Register(&AddServerCommand{})
	h.Register(&RemoveServerCommand{})
	h.Register(&ToolsCommand{})
	h.Register(&CallCommand{})

	return h
}

// Register adds a command to the handler.
func (h *Handler) Register(cmd Command) {
	h.commands[cmd.Name()] = cmd
}

// Parse checks if input is a slash command and extracts name and args.
// Paths like /home/user/... are not treated as commands.
func (h *Handler) Parse(input string) (string, []string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", nil, false
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", nil, false
	}

	name := strings.TrimPrefix(parts[0], "/")
	if _, exists := h.commands[name]; !exists {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return name, args, true
}

// Execute runs a command by name.
func (h *Handler) Execute(ctx context.Context, name string, args []string, app AppInterface) (string, error) {
	cmd, exists := h.commands[name]
	if !exists {
		return "", fmt.Errorf("unknown command: /%s", name)
	}
	return cmd.Execute(ctx, args, app)
}

// ListCommands returns all registered commands sorted by name.
func (h *Handler) ListCommands() []Command {
	cmds := make([]Command, 0, len(h.commands))
	for _, cmd := range h.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// GetCommand returns a command by name.
func (h *Handler) GetCommand(name string) (Command, bool) {
	cmd, exists := h.commands[name]
	return cmd, exists
}

// usageError formats a usage hint as an error.
func usageError(cmd Command) error {
	return fmt.Errorf("usage: %s", cmd.Usage())
}
