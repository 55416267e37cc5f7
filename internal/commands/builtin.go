package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"taskpilot/internal/fileutil"
)

// HelpCommand shows help for commands.
type HelpCommand struct {
	handler *Handler
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Show help for commands" }
func (c *HelpCommand) Usage() string       { return "/help [command]" }

func (c *HelpCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) > 0 {
		cmd, exists := c.handler.GetCommand(strings.TrimPrefix(args[0], "/"))
		if !exists {
			return fmt.Sprintf("Unknown command: `/%s`. Use `/help` to see all commands.", args[0]), nil
		}
		return fmt.Sprintf("**/%s** %s\n\nUsage: `%s`", cmd.Name(), cmd.Description(), cmd.Usage()), nil
	}

	categories := []struct {
		name     string
		commands []string
	}{
		{"Session", []string{"help", "clear", "export", "settings", "quit"}},
		{"Profile", []string{"user", "users", "tasks", "actions", "run", "prompts", "prompt"}},
		{"Servers", []string{"servers", "connect", "disconnect", "add", "remove", "tools", "call"}},
	}

	var sb strings.Builder
	sb.WriteString("## Commands\n\n")
	for _, cat := range categories {
		fmt.Fprintf(&sb, "### %s\n\n", cat.name)
		for _, name := range cat.commands {
			if cmd, ok := c.handler.GetCommand(name); ok {
				fmt.Fprintf(&sb, "- `%s` %s\n", cmd.Usage(), cmd.Description())
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Anything else is sent to the assistant.")
	return sb.String(), nil
}

// ClearCommand clears the conversation.
type ClearCommand struct{}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clear conversation history" }
func (c *ClearCommand) Usage() string       { return "/clear" }

func (c *ClearCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	app.ClearConversation()
	return "Conversation cleared.", nil
}

// ExportCommand writes the transcript as markdown.
type ExportCommand struct{}

func (c *ExportCommand) Name() string        { return "export" }
func (c *ExportCommand) Description() string { return "Export the conversation as markdown" }
func (c *ExportCommand) Usage() string       { return "/export [file]" }

func (c *ExportCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	session := app.GetSession()
	if session.Transcript.Len() == 0 {
		return "Nothing to export yet.", nil
	}

	path := fmt.Sprintf("taskpilot-%s.md", session.ID[:8])
	if len(args) > 0 {
		path = args[0]
	}
	if !filepath.IsAbs(path) && app.GetConfig().Tools.WorkDir != "" {
		path = filepath.Join(app.GetConfig().Tools.WorkDir, path)
	}

	md := session.Transcript.Markdown(fmt.Sprintf("Session %s", session.ID))
	if err := fileutil.WriteString(path, md, 0644); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return fmt.Sprintf("Exported %d messages to `%s`.", session.Transcript.Len(), path), nil
}

// QuitCommand ends the session.
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Description() string { return "Exit taskpilot" }
func (c *QuitCommand) Usage() string       { return "/quit" }

func (c *QuitCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	return "", ErrQuit
}
