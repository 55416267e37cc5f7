package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"taskpilot/internal/config"
	"taskpilot/internal/tools"
)

// ServersCommand lists the configured MCP servers.
type ServersCommand struct{}

func (c *ServersCommand) Name() string        { return "servers" }
func (c *ServersCommand) Description() string { return "List MCP servers" }
func (c *ServersCommand) Usage() string       { return "/servers" }

func (c *ServersCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	manager := app.GetSession().Servers
	status := manager.Status()
	if len(status) == 0 {
		return "No servers configured. Add one with `/add <name> <host> <port> [description]`.", nil
	}

	var sb strings.Builder
	sb.WriteString("| Server | Status | Address | Tools | Description |\n|---|---|---|---|---|\n")
	for _, name := range manager.Names() {
		st, ok := status[name]
		if !ok {
			continue
		}
		state := "○ disconnected"
		if st.Connected {
			state = "● connected"
		}
		var desc string
		if srv, ok := manager.Get(name); ok {
			desc = srv.Description
		}
		fmt.Fprintf(&sb, "| %s | %s | %s:%d | %d | %s |\n",
			name, state, st.Host, st.Port, st.ToolsCount, desc)
	}
	return sb.String(), nil
}

// ConnectCommand connects a server.
type ConnectCommand struct{}

func (c *ConnectCommand) Name() string        { return "connect" }
func (c *ConnectCommand) Description() string { return "Connect an MCP server" }
func (c *ConnectCommand) Usage() string       { return "/connect <name|all>" }

func (c *ConnectCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) != 1 {
		return "", usageError(c)
	}
	servers := app.GetSession().Servers

	if args[0] == "all" {
		err := servers.ConnectAll(ctx)
		connected := len(servers.AvailableTools())
		if err != nil {
			return fmt.Sprintf("Connected %d servers. Failures:\n\n```\n%v\n```", connected, err), nil
		}
		return fmt.Sprintf("Connected %d servers.", connected), nil
	}

	msg, err := servers.Connect(ctx, args[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", args[0], err)
	}
	return fmt.Sprintf("**%s**: %s", args[0], msg), nil
}

// DisconnectCommand disconnects a server.
type DisconnectCommand struct{}

func (c *DisconnectCommand) Name() string        { return "disconnect" }
func (c *DisconnectCommand) Description() string { return "Disconnect an MCP server" }
func (c *DisconnectCommand) Usage() string       { return "/disconnect <name>" }

func (c *DisconnectCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) != 1 {
		return "", usageError(c)
	}
	msg, err := app.GetSession().Servers.Disconnect(args[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", args[0], err)
	}
	return fmt.Sprintf("**%s**: %s", args[0], msg), nil
}

// AddServerCommand adds a server to this session.
type AddServerCommand struct{}

func (c *AddServerCommand) Name() string        { return "add" }
func (c *AddServerCommand) Description() string { return "Add an MCP server to this session" }
func (c *AddServerCommand) Usage() string       { return "/add <name> <host> <port> [description]" }

func (c *AddServerCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) < 3 {
		return "", usageError(c)
	}
	port, err := strconv.Atoi(args[2])
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %q", args[2])
	}

	app.GetSession().Servers.Add(config.MCPServerConfig{
		Name:        args[0],
		Host:        args[1],
		Port:        port,
		Description: strings.Join(args[3:], " "),
		Category:    "custom",
	})
	return fmt.Sprintf("Added server **%s** at %s:%d. Connect it with `/connect %s`.", args[0], args[1], port, args[0]), nil
}

// RemoveServerCommand removes a server from this session.
type RemoveServerCommand struct{}

func (c *RemoveServerCommand) Name() string        { return "remove" }
func (c *RemoveServerCommand) Description() string { return "Remove an MCP server" }
func (c *RemoveServerCommand) Usage() string       { return "/remove <name>" }

func (c *RemoveServerCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) != 1 {
		return "", usageError(c)
	}
	if !app.GetSession().Servers.Remove(args[0]) {
		return "", fmt.Errorf("%s: server not found", args[0])
	}
	return fmt.Sprintf("Removed server **%s**.", args[0]), nil
}

// ToolsCommand lists the tools advertised to the model.
type ToolsCommand struct{}

func (c *ToolsCommand) Name() string        { return "tools" }
func (c *ToolsCommand) Description() string { return "List tools available to the assistant" }
func (c *ToolsCommand) Usage() string       { return "/tools" }

func (c *ToolsCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Tool | Source | Description |\n|---|---|---|\n")
	for _, desc := range app.GetDispatcher().Catalog().Builtin() {
		fmt.Fprintf(&sb, "| `%s` | built-in | %s |\n", desc.Name, desc.Description)
	}
	for _, set := range app.GetSession().Servers.AvailableTools() {
		for _, desc := range set.Tools {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", desc.Name, set.Server, desc.Description)
		}
	}
	return sb.String(), nil
}

// CallCommand dispatches one provider operation directly.
type CallCommand struct{}

func (c *CallCommand) Name() string        { return "call" }
func (c *CallCommand) Description() string { return "Call a provider operation directly" }
func (c *CallCommand) Usage() string       { return "/call <provider> <operation> [json-args]" }

func (c *CallCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) < 2 {
		return "", usageError(c)
	}

	callArgs := map[string]any{}
	if len(args) > 2 {
		raw := strings.Join(args[2:], " ")
		if err := json.Unmarshal([]byte(raw), &callArgs); err != nil {
			return "", fmt.Errorf("invalid JSON arguments: %w", err)
		}
	}

	res := app.GetDispatcher().Execute(ctx, args[0], args[1], callArgs)
	return FormatResult(res), nil
}

// FormatResult renders a dispatch result as a fenced JSON block.
func FormatResult(res tools.Result) string {
	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Sprintf("```\n%v\n```", map[string]any(res))
	}
	return "```json\n" + string(body) + "\n```"
}
