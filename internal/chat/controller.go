package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"taskpilot/internal/client"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/tools"
)

var (
	// ErrEmptyPrompt is returned for blank input.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrTaskNotFound is returned by RunTask for an unknown task or action id.
	ErrTaskNotFound = errors.New("Task not found")
)

// TurnResult is what one chat turn produced for display.
type TurnResult struct {
	Text    string
	Tickets []tools.Ticket
	// Errors are non-fatal problems, such as malformed tool arguments.
	Errors []string
	// Ignored lists server tool calls the model made. They are not executed.
	Ignored []string
}

// Controller runs chat turns: one model call, then built-in tool handling.
type Controller struct {
	client     client.Client
	dispatcher *tools.Dispatcher

	mu    sync.RWMutex
	model config.ModelConfig
}

// NewController creates a controller. A nil client means the model is not
// configured; every turn then fails with client.ErrNotConfigured.
func NewController(c client.Client, d *tools.Dispatcher, model config.ModelConfig) *Controller {
	return &Controller{
		client:     c,
		dispatcher: d,
		model:      model,
	}
}

// ModelSettings returns the settings used for the next turn.
func (c *Controller) ModelSettings() config.ModelConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModelSettings replaces the settings. Turns already streaming keep theirs.
func (c *Controller) SetModelSettings(model config.ModelConfig) {
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// ClientName returns the provider and model of the client, or empty strings
// when none is configured.
func (c *Controller) ClientName() (provider, model string) {
	if c.client == nil {
		return "", ""
	}
	return c.client.Name(), c.client.Model()
}

// Configured reports whether a model client is available.
func (c *Controller) Configured() bool {
	return c.client != nil
}

type toolOwner struct {
	provider tools.ProviderID
	server   string
}

// advertisedTools returns the built-in tools followed by the tools of
// connected servers. A later tool with an already advertised name is skipped.
func (c *Controller) advertisedTools(s *Session) ([]client.Tool, map[string]toolOwner) {
	var out []client.Tool
	owners := make(map[string]toolOwner)

	add := func(desc *tools.Descriptor, owner toolOwner) {
		if prev, dup := owners[desc.Name]; dup {
			logging.Warn("duplicate tool name skipped",
				"tool", desc.Name, "server", owner.server, "kept", prev.server)
			return
		}
		owners[desc.Name] = owner
		out = append(out, client.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			Schema:      desc.Schema(),
		})
	}

	for _, desc := range c.dispatcher.Catalog().Builtin() {
		add(desc, toolOwner{provider: tools.ProviderBuiltin})
	}
	for _, set := range s.Servers.AvailableTools() {
		for _, desc := range set.Tools {
			add(desc, toolOwner{provider: set.Provider, server: set.Server})
		}
	}
	return out, owners
}

// Submit runs one turn for prompt. The user and assistant messages are
// committed together only when the model call succeeds.
func (c *Controller) Submit(ctx context.Context, s *Session, prompt string) (*TurnResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	if c.client == nil {
		return nil, client.ErrNotConfigured
	}

	user := client.Message{Role: client.RoleUser, Content: prompt}
	advertised, owners := c.advertisedTools(s)

	settings := c.ModelSettings()
	req := &client.Request{
		System:      settings.SystemPrompt,
		Messages:    append(s.Transcript.Messages(), user),
		Tools:       advertised,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	}

	log := logging.With("session", s.ID, "provider", c.client.Name())
	log.Debug("chat turn started", "messages", len(req.Messages), "tools", len(req.Tools))

	resp, err := client.Collect(c.client.Stream(ctx, req))
	if err != nil {
		log.Warn("chat turn failed", "error", err)
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	result := &TurnResult{Text: resp.Text}
	for _, call := range resp.ToolCalls {
		c.handleToolCall(ctx, call, owners, result)
	}

	s.Transcript.Append(user, client.Message{Role: client.RoleAssistant, Content: resp.Text})

	log.Info("chat turn completed",
		"tool_calls", len(resp.ToolCalls),
		"tickets", len(result.Tickets),
		"errors", len(result.Errors))
	return result, nil
}

func (c *Controller) handleToolCall(ctx context.Context, call client.ToolCall, owners map[string]toolOwner, result *TurnResult) {
	owner, known := owners[call.Name]
	if !known || owner.provider != tools.ProviderBuiltin {
		logging.Debug("server tool call not executed", "tool", call.Name, "server", owner.server)
		result.Ignored = append(result.Ignored, call.Name)
		return
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Invalid arguments for %s: %v", call.Name, err))
			return
		}
	}

	res := c.dispatcher.Execute(ctx, string(tools.ProviderBuiltin), call.Name, args)
	if !res.Success() {
		result.Errors = append(result.Errors, res.Summary())
		return
	}
	if ticket, ok := tools.TicketFromResult(res); ok {
		result.Tickets = append(result.Tickets, ticket)
	}
}

// RunTask submits the action text of a task or quick action.
func (c *Controller) RunTask(ctx context.Context, s *Session, id string) (*TurnResult, error) {
	task, ok := s.FindTask(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return c.Submit(ctx, s, task.Action)
}
