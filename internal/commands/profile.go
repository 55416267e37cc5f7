package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"taskpilot/internal/profile"
)

// UserCommand shows or switches the active profile.
type UserCommand struct{}

func (c *UserCommand) Name() string        { return "user" }
func (c *UserCommand) Description() string { return "Show or switch the active user" }
func (c *UserCommand) Usage() string       { return "/user [email]" }

func (c *UserCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	session := app.GetSession()
	if len(args) == 0 {
		return formatProfile(session.Profile()), nil
	}

	msg, err := session.SwitchUser(args[0])
	if err != nil {
		return "", err
	}
	return msg + "\n\n" + formatProfile(session.Profile()), nil
}

func formatProfile(p profile.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", p.Name)
	fmt.Fprintf(&sb, "- **Email:** %s\n", p.Email)
	fmt.Fprintf(&sb, "- **Role:** %s\n", p.Role.Title())
	fmt.Fprintf(&sb, "- **Team:** %s\n", p.Team)
	fmt.Fprintf(&sb, "- **Permissions:** %s\n", strings.Join(p.Permissions, ", "))
	return sb.String()
}

// UsersCommand lists the known users.
type UsersCommand struct{}

func (c *UsersCommand) Name() string        { return "users" }
func (c *UsersCommand) Description() string { return "List known users" }
func (c *UsersCommand) Usage() string       { return "/users" }

func (c *UsersCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	active := app.GetSession().Profile().Email

	var sb strings.Builder
	sb.WriteString("| | Email | Name | Role |\n|---|---|---|---|\n")
	for _, email := range profile.Emails() {
		p, err := profile.Lookup(email)
		if err != nil {
			continue
		}
		marker := ""
		if email == active {
			marker = "●"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", marker, p.Email, p.Name, p.Role.Title())
	}
	return sb.String(), nil
}

// TasksCommand lists the suggested tasks for the active user.
type TasksCommand struct{}

func (c *TasksCommand) Name() string        { return "tasks" }
func (c *TasksCommand) Description() string { return "Show suggested tasks" }
func (c *TasksCommand) Usage() string       { return "/tasks" }

func (c *TasksCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	session := app.GetSession()
	p := session.Profile()
	return formatTasks(fmt.Sprintf("Tasks for %s (%s)", p.Name, p.Role.Title()), session.Tasks(), true), nil
}

// ActionsCommand lists the quick actions for the active user.
type ActionsCommand struct{}

func (c *ActionsCommand) Name() string        { return "actions" }
func (c *ActionsCommand) Description() string { return "Show quick actions" }
func (c *ActionsCommand) Usage() string       { return "/actions" }

func (c *ActionsCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	return formatTasks("Quick actions", app.GetSession().Actions(), false), nil
}

func formatTasks(title string, list []profile.Task, withPriority bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	if len(list) == 0 {
		sb.WriteString("Nothing suggested for this profile.\n")
		return sb.String()
	}

	if withPriority {
		sb.WriteString("| ID | Task | Priority | Category |\n|---|---|---|---|\n")
		for _, t := range list {
			fmt.Fprintf(&sb, "| `%s` | %s %s | %s | %s |\n", t.ID, t.Icon, t.Title, t.Priority, t.Category)
		}
	} else {
		sb.WriteString("| ID | Action | Description |\n|---|---|---|\n")
		for _, t := range list {
			fmt.Fprintf(&sb, "| `%s` | %s %s | %s |\n", t.ID, t.Icon, t.Title, t.Description)
		}
	}
	sb.WriteString("\nRun one with `/run <id>`.\n")
	return sb.String()
}

// RunCommand sends a task's or action's prompt to the assistant.
type RunCommand struct{}

func (c *RunCommand) Name() string        { return "run" }
func (c *RunCommand) Description() string { return "Run a suggested task or quick action" }
func (c *RunCommand) Usage() string       { return "/run <id>" }

func (c *RunCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) != 1 {
		return "", usageError(c)
	}
	return app.RunTask(ctx, args[0])
}

// PromptsCommand lists the prompt library.
type PromptsCommand struct{}

func (c *PromptsCommand) Name() string        { return "prompts" }
func (c *PromptsCommand) Description() string { return "Show the prompt library" }
func (c *PromptsCommand) Usage() string       { return "/prompts" }

func (c *PromptsCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Prompt library\n\n")

	n := 1
	for _, cat := range profile.PromptLibrary() {
		fmt.Fprintf(&sb, "### %s\n\n", cat.Name)
		for _, p := range cat.Prompts {
			fmt.Fprintf(&sb, "%d. **%s** %s\n", n, p.Name, p.Description)
			n++
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Send one with `/prompt <number>`.\n")
	return sb.String(), nil
}

// PromptCommand sends a library prompt to the assistant.
type PromptCommand struct{}

func (c *PromptCommand) Name() string        { return "prompt" }
func (c *PromptCommand) Description() string { return "Send a prompt from the library" }
func (c *PromptCommand) Usage() string       { return "/prompt <number>" }

func (c *PromptCommand) Execute(ctx context.Context, args []string, app AppInterface) (string, error) {
	if len(args) != 1 {
		return "", usageError(c)
	}
	prompts := profile.Prompts()
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(prompts) {
		return "", fmt.Errorf("prompt number must be between 1 and %d", len(prompts))
	}
	return app.SubmitPrompt(ctx, prompts[n-1].Prompt)
}
