package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"taskpilot/internal/chat"
	"taskpilot/internal/config"
	"taskpilot/internal/highlight"
	"taskpilot/internal/logging"
	"taskpilot/internal/profile"
	"taskpilot/internal/tools"
)

// Renderer turns assistant output, tickets and tool results into terminal text.
type Renderer struct {
	styles        *Styles
	markdown      *glamour.TermRenderer // nil when markdown rendering is off
	highlighter   *highlight.Highlighter
	showToolCalls bool
}

// NewRenderer creates a renderer from the UI settings.
func NewRenderer(cfg config.UIConfig) (*Renderer, error) {
	r := &Renderer{
		styles:        DefaultStyles(),
		highlighter:   highlight.New(cfg.HighlightStyle),
		showToolCalls: cfg.ShowToolCalls,
	}
	if !cfg.MarkdownRendering {
		return r, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(cfg.WordWrap)}
	if cfg.Theme == "" || cfg.Theme == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(cfg.Theme))
	}

	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	r.markdown = md
	return r, nil
}

// Markdown renders markdown text, falling back to the raw text on failure.
func (r *Renderer) Markdown(text string) string {
	if r.markdown == nil || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		logging.Debug("markdown render failed", "error", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Ticket renders a ticket card.
func (r *Renderer) Ticket(t tools.Ticket) string {
	row := func(key, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, r.styles.TicketKey.Render(key), value)
	}
	tags := "none"
	if len(t.Tags) > 0 {
		tags = strings.Join(t.Tags, ", ")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		r.styles.TicketHead.Render("🎫 "+t.Title),
		row("Status", tools.StatusIcon(t.Status)+" "+t.Status),
		row("Assignee", t.Assignee),
		row("Deadline", t.Deadline),
		row("Tags", tags),
	)
	return r.styles.TicketCard.Render(body)
}

// Turn renders the full output of a chat turn.
func (r *Renderer) Turn(res *chat.TurnResult) string {
	var parts []string
	if strings.TrimSpace(res.Text) != "" {
		parts = append(parts, r.Markdown(res.Text))
	}
	for _, t := range res.Tickets {
		parts = append(parts, r.Ticket(t))
	}
	for _, e := range res.Errors {
		parts = append(parts, r.Error(e))
	}
	if r.showToolCalls {
		for _, name := range res.Ignored {
			parts = append(parts, r.styles.Dim.Render(MessageIcons["ignored"]+" tool call not executed: "+name))
		}
	}
	if len(parts) == 0 {
		return r.styles.Dim.Render("(no response)")
	}
	return strings.Join(parts, "\n")
}

// Result renders a dispatch result as highlighted JSON. read_file content is
// shown as highlighted source instead.
func (r *Renderer) Result(operation string, args map[string]any, res tools.Result) string {
	if operation == "read_file" && res.Success() {
		if content, ok := res["content"].(string); ok {
			path, _ := tools.GetString(args, "path")
			return r.highlighter.Highlight(content, r.highlighter.DetectLanguage(path))
		}
	}
	out, err := r.highlighter.JSON(res)
	if err != nil {
		return fmt.Sprint(map[string]any(res))
	}
	return out
}

// Banner renders the greeting for the active profile.
func (r *Renderer) Banner(p profile.UserProfile, version string) string {
	title := r.styles.Header.Render(fmt.Sprintf("taskpilot %s", version))
	who := fmt.Sprintf("Signed in as %s (%s, %s)", p.Name, p.Role.Title(), p.Team)
	hint := r.styles.Dim.Render("Type /help for commands, /tasks for suggestions, /quit to exit.")
	return lipgloss.JoinVertical(lipgloss.Left, title, who, hint)
}

// Prompt renders the input prompt.
func (r *Renderer) Prompt(p profile.UserProfile) string {
	name := p.Email
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	return r.styles.Prompt.Render(name+" ›") + " "
}

// Error renders an error line.
func (r *Renderer) Error(msg string) string {
	return r.styles.Error.Render(MessageIcons["error"] + " " + msg)
}

// Warning renders a warning line.
func (r *Renderer) Warning(msg string) string {
	return r.styles.Warning.Render(MessageIcons["warning"] + " " + msg)
}

// Success renders a success line.
func (r *Renderer) Success(msg string) string {
	return r.styles.Success.Render(MessageIcons["success"] + " " + msg)
}
