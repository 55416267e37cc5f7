package ui

import "github.com/charmbracelet/lipgloss"

// Colors for the terminal theme.
var (
	ColorPrimary   = lipgloss.Color("#A78BFA") // Soft Purple (Lavender 400)
	ColorSecondary = lipgloss.Color("#22D3EE") // Bright Cyan (Cyan 400)
	ColorSuccess   = lipgloss.Color("#059669") // Emerald 600
	ColorWarning   = lipgloss.Color("#D97706") // Amber 600
	ColorError     = lipgloss.Color("#DC2626") // Red 600
	ColorMuted     = lipgloss.Color("#9CA3AF") // Gray 400
	ColorDim       = lipgloss.Color("#6B7280") // Gray 500
)

// MessageIcons provides consistent icons for status lines.
var MessageIcons = map[string]string{
	"success": "✓",
	"error":   "✗",
	"warning": "⚠",
	"info":    "ℹ",
	"ignored": "↷",
}

// Styles contains all UI styles.
type Styles struct {
	Header     lipgloss.Style
	Prompt     lipgloss.Style
	Error      lipgloss.Style
	Warning    lipgloss.Style
	Success    lipgloss.Style
	Info       lipgloss.Style
	Dim        lipgloss.Style
	TicketCard lipgloss.Style
	TicketKey  lipgloss.Style
	TicketHead lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() *Styles {
	return &Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary),
		Error:   lipgloss.NewStyle().Foreground(ColorError),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Success: lipgloss.NewStyle().Foreground(ColorSuccess),
		Info:    lipgloss.NewStyle().Foreground(ColorSecondary),
		Dim:     lipgloss.NewStyle().Foreground(ColorDim),
		TicketCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),
		TicketKey:  lipgloss.NewStyle().Foreground(ColorMuted).Width(10),
		TicketHead: lipgloss.NewStyle().Bold(true),
	}
}
