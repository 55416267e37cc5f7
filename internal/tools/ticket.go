package tools

import (
	"context"
	"fmt"
)

// Ticket is the record shown by the show_linear_ticket tool.
type Ticket struct {
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Assignee string   `json:"assignee"`
	Deadline string   `json:"deadline"`
	Tags     []string `json:"tags"`
}

// StatusIcon returns the marker for a ticket status.
func StatusIcon(status string) string {
	switch status {
	case "In Progress":
		return "🟡"
	case "Done":
		return "✅"
	case "Todo":
		return "⏳"
	case "Backlog":
		return "📋"
	default:
		return "❓"
	}
}

// TicketFromArgs builds a ticket, substituting defaults for missing fields.
func TicketFromArgs(args map[string]any) Ticket {
	return Ticket{
		Title:    GetStringDefault(args, "title", "Untitled"),
		Status:   GetStringDefault(args, "status", "Todo"),
		Assignee: GetStringDefault(args, "assignee", "Unassigned"),
		Deadline: GetStringDefault(args, "deadline", "No deadline"),
		Tags:     GetStringSlice(args, "tags"),
	}
}

// TicketFromResult extracts the ticket from a show_linear_ticket result.
func TicketFromResult(r Result) (Ticket, bool) {
	t, ok := r["ticket"].(Ticket)
	return t, ok
}

func showLinearTicket(ctx context.Context, args map[string]any) (Result, error) {
	ticket := TicketFromArgs(args)
	return NewSuccessResult(map[string]any{
		"ticket":  ticket,
		"message": fmt.Sprintf("%s %s [%s]", StatusIcon(ticket.Status), ticket.Title, ticket.Status),
	}), nil
}
