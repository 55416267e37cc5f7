package chat

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"taskpilot/internal/client"
)

// Entry is one committed transcript message.
type Entry struct {
	ID      ulid.ULID   `json:"id"`
	Role    client.Role `json:"role"`
	Content string      `json:"content"`
	Time    time.Time   `json:"time"`
}

// Transcript is the ordered, append-only message history of a session.
type Transcript struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append commits entries in order under one lock, so a turn's user and
// assistant messages are never interleaved with another writer's.
func (t *Transcript) Append(msgs ...client.Message) []Entry {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	added := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		e := Entry{ID: ulid.Make(), Role: m.Role, Content: m.Content, Time: now}
		t.entries = append(t.entries, e)
		added = append(added, e)
	}
	return added
}

// Entries returns a copy of the committed entries.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

// Messages returns the history in model request form.
func (t *Transcript) Messages() []client.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	msgs := make([]client.Message, len(t.entries))
	for i, e := range t.entries {
		msgs[i] = client.Message{Role: e.Role, Content: e.Content}
	}
	return msgs
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Clear drops every entry.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.entries = nil
	t.mu.Unlock()
}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:password|passwd|token|secret|api_key|apikey|api-key|access_key|auth)\s*[=:]\s*["']?([^\s"']{8,})["']?`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9_\-.]+`),
	regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
}

// redactSensitiveData replaces credential-looking substrings with [REDACTED].
func redactSensitiveData(text string) string {
	for _, pattern := range sensitivePatterns {
		text = pattern.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// Markdown exports the transcript with a ## User or ## Assistant header per
// message. Credentials are redacted.
func (t *Transcript) Markdown(title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	for _, e := range t.Entries() {
		role := "Assistant"
		if e.Role == client.RoleUser {
			role = "User"
		}
		fmt.Fprintf(&sb, "## %s\n\n", role)
		fmt.Fprintf(&sb, "_%s_\n\n", e.Time.Format("2006-01-02 15:04:05"))
		sb.WriteString(redactSensitiveData(e.Content))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
