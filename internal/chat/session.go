package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskpilot/internal/mcp"
	"taskpilot/internal/profile"
)

// Session is the state of one conversation: the active profile with its
// derived tasks and actions, the transcript and the server connections.
type Session struct {
	ID         string
	StartTime  time.Time
	Transcript *Transcript
	Servers    *mcp.Manager

	profile profile.UserProfile
	tasks   []profile.Task
	actions []profile.Task
	mu      sync.RWMutex

	// turn serializes chat turns.
	turn sync.Mutex
}

// NewSession creates a session for p with an empty transcript.
func NewSession(p profile.UserProfile, servers *mcp.Manager) *Session {
	s := &Session{
		ID:         uuid.New().String(),
		StartTime:  time.Now(),
		Transcript: NewTranscript(),
		Servers:    servers,
	}
	s.setProfile(p)
	return s
}

func (s *Session) setProfile(p profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.tasks = profile.TasksFor(p)
	s.actions = profile.ActionsFor(p)
}

// Profile returns the active profile.
func (s *Session) Profile() profile.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Tasks returns the tasks derived from the active profile.
func (s *Session) Tasks() []profile.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]profile.Task(nil), s.tasks...)
}

// Actions returns the quick actions derived from the active profile.
func (s *Session) Actions() []profile.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]profile.Task(nil), s.actions...)
}

// FindTask looks up a task or action by id.
func (s *Session) FindTask(id string) (profile.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := profile.Find(s.tasks, id); ok {
		return t, true
	}
	return profile.Find(s.actions, id)
}

// SwitchUser activates the profile for email and re-derives tasks and
// actions. An unknown email leaves the session unchanged.
func (s *Session) SwitchUser(email string) (string, error) {
	p, err := profile.Lookup(email)
	if err != nil {
		return "", err
	}
	s.setProfile(p)
	return fmt.Sprintf("Switched to %s", p.Name), nil
}

// Clear empties the transcript.
func (s *Session) Clear() {
	s.Transcript.Clear()
}
