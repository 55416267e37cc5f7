// Package profile holds the static user directory and the role-derived task
// and action suggestions shown for the active user.
package profile

import (
	"errors"
	"slices"
	"sort"
	"strings"
)

// Role names a user's job function.
type Role string

const (
	RoleProjectManager Role = "project_manager"
	RoleDeveloper      Role = "developer"
	RoleTeamLead       Role = "team_lead"
	RoleUser           Role = "user"
)

// Title returns the role in display form, e.g. "Project Manager".
func (r Role) Title() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Capability tags checked by the task table.
const (
	PermViewAllIssues  = "view_all_issues"
	PermViewMyIssues   = "view_my_issues"
	PermViewTeamIssues = "view_team_issues"
	PermCreateIssues   = "create_issues"
	PermAssignTasks    = "assign_tasks"
	PermUpdateStatus   = "update_status"
	PermViewAnalytics  = "view_analytics"
	PermManageSprints  = "manage_sprints"
)

// ErrUserNotFound is returned when an identity is not in the directory.
var ErrUserNotFound = errors.New("User not found")

// UserProfile describes a known user. Profiles are never mutated after lookup.
type UserProfile struct {
	Name        string   `json:"name" yaml:"name"`
	Email       string   `json:"email" yaml:"email"`
	Role        Role     `json:"role" yaml:"role"`
	Team        string   `json:"team" yaml:"team"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

// Has reports whether the profile carries the capability tag.
func (p UserProfile) Has(perm string) bool {
	return slices.Contains(p.Permissions, perm)
}

func (p UserProfile) clone() UserProfile {
	p.Permissions = slices.Clone(p.Permissions)
	return p
}

var directory = map[string]UserProfile{
	"john.doe@company.com": {
		Name:        "John Doe",
		Email:       "john.doe@company.com",
		Role:        RoleProjectManager,
		Team:        "Engineering",
		Permissions: []string{PermViewAllIssues, PermCreateIssues, PermAssignTasks, PermViewAnalytics},
	},
	"jane.smith@company.com": {
		Name:        "Jane Smith",
		Email:       "jane.smith@company.com",
		Role:        RoleDeveloper,
		Team:        "Engineering",
		Permissions: []string{PermViewMyIssues, PermCreateIssues, PermUpdateStatus},
	},
	"mike.wilson@company.com": {
		Name:        "Mike Wilson",
		Email:       "mike.wilson@company.com",
		Role:        RoleTeamLead,
		Team:        "Engineering",
		Permissions: []string{PermViewTeamIssues, PermAssignTasks, PermViewAnalytics, PermManageSprints},
	},
}

// Guest is the profile used for identities outside the directory.
func Guest() UserProfile {
	return UserProfile{
		Name:        "Guest User",
		Email:       "guest@company.com",
		Role:        RoleUser,
		Team:        "General",
		Permissions: []string{PermViewMyIssues},
	}
}

// Lookup returns the profile registered for email.
func Lookup(email string) (UserProfile, error) {
	p, ok := directory[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return UserProfile{}, ErrUserNotFound
	}
	return p.clone(), nil
}

// LookupOrGuest returns the profile for email, or the guest profile.
func LookupOrGuest(email string) UserProfile {
	if p, err := Lookup(email); err == nil {
		return p
	}
	return Guest()
}

// Emails returns every known identity in sorted order.
func Emails() []string {
	emails := make([]string, 0, len(directory))
	for e := range directory {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return emails
}
