package profile

// Priority ranks a suggested task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is a suggested prompt derived from a profile. Actions reuse the type
// and leave Priority and Category empty.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty"`
	Category    string   `json:"category,omitempty"`
	Action      string   `json:"action"` // sent verbatim as the chat message
	Icon        string   `json:"icon"`
}

type gatedTask struct {
	perm string
	task Task
}

// Permission-gated tasks, checked in order.
var permissionTasks = []gatedTask{
	{PermViewMyIssues, Task{
		ID: "my_issues", Title: "My Assigned Issues", Description: "View all issues assigned to me",
		Priority: PriorityHigh, Category: "issues", Action: "Show me all issues assigned to me", Icon: "📋",
	}},
	{PermViewTeamIssues, Task{
		ID: "team_issues", Title: "Team Issues", Description: "View all issues for my team",
		Priority: PriorityMedium, Category: "team", Action: "Show me all issues for my team", Icon: "👥",
	}},
	{PermViewAnalytics, Task{
		ID: "team_analytics", Title: "Team Analytics", Description: "View team performance metrics",
		Priority: PriorityMedium, Category: "analytics", Action: "Show me team performance analytics", Icon: "📊",
	}},
	{PermManageSprints, Task{
		ID: "sprint_management", Title: "Sprint Management", Description: "Manage current sprint and planning",
		Priority: PriorityHigh, Category: "sprints", Action: "Show me current sprint status and planning", Icon: "🏃",
	}},
}

var roleTasks = map[Role][]Task{
	RoleProjectManager: {
		{ID: "project_overview", Title: "Project Overview", Description: "Get comprehensive project status",
			Priority: PriorityHigh, Category: "management", Action: "Give me a comprehensive overview of all active projects", Icon: "📈"},
		{ID: "stakeholder_report", Title: "Stakeholder Report", Description: "Generate stakeholder update",
			Priority: PriorityMedium, Category: "reports", Action: "Create a stakeholder update report", Icon: "📄"},
	},
	RoleDeveloper: {
		{ID: "my_tasks", Title: "My Tasks", Description: "View my current tasks and priorities",
			Priority: PriorityHigh, Category: "personal", Action: "Show me my current tasks and their priorities", Icon: "✅"},
		{ID: "code_reviews", Title: "Code Reviews", Description: "Check pending code reviews",
			Priority: PriorityMedium, Category: "development", Action: "Show me pending code reviews and PRs", Icon: "🔍"},
	},
	RoleTeamLead: {
		{ID: "team_workload", Title: "Team Workload", Description: "Analyze team capacity and workload",
			Priority: PriorityHigh, Category: "management", Action: "Show me team workload and capacity analysis", Icon: "⚖️"},
		{ID: "resource_planning", Title: "Resource Planning", Description: "Plan team resources and assignments",
			Priority: PriorityMedium, Category: "planning", Action: "Help me plan team resources for upcoming sprints", Icon: "🎯"},
	},
}

var commonActions = []Task{
	{ID: "quick_status", Title: "Quick Status Check", Description: "Get a quick overview of current status",
		Action: "Give me a quick status update", Icon: "⚡"},
	{ID: "create_issue", Title: "Create Issue", Description: "Create a new issue or task",
		Action: "Help me create a new issue", Icon: "➕"},
}

var roleActions = map[Role][]Task{
	RoleProjectManager: {
		{ID: "project_health", Title: "Project Health Check", Description: "Check overall project health",
			Action: "Perform a project health check", Icon: "🏥"},
		{ID: "risk_assessment", Title: "Risk Assessment", Description: "Identify potential risks and blockers",
			Action: "Identify potential risks and blockers in my projects", Icon: "⚠️"},
	},
	RoleDeveloper: {
		{ID: "daily_standup", Title: "Daily Standup Prep", Description: "Prepare for daily standup",
			Action: "Help me prepare for daily standup", Icon: "🌅"},
		{ID: "code_quality", Title: "Code Quality Check", Description: "Check code quality metrics",
			Action: "Show me code quality metrics and suggestions", Icon: "🔧"},
	},
	RoleTeamLead: {
		{ID: "team_retrospective", Title: "Team Retrospective", Description: "Prepare team retrospective",
			Action: "Help me prepare for team retrospective", Icon: "🔄"},
		{ID: "performance_review", Title: "Performance Review", Description: "Review team performance",
			Action: "Show me team performance metrics and insights", Icon: "📊"},
	},
}

// TasksFor returns the permission-gated tasks for p followed by its role tasks.
// The result is a fresh slice on every call.
func TasksFor(p UserProfile) []Task {
	var tasks []Task
	for _, g := range permissionTasks {
		if p.Has(g.perm) {
			tasks = append(tasks, g.task)
		}
	}
	return append(tasks, roleTasks[p.Role]...)
}

// ActionsFor returns the common quick actions followed by the role actions for p.
func ActionsFor(p UserProfile) []Task {
	actions := make([]Task, 0, len(commonActions)+2)
	actions = append(actions, commonActions...)
	return append(actions, roleActions[p.Role]...)
}

// Find returns the task or action with id from list.
func Find(list []Task, id string) (Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
