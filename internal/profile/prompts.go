package profile

// Prompt is a reusable canned question.
type Prompt struct {
	Name        string `json:"name"`
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
}

// PromptCategory groups related prompts.
type PromptCategory struct {
	Name    string   `json:"name"`
	Prompts []Prompt `json:"prompts"`
}

var promptLibrary = []PromptCategory{
	{Name: "Project Management", Prompts: []Prompt{
		{"Project Overview", "Give me a comprehensive overview of all my active projects, including status, deadlines, and team assignments.", "Get a complete picture of your project portfolio"},
		{"Team Workload Analysis", "Analyze the current workload distribution across my team members and identify any bottlenecks or over-allocations.", "Understand team capacity and resource allocation"},
		{"Risk Assessment", "Identify potential risks and blockers in my current projects and suggest mitigation strategies.", "Proactive risk management and planning"},
	}},
	{Name: "Development", Prompts: []Prompt{
		{"Code Review Status", "Show me all pending code reviews and pull requests that need my attention.", "Stay on top of code review responsibilities"},
		{"Repository Health", "Analyze the health of my git repositories, including commit frequency, branch management, and code quality metrics.", "Monitor repository health and development activity"},
		{"Technical Debt Analysis", "Identify areas of technical debt in my codebase and suggest refactoring priorities.", "Plan technical improvements and maintenance"},
	}},
	{Name: "Analytics", Prompts: []Prompt{
		{"Performance Metrics", "Show me key performance indicators for my projects, including velocity, completion rates, and team productivity.", "Track project and team performance"},
		{"Trend Analysis", "Analyze trends in my project data over the past quarter and identify patterns or insights.", "Understand long-term trends and patterns"},
		{"Resource Utilization", "Evaluate how efficiently resources are being utilized across different projects and teams.", "Optimize resource allocation and planning"},
	}},
}

// PromptLibrary returns a copy of the canned prompt catalog.
func PromptLibrary() []PromptCategory {
	out := make([]PromptCategory, len(promptLibrary))
	for i, c := range promptLibrary {
		out[i] = PromptCategory{Name: c.Name, Prompts: append([]Prompt(nil), c.Prompts...)}
	}
	return out
}

// Prompts returns every prompt in catalog order, flattened.
func Prompts() []Prompt {
	var all []Prompt
	for _, c := range promptLibrary {
		all = append(all, c.Prompts...)
	}
	return all
}
