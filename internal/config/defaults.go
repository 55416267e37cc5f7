package config

import "time"

// Default configuration values.
const (
	// Model call settings
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7

	// Retry settings
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultHTTPTimeout = 120 * time.Second

	// Azure OpenAI
	DefaultAzureAPIVersion = "2024-02-15-preview"

	// Ollama
	DefaultOllamaURL = "http://localhost:11434"

	// MCP servers
	DefaultMCPHost      = "localhost"
	DefaultProbeTimeout = 5 * time.Second

	// Session
	DefaultUserEmail = "john.doe@company.com"
)

// DefaultSystemPrompt is sent ahead of the transcript on every turn.
const DefaultSystemPrompt = `You are a helpful AI assistant integrated with MCP (Model Context Protocol) servers. You can help users manage their projects, files, git repositories, and more through various MCP tools.

Available capabilities:
- File system operations (read, write, list files)
- Git repository management
- Web search and content fetching
- SQLite database operations
- Persistent memory storage
- HTTP requests and API calls

When users ask for help, use the appropriate MCP tools to assist them. Be concise and helpful.`
