package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Model   ModelConfig   `yaml:"model"`
	Tools   ToolsConfig   `yaml:"tools"`
	UI      UIConfig      `yaml:"ui"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	MCP     MCPConfig     `yaml:"mcp"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds the language-model endpoint settings.
type APIConfig struct {
	// Active provider: azure, openai, gemini, ollama (default: azure)
	Provider string `yaml:"provider"`

	APIKey     string `yaml:"api_key,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`    // Azure resource endpoint, OpenAI base URL or Ollama URL
	APIVersion string `yaml:"api_version,omitempty"` // Azure only
	Deployment string `yaml:"deployment,omitempty"`  // Azure only

	// Retry configuration for API calls
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry settings for model calls.
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries"`  // Maximum number of retry attempts (default: 3)
	RetryDelay  time.Duration `yaml:"retry_delay"`  // Initial delay between retries (default: 1s)
	HTTPTimeout time.Duration `yaml:"http_timeout"` // HTTP request timeout (default: 120s)
}

// ModelConfig holds model-related settings.
type ModelConfig struct {
	Name         string  `yaml:"name"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int32   `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt"` // Empty disables the system message
}

// ToolsConfig holds tool execution settings.
type ToolsConfig struct {
	WorkDir string `yaml:"work_dir"` // Base for relative tool paths (default: process cwd)
}

// UIConfig holds terminal rendering settings.
type UIConfig struct {
	MarkdownRendering bool   `yaml:"markdown_rendering"`
	Theme             string `yaml:"theme"`           // glamour style: dark, light, notty, auto
	HighlightStyle    string `yaml:"highlight_style"` // chroma style for tool results
	ShowToolCalls     bool   `yaml:"show_tool_calls"`
	WordWrap          int    `yaml:"word_wrap"`
}

// SessionConfig holds per-session defaults.
type SessionConfig struct {
	DefaultUser string `yaml:"default_user"` // Email of the profile active at startup
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`   // Logging level: debug, info, warn, error
	ToFile bool   `yaml:"to_file"` // Write taskpilot.log next to the config file
	JSON   bool   `yaml:"json"`    // JSON lines instead of text when logging to stderr
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	ProbeTimeout time.Duration     `yaml:"probe_timeout"` // TCP reachability probe (default: 5s)
	AutoConnect  bool              `yaml:"auto_connect"`  // Connect configured servers at startup
	Servers      []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig holds configuration for a single MCP server.
type MCPServerConfig struct {
	Name        string `yaml:"name"`               // Unique identifier
	Provider    string `yaml:"provider,omitempty"` // Tool catalog key (default: name lower-cased, spaces as _)
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// DefaultServers returns the public demo servers, one per tool provider.
func DefaultServers() []MCPServerConfig {
	return []MCPServerConfig{
		{Name: "filesystem", Provider: "filesystem", Host: DefaultMCPHost, Port: 3001, Description: "File system operations (read, write, list)", Category: "system"},
		{Name: "git", Provider: "git", Host: DefaultMCPHost, Port: 3002, Description: "Git repository operations", Category: "development"},
		{Name: "web_search", Provider: "web_search", Host: DefaultMCPHost, Port: 3003, Description: "Web search and content fetching", Category: "research"},
		{Name: "sqlite", Provider: "sqlite", Host: DefaultMCPHost, Port: 3004, Description: "SQLite database operations", Category: "database"},
		{Name: "memory", Provider: "memory", Host: DefaultMCPHost, Port: 3005, Description: "Persistent memory storage", Category: "storage"},
		{Name: "fetch", Provider: "fetch", Host: DefaultMCPHost, Port: 3006, Description: "HTTP requests and API calls", Category: "network"},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Provider:   ProviderAzure,
			APIVersion: DefaultAzureAPIVersion,
			Retry: RetryConfig{
				MaxRetries:  DefaultMaxRetries,
				RetryDelay:  DefaultRetryDelay,
				HTTPTimeout: DefaultHTTPTimeout,
			},
		},
		Model: ModelConfig{
			Temperature:  DefaultTemperature,
			MaxTokens:    DefaultMaxTokens,
			SystemPrompt: DefaultSystemPrompt,
		},
		UI: UIConfig{
			MarkdownRendering: true,
			Theme:             "dark",
			HighlightStyle:    "monokai",
			ShowToolCalls:     true,
			WordWrap:          100,
		},
		Session: SessionConfig{
			DefaultUser: DefaultUserEmail,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		MCP: MCPConfig{
			ProbeTimeout: DefaultProbeTimeout,
			Servers:      DefaultServers(),
		},
	}
}
