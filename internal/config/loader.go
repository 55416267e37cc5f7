package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taskpilot/internal/fileutil"

	"gopkg.in/yaml.v3"
)

// AppName names the config directory and the default log file prefix.
const AppName = "taskpilot"

// Load loads configuration from the default path and environment variables.
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads configuration from path, then applies environment overrides.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)
	cfg.applyPreset()

	return cfg, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, AppName, "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", AppName, "config.yaml")
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	return getConfigPath()
}

// ConfigDir returns the directory holding the config file.
func ConfigDir() string {
	p := getConfigPath()
	if p == "" {
		return ""
	}
	return filepath.Dir(p)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Expand environment variables in the config file
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
// The AZURE_OPENAI_* variables select the azure provider when a key is present.
func loadFromEnv(cfg *Config) {
	if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
		cfg.API.APIKey = key
		cfg.API.Provider = ProviderAzure
	}
	if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
		cfg.API.Endpoint = endpoint
	}
	if version := os.Getenv("AZURE_OPENAI_API_VERSION"); version != "" {
		cfg.API.APIVersion = version
	}
	if deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); deployment != "" {
		cfg.API.Deployment = deployment
	}

	// TASKPILOT_* wins over provider-specific variables.
	if provider := os.Getenv("TASKPILOT_PROVIDER"); provider != "" {
		cfg.API.Provider = provider
	}
	if key := os.Getenv("TASKPILOT_API_KEY"); key != "" {
		cfg.API.APIKey = key
	}
	if endpoint := os.Getenv("TASKPILOT_ENDPOINT"); endpoint != "" {
		cfg.API.Endpoint = endpoint
	}
	if model := os.Getenv("TASKPILOT_MODEL"); model != "" {
		cfg.Model.Name = model
	}
	if user := os.Getenv("TASKPILOT_USER"); user != "" {
		cfg.Session.DefaultUser = user
	}
	if level := os.Getenv("TASKPILOT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if v := os.Getenv("TASKPILOT_AUTO_CONNECT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MCP.AutoConnect = b
		}
	}
}

// Validate checks the model endpoint settings. ErrMissingAuth and
// ErrMissingEndpoint are soft failures: callers warn and keep running so
// non-model features stay usable. Server entries are checked separately by
// ValidateServers.
func (c *Config) Validate() error {
	if !IsKnownProvider(c.API.Provider) {
		return fmt.Errorf("unknown provider %q (want azure, openai, gemini or ollama)", c.API.Provider)
	}
	if ProviderPresets[c.API.Provider].NeedsKey && c.API.APIKey == "" {
		return ErrMissingAuth
	}
	if c.API.Provider == ProviderAzure && (c.API.Endpoint == "" || c.deployment() == "") {
		return ErrMissingEndpoint
	}
	return nil
}

// ValidateServers returns the usable server entries in order, and an error
// describing every entry that was dropped: empty or duplicate names and
// ports outside 1-65535.
func ValidateServers(servers []MCPServerConfig) ([]MCPServerConfig, error) {
	valid := make([]MCPServerConfig, 0, len(servers))
	names := make(map[string]bool, len(servers))
	var errs []error

	for _, s := range servers {
		switch {
		case strings.TrimSpace(s.Name) == "":
			errs = append(errs, fmt.Errorf("mcp server with empty name"))
		case names[s.Name]:
			errs = append(errs, fmt.Errorf("duplicate mcp server %q", s.Name))
		case s.Port < 1 || s.Port > 65535:
			errs = append(errs, fmt.Errorf("mcp server %q: port %d out of range", s.Name, s.Port))
		default:
			names[s.Name] = true
			valid = append(valid, s)
		}
	}
	return valid, errors.Join(errs...)
}

func (c *Config) deployment() string {
	if c.API.Deployment != "" {
		return c.API.Deployment
	}
	return c.Model.Name
}

// Deployment returns the Azure deployment name, falling back to the model name.
func (c *Config) Deployment() string {
	return c.deployment()
}

// Error types for configuration validation.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrMissingAuth     ConfigError = "model not configured: set AZURE_OPENAI_API_KEY (or api.api_key in config.yaml)"
	ErrMissingEndpoint ConfigError = "model not configured: set AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_DEPLOYMENT_NAME"
)

// IsNotConfigured reports whether err means the model credentials are incomplete.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrMissingAuth) || errors.Is(err, ErrMissingEndpoint)
}

// Save saves the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveTo(getConfigPath())
}

// SaveTo writes the configuration to path atomically.
func (c *Config) SaveTo(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("could not determine config path")
	}

	// 0700: the file may contain API keys
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileutil.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
