package config

import "strings"

// Supported model providers.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// ProviderPreset holds per-provider fallbacks applied when the config leaves them empty.
type ProviderPreset struct {
	Model    string
	Endpoint string
	NeedsKey bool
}

// ProviderPresets contains the fallbacks for each supported provider.
var ProviderPresets = map[string]ProviderPreset{
	ProviderAzure:  {NeedsKey: true},
	ProviderOpenAI: {Model: "gpt-4o-mini", Endpoint: "https://api.openai.com/v1", NeedsKey: true},
	ProviderGemini: {Model: "gemini-2.5-flash", NeedsKey: true},
	ProviderOllama: {Model: "llama3.1", Endpoint: DefaultOllamaURL},
}

// IsKnownProvider reports whether name is a supported provider.
func IsKnownProvider(name string) bool {
	_, ok := ProviderPresets[name]
	return ok
}

// DetectProvider guesses the provider from a model name. Unknown names map to azure,
// where the model name is the deployment.
func DetectProvider(modelName string) string {
	name := strings.ToLower(modelName)
	switch {
	case strings.HasPrefix(name, "gemini"):
		return ProviderGemini
	case strings.HasPrefix(name, "gpt"), strings.HasPrefix(name, "o1"), strings.HasPrefix(name, "o3"), strings.HasPrefix(name, "o4"):
		return ProviderOpenAI
	case strings.Contains(name, "llama"), strings.Contains(name, "qwen"), strings.Contains(name, "mistral"):
		return ProviderOllama
	default:
		return ProviderAzure
	}
}

// applyPreset fills empty model and endpoint fields from the active provider preset.
func (c *Config) applyPreset() {
	c.API.Provider = strings.ToLower(strings.TrimSpace(c.API.Provider))
	if c.API.Provider == "" || c.API.Provider == "auto" {
		c.API.Provider = DetectProvider(c.Model.Name)
	}
	preset, ok := ProviderPresets[c.API.Provider]
	if !ok {
		return
	}
	if c.Model.Name == "" {
		c.Model.Name = preset.Model
	}
	if c.API.Endpoint == "" {
		c.API.Endpoint = preset.Endpoint
	}
	if c.API.Provider == ProviderAzure && c.Model.Name == "" {
		c.Model.Name = c.API.Deployment
	}
}
