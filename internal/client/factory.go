package client

import (
	"context"
	"fmt"

	"taskpilot/internal/config"
	"taskpilot/internal/logging"
)

// New creates the client for the configured provider. Missing credentials
// yield an error wrapping ErrNotConfigured.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		if config.IsNotConfigured(err) {
			return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
		return nil, err
	}

	timeout := cfg.API.Retry.HTTPTimeout
	if timeout == 0 {
		timeout = config.DefaultHTTPTimeout
	}
	retry := retryConfigFrom(cfg.API.Retry)

	logging.Info("creating model client", "provider", cfg.API.Provider, "model", cfg.Model.Name)

	var (
		c   Client
		err error
	)
	switch cfg.API.Provider {
	case config.ProviderAzure:
		c, err = NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.API.APIKey,
			BaseURL:     cfg.API.Endpoint,
			Azure:       true,
			Deployment:  cfg.Deployment(),
			APIVersion:  cfg.API.APIVersion,
			HTTPTimeout: timeout,
			Retry:       retry,
		})
	case config.ProviderOpenAI:
		c, err = NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.API.APIKey,
			BaseURL:     cfg.API.Endpoint,
			Model:       cfg.Model.Name,
			HTTPTimeout: timeout,
			Retry:       retry,
		})
	case config.ProviderGemini:
		c, err = NewGeminiClient(ctx, cfg.API.APIKey, cfg.Model.Name)
	case config.ProviderOllama:
		c, err = NewOllamaClient(OllamaConfig{
			BaseURL:     cfg.API.Endpoint,
			APIKey:      cfg.API.APIKey,
			Model:       cfg.Model.Name,
			HTTPTimeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.API.Provider)
	}
	// The constructors return typed pointers; keep a failed client an untyped nil.
	if err != nil {
		return nil, err
	}
	return c, nil
}
