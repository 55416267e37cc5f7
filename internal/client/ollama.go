package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"taskpilot/internal/logging"
)

// OllamaConfig holds configuration for a local or remote Ollama server.
type OllamaConfig struct {
	BaseURL     string
	APIKey      string // optional, for servers behind an auth proxy
	Model       string
	HTTPTimeout time.Duration
}

// OllamaClient streams from the Ollama chat API.
type OllamaClient struct {
	client *api.Client
	config OllamaConfig
}

// authTransport adds a bearer token to every request.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(req)
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	if baseURL.Scheme == "http" {
		host := baseURL.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host", "host", host)
		}
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.APIKey != "" {
		httpClient.Transport = &authTransport{base: http.DefaultTransport, apiKey: cfg.APIKey}
	}

	return &OllamaClient{
		client: api.NewClient(baseURL, httpClient),
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (c *OllamaClient) Name() string { return "ollama" }

// Model returns the model name.
func (c *OllamaClient) Model() string { return c.config.Model }

// errStopStream aborts the chat callback when the consumer stops ranging.
var errStopStream = errors.New("stream stopped by consumer")

// Stream yields text and tool calls from the chat endpoint.
func (c *OllamaClient) Stream(ctx context.Context, req *Request) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		chatReq := &api.ChatRequest{
			Model:    c.config.Model,
			Messages: toOllamaMessages(req),
			Stream:   Ptr(true),
			Options: map[string]interface{}{
				"num_predict": req.MaxTokens,
			},
		}
		if req.Temperature > 0 {
			chatReq.Options["temperature"] = req.Temperature
		}
		if len(req.Tools) > 0 {
			chatReq.Tools = toOllamaTools(req.Tools)
		}

		index := 0
		err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				if !yield(Fragment{Text: resp.Message.Content}, nil) {
					return errStopStream
				}
			}
			for _, tc := range resp.Message.ToolCalls {
				args, err := json.Marshal(tc.Function.Arguments.ToMap())
				if err != nil {
					return fmt.Errorf("encode tool call args: %w", err)
				}
				id := tc.ID
				if id == "" {
					id = fmt.Sprintf("call_%d", index)
				}
				delta := &ToolCallDelta{Index: index, ID: id, Name: tc.Function.Name, Arguments: string(args)}
				index++
				if !yield(Fragment{ToolCall: delta}, nil) {
					return errStopStream
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopStream) {
			yield(Fragment{}, c.wrapOllamaError(err))
		}
	}
}

func toOllamaMessages(req *Request) []api.Message {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

func toOllamaTools(tools []Tool) []api.Tool {
	out := make([]api.Tool, 0, len(tools))
	for _, t := range tools {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Properties: api.NewToolPropertiesMap(),
		}
		if t.Schema != nil {
			if len(t.Schema.Required) > 0 {
				params.Required = t.Schema.Required
			}
			for name, propSchema := range t.Schema.Properties {
				prop := api.ToolProperty{Description: propSchema.Description}
				if propSchema.Type != "" {
					prop.Type = api.PropertyType{propSchema.Type}
				}
				if len(propSchema.Enum) > 0 {
					prop.Enum = append([]any(nil), propSchema.Enum...)
				}
				params.Properties.Set(name, prop)
			}
		}

		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

// wrapOllamaError adds a hint for the common local setup failures.
func (c *OllamaClient) wrapOllamaError(err error) error {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("model '%s' is not installed (run: ollama pull %s): %w", c.config.Model, c.config.Model, err)
	}
	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("Ollama server is not running (start it with: ollama serve): %w", err)
	}
	return fmt.Errorf("ollama chat failed: %w", err)
}
