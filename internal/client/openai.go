package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"taskpilot/internal/logging"
)

// OpenAIConfig holds the settings for an OpenAI-compatible chat completions
// endpoint. With Azure set, BaseURL is the resource endpoint and requests
// go to the deployment.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Azure       bool
	Deployment  string
	APIVersion  string
	HTTPTimeout time.Duration
	Retry       RetryConfig
}

// OpenAIClient streams chat completions over server-sent events.
type OpenAIClient struct {
	config     OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a client for OpenAI or Azure OpenAI.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrNotConfigured)
	}
	if cfg.Azure && cfg.Deployment == "" {
		return nil, fmt.Errorf("%w: deployment is required", ErrNotConfigured)
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	if c.config.Azure {
		return "azure"
	}
	return "openai"
}

// Model returns the deployment on Azure, the model name otherwise.
func (c *OpenAIClient) Model() string {
	if c.config.Azure {
		return c.config.Deployment
	}
	return c.config.Model
}

func (c *OpenAIClient) endpoint() string {
	base := strings.TrimSuffix(c.config.BaseURL, "/")
	if c.config.Azure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, url.PathEscape(c.config.Deployment), url.QueryEscape(c.config.APIVersion))
	}
	return base + "/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) buildRequest(req *Request) chatRequest {
	body := chatRequest{
		Messages:    make([]chatMessage, 0, len(req.Messages)+1),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}
	if !c.config.Azure {
		body.Model = c.config.Model
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, chatTool{
			Type:     "function",
			Function: chatFunction{Name: t.Name, Description: t.Description, Parameters: t.Schema},
		})
	}
	if len(body.Tools) > 0 {
		body.ToolChoice = "auto"
	}
	return body
}

// Stream sends the request and yields fragments as SSE events arrive.
func (c *OpenAIClient) Stream(ctx context.Context, req *Request) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		payload, err := json.Marshal(c.buildRequest(req))
		if err != nil {
			yield(Fragment{}, fmt.Errorf("failed to marshal request: %w", err))
			return
		}

		resp, err := withRetry(ctx, c.config.Retry, func() (*http.Response, error) {
			return c.doRequest(ctx, payload)
		})
		if err != nil {
			yield(Fragment{}, err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			data, ok := sseData(scanner.Text())
			if !ok {
				continue
			}
			if data == "[DONE]" {
				return
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				logging.Warn("failed to parse SSE event", "error", err, "data", truncate(data, 100))
				continue
			}
			if chunk.Error != nil {
				yield(Fragment{}, fmt.Errorf("API error (%v): %s", chunk.Error.Code, chunk.Error.Message))
				return
			}

			// Azure sends content-filter chunks with no choices.
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					if !yield(Fragment{Text: choice.Delta.Content}, nil) {
						return
					}
				}
				for _, tc := range choice.Delta.ToolCalls {
					delta := &ToolCallDelta{
						Index:     tc.Index,
						ID:        tc.ID,
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					}
					if !yield(Fragment{ToolCall: delta}, nil) {
						return
					}
				}
			}
		}

		if err := scanner.Err(); err != nil {
			yield(Fragment{}, fmt.Errorf("stream read failed: %w", err))
		}
	}
}

func (c *OpenAIClient) doRequest(ctx context.Context, payload []byte) (*http.Response, error) {
	endpoint := c.endpoint()
	logging.Debug("chat completions request", "provider", c.Name(), "url", endpoint, "model", c.Model())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.config.Azure {
		req.Header.Set("api-key", c.config.APIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err != nil {
			body = []byte("(failed to read response body)")
		}
		resp.Body.Close()
		logging.Warn("chat completions API error", "status", resp.StatusCode, "body", truncate(string(body), 500))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return resp, nil
}

// sseData extracts the payload of a "data:" line.
func sseData(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
