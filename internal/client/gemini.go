package client

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"

	"taskpilot/internal/logging"
)

// GeminiClient streams from the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string { return "gemini" }

// Model returns the model name.
func (c *GeminiClient) Model() string { return c.model }

// Stream yields text parts and whole function calls as they arrive.
func (c *GeminiClient) Stream(ctx context.Context, req *Request) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		contents := make([]*genai.Content, 0, len(req.Messages))
		for _, m := range req.Messages {
			role := genai.Role(genai.RoleUser)
			if m.Role == RoleAssistant {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(m.Content, role))
		}

		cfg := &genai.GenerateContentConfig{
			Temperature:     Ptr(req.Temperature),
			MaxOutputTokens: req.MaxTokens,
		}
		if req.System != "" {
			cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
		}
		if decls := functionDeclarations(req.Tools); len(decls) > 0 {
			cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		}

		logging.Debug("gemini request", "model", c.model, "contents", len(contents))

		index := 0
		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, cfg) {
			if err != nil {
				yield(Fragment{}, fmt.Errorf("gemini stream failed: %w", err))
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}

			for _, part := range resp.Candidates[0].Content.Parts {
				switch {
				case part.FunctionCall != nil:
					args, err := json.Marshal(part.FunctionCall.Args)
					if err != nil {
						yield(Fragment{}, fmt.Errorf("encode function call args: %w", err))
						return
					}
					delta := &ToolCallDelta{
						Index:     index,
						ID:        part.FunctionCall.ID,
						Name:      part.FunctionCall.Name,
						Arguments: string(args),
					}
					index++
					if !yield(Fragment{ToolCall: delta}, nil) {
						return
					}
				case part.Text != "" && !part.Thought:
					if !yield(Fragment{Text: part.Text}, nil) {
						return
					}
				}
			}
		}
	}
}

func functionDeclarations(tools []Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGeminiSchema(t.Schema),
		})
	}
	return decls
}

// toGeminiSchema converts a JSON Schema to a Gemini Schema.
func toGeminiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	schema := &genai.Schema{Description: s.Description}

	switch s.Type {
	case "string":
		schema.Type = genai.TypeString
		for _, v := range s.Enum {
			schema.Enum = append(schema.Enum, fmt.Sprint(v))
		}
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		schema.Items = toGeminiSchema(s.Items)
	case "object":
		schema.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, prop := range s.Properties {
				schema.Properties[name] = toGeminiSchema(prop)
			}
		}
		schema.Required = s.Required
	default:
		// Unknown types degrade to string
		schema.Type = genai.TypeString
	}

	return schema
}
