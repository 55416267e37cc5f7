// Package client streams chat completions from the supported model providers.
package client

import (
	"context"
	"iter"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Tool is a function the model may call. Schema is the JSON Schema of its arguments.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Request is one model call.
type Request struct {
	System      string
	Messages    []Message
	Tools       []Tool
	Temperature float32
	MaxTokens   int32
}

// ToolCallDelta is a fragment of a tool call. Fragments sharing an Index belong
// to the same call; Arguments are concatenated in arrival order.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Fragment is one streamed piece of a response: text, a tool-call delta, or both.
type Fragment struct {
	Text     string
	ToolCall *ToolCallDelta
}

// ToolCall is a complete tool call. Arguments is the raw JSON text as sent by
// the model and may be malformed.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Response is the folded result of a stream.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Client is a streaming chat-completion backend.
type Client interface {
	// Name returns the provider name.
	Name() string
	// Model returns the model or deployment in use.
	Model() string
	// Stream starts the call lazily when the sequence is ranged over.
	// A non-nil error ends the sequence.
	Stream(ctx context.Context, req *Request) iter.Seq2[Fragment, error]
}

// Collect folds a fragment stream into a Response. On error the partial
// response is returned along with it.
func Collect(seq iter.Seq2[Fragment, error]) (*Response, error) {
	var text strings.Builder
	calls := make(map[int]*toolCallAccumulator)

	for frag, err := range seq {
		if err != nil {
			return buildResponse(&text, calls), err
		}
		text.WriteString(frag.Text)

		if d := frag.ToolCall; d != nil {
			acc, ok := calls[d.Index]
			if !ok {
				acc = &toolCallAccumulator{}
				calls[d.Index] = acc
			}
			acc.add(d)
		}
	}
	return buildResponse(&text, calls), nil
}

type toolCallAccumulator struct {
	id   string
	name string
	args strings.Builder
}

func (a *toolCallAccumulator) add(d *ToolCallDelta) {
	if a.id == "" {
		a.id = d.ID
	}
	if a.name == "" {
		a.name = d.Name
	}
	a.args.WriteString(d.Arguments)
}

func buildResponse(text *strings.Builder, calls map[int]*toolCallAccumulator) *Response {
	resp := &Response{Text: text.String()}

	indexes := make([]int, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		acc := calls[i]
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        acc.id,
			Name:      acc.name,
			Arguments: acc.args.String(),
		})
	}
	return resp
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
