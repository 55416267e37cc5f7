// Package tools holds the tool catalog advertised to the model and the
// dispatcher that executes provider operations.
package tools

import (
	"context"
	"fmt"
)

// Handler executes one provider operation. A returned error is converted into
// a {success:false, error} result at the dispatch boundary.
type Handler func(ctx context.Context, args map[string]any) (Result, error)

// Result is the object returned for every dispatched operation. It always
// carries a "success" key.
type Result map[string]any

// NewSuccessResult creates a successful result carrying fields.
func NewSuccessResult(fields map[string]any) Result {
	r := Result{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// NewErrorResult creates a failed result with an error message.
func NewErrorResult(errMsg string) Result {
	return Result{"success": false, "error": errMsg}
}

// NewNotFoundResult is the result for an unknown (provider, operation) pair.
func NewNotFoundResult(provider, operation string) Result {
	return Result{
		"success": false,
		"message": fmt.Sprintf("Tool '%s' not found in server '%s'", operation, provider),
	}
}

// Success reports the "success" flag.
func (r Result) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}

// ErrorText returns the error message, if any.
func (r Result) ErrorText() string {
	s, _ := r["error"].(string)
	return s
}

// Message returns the human-readable message, if any.
func (r Result) Message() string {
	s, _ := r["message"].(string)
	return s
}

// Summary returns the most useful one-line description of the result.
func (r Result) Summary() string {
	if msg := r.Message(); msg != "" {
		return msg
	}
	if errMsg := r.ErrorText(); errMsg != "" {
		return errMsg
	}
	if r.Success() {
		return "ok"
	}
	return "failed"
}

// GetString extracts a string argument from the args map.
func GetString(args map[string]any, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// GetStringDefault extracts a string argument with a default value.
// Empty strings count as missing.
func GetStringDefault(args map[string]any, key, defaultVal string) string {
	if val, ok := GetString(args, key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetInt extracts an integer argument from the args map.
func GetInt(args map[string]any, key string) (int, bool) {
	val, ok := args[key]
	if !ok {
		return 0, false
	}
	// JSON decoding yields float64
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// GetIntDefault extracts an integer argument with a default value.
func GetIntDefault(args map[string]any, key string, defaultVal int) int {
	if val, ok := GetInt(args, key); ok {
		return val
	}
	return defaultVal
}

// GetStringSlice extracts a list of strings. Non-string elements are skipped.
func GetStringSlice(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
