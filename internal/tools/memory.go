package tools

import (
	"context"
	"fmt"
	"strings"
)

// fixtureTimestamp is the creation time reported for every fixture memory.
const fixtureTimestamp = "2024-01-01T00:00:00Z"

type fixtureMemory struct {
	id      int
	content string
	tags    []string
}

var fixtureMemories = []fixtureMemory{
	{1, "Demo memory content", []string{"demo", "test"}},
	{2, "Sprint 14 retrospective: shorten code review turnaround", []string{"retro", "process"}},
	{3, "Deployment checklist lives in the ops wiki", []string{"ops", "deploy"}},
}

func (m fixtureMemory) toMap() map[string]any {
	return map[string]any{
		"id":         m.id,
		"content":    m.content,
		"tags":       append([]string(nil), m.tags...),
		"created_at": fixtureTimestamp,
	}
}

func (m fixtureMemory) matches(query string) bool {
	if strings.Contains(strings.ToLower(m.content), query) {
		return true
	}
	for _, tag := range m.tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func createMemory(ctx context.Context, args map[string]any) (Result, error) {
	content := GetStringDefault(args, "content", "")
	tags := GetStringSlice(args, "tags")

	return NewSuccessResult(map[string]any{
		"memory":  fixtureMemory{id: 1, content: content, tags: tags}.toMap(),
		"message": "Memory created successfully",
	}), nil
}

func searchMemories(ctx context.Context, args map[string]any) (Result, error) {
	query := strings.ToLower(GetStringDefault(args, "query", ""))

	memories := []map[string]any{}
	for _, m := range fixtureMemories {
		if m.matches(query) {
			memories = append(memories, m.toMap())
		}
	}

	return NewSuccessResult(map[string]any{
		"memories": memories,
		"message":  fmt.Sprintf("Found %d memories", len(memories)),
	}), nil
}
