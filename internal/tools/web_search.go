package tools

import (
	"context"
	"fmt"
)

func searchWeb(ctx context.Context, args map[string]any) (Result, error) {
	query := GetStringDefault(args, "query", "")
	maxResults := GetIntDefault(args, "max_results", 5)

	results := []map[string]any{
		{
			"title":   fmt.Sprintf("Search result 1 for '%s'", query),
			"url":     "https://example.com/result1",
			"snippet": fmt.Sprintf("This is a simulated search result for '%s'", query),
		},
		{
			"title":   fmt.Sprintf("Search result 2 for '%s'", query),
			"url":     "https://example.com/result2",
			"snippet": fmt.Sprintf("Another simulated result for '%s'", query),
		},
	}
	if maxResults < 0 {
		maxResults = 0
	}
	if maxResults < len(results) {
		results = results[:maxResults]
	}

	return NewSuccessResult(map[string]any{
		"results": results,
		"message": fmt.Sprintf("Found results for '%s'", query),
	}), nil
}
