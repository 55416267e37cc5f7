package tools

import (
	"context"
	"fmt"
)

func (d *Dispatcher) gitLog(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", ".")
	limit := GetIntDefault(args, "limit", 10)
	if limit < 1 {
		limit = 10
	}

	out, err := runGit(ctx, d.resolvePath(path), "log", fmt.Sprintf("--max-count=%d", limit), "--oneline")
	if err != nil {
		return nil, err
	}

	return NewSuccessResult(map[string]any{
		"log": out,
	}), nil
}
