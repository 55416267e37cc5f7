package tools

import (
	"context"
	"os"
)

func (d *Dispatcher) readFile(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", "")

	data, err := os.ReadFile(d.resolvePath(path))
	if err != nil {
		return nil, err
	}

	return NewSuccessResult(map[string]any{
		"content": string(data),
	}), nil
}
