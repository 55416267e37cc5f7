package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

func (d *Dispatcher) listDirectory(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", ".")
	pattern := GetStringDefault(args, "pattern", "")

	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return NewErrorResult(fmt.Sprintf("invalid pattern: %s", pattern)), nil
	}

	entries, err := os.ReadDir(d.resolvePath(path))
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, e.Name()); !ok {
				continue
			}
		}
		files = append(files, e.Name())
	}

	return NewSuccessResult(map[string]any{
		"files": files,
	}), nil
}
