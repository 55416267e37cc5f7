package tools

import (
	"context"
	"strings"
)

func (d *Dispatcher) gitBranch(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", ".")

	out, err := runGit(ctx, d.resolvePath(path), "branch", "--no-color")
	if err != nil {
		return nil, err
	}

	var branches []string
	current := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, "* "))
		if strings.HasPrefix(line, "* ") {
			current = name
		}
		branches = append(branches, name)
	}

	return NewSuccessResult(map[string]any{
		"branches": branches,
		"current":  current,
	}), nil
}
