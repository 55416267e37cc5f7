package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runGit runs git with args inside dir and returns stdout.
// There is no timeout: the call blocks until git exits or ctx is cancelled.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(output), nil
}

func (d *Dispatcher) gitStatus(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", ".")

	out, err := runGit(ctx, d.resolvePath(path), "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	return NewSuccessResult(map[string]any{
		"status": out,
	}), nil
}
