package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"taskpilot/internal/fileutil"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func (d *Dispatcher) writeFile(ctx context.Context, args map[string]any) (Result, error) {
	path := GetStringDefault(args, "path", "")
	content := GetStringDefault(args, "content", "")
	target := d.resolvePath(path)

	previous, readErr := os.ReadFile(target)
	existed := readErr == nil
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		// Unreadable but maybe writable; report no diff.
		existed = false
	}

	if err := fileutil.WriteString(target, content, 0644); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"message": fmt.Sprintf("File written to %s", path),
		"created": !existed,
	}
	if existed {
		added, removed := lineChanges(string(previous), content)
		fields["lines_added"] = added
		fields["lines_removed"] = removed
	}
	return NewSuccessResult(fields), nil
}

// lineChanges counts inserted and deleted lines between two texts.
func lineChanges(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, diff := range diffs {
		n := strings.Count(diff.Text, "\n")
		if !strings.HasSuffix(diff.Text, "\n") && diff.Text != "" {
			n++
		}
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}
