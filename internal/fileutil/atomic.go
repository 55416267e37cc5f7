// Package fileutil holds file helpers shared by tools, commands and config.
package fileutil

import (
	"os"
	"path/filepath"
)

// WriteFile replaces path with data via a synced temp file and a rename in
// the same directory, so readers see either the old or the new content.
// Missing parent directories are created.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".taskpilot-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteString is WriteFile for string content.
func WriteString(path, content string, perm os.FileMode) error {
	return WriteFile(path, []byte(content), perm)
}
