// Package filex has small filesystem helpers for the client's data files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir and any missing parents with owner-only access and
// returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// EnsureParentDir creates the directory that will hold file. In-memory
// SQLite names are left alone.
func EnsureParentDir(file string) error {
	if file == "" || file == ":memory:" {
		return nil
	}
	_, err := EnsureDir(filepath.Dir(file))
	return err
}
