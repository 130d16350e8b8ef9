// Package sandbox is the choke point for file access: it resolves paths to a
// canonical location, opens and reads files synchronously or on a worker pool,
// and keeps writes inside a project root.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikejs/ike/internal/fspath"
)

// ValidatePath checks if targetPath is safely within projectRoot.
// It resolves symlinks, normalizes paths, and verifies containment.
// targetPath is always taken relative to projectRoot.
// Returns the resolved absolute path or an error.
func ValidatePath(projectRoot, targetPath string) (string, error) {
	realRoot, err := fspath.Canonicalize(fspath.OS{}, projectRoot, "")
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}

	candidate := fspath.Normalize(filepath.Join(realRoot, targetPath))

	// The path may not exist yet, so resolve as much as we can.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator avoids prefix matching "projectroot2" for "projectroot".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the project root '%s'", targetPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := fspath.Canonicalize(fspath.OS{}, path, "")
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fspath.ErrNotFound) {
		return "", err
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		// Reached the root without finding anything.
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// SafeWrite atomically writes content to a path within the project root.
func SafeWrite(projectRoot, relPath string, content []byte, perm os.FileMode) error {
	resolved, err := ValidatePath(projectRoot, relPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(resolved)
	if err := mkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Temp file in the same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".ike-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return nil
}
