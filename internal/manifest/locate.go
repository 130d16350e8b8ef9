package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ikejs/ike/internal/fspath"
)

// FileName is the fixed manifest filename.
const FileName = "ike.toml"

// ErrNotFound is returned by Locate when no ancestor holds a manifest.
var ErrNotFound = errors.New("no " + FileName + " found")

// Locate walks from start up to the filesystem root and returns the first
// directory containing a manifest file. start itself is checked first.
func Locate(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving start directory %s: %w", start, err)
	}
	dir := fspath.Normalize(abs)

	for {
		if isFile(filepath.Join(dir, FileName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, abs)
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
