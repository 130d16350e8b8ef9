// Package fspath turns user supplied paths into one unambiguous absolute form.
//
// Two layers are provided. Normalize and Resolve are purely lexical and never
// touch the filesystem, so they work for paths whose final component does not
// exist yet. Canonicalize asks the operating system to resolve symlinks and
// reports a not-found failure separately from every other I/O failure.
package fspath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// extendedPrefix is the Windows long-path marker some canonicalization calls
// prepend. It is stripped so string prefix comparisons stay stable.
const extendedPrefix = `\\?\`

var (
	// ErrNotFound is matched by errors.Is when the path does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrIO is matched by errors.Is for every canonicalization failure,
	// including not-found.
	ErrIO = errors.New("i/o failure")
)

// Error describes a failed path operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.NotFound() {
		return fmt.Sprintf("%s %s: file not found", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrIO for every Error and ErrNotFound only for missing paths.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return true
	case ErrNotFound:
		return e.NotFound()
	}
	return false
}

// NotFound reports whether the failure was caused by a missing path.
func (e *Error) NotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// Canonicalizer resolves a path to its absolute, symlink-free form.
// Implementations isolate every platform specific quirk.
type Canonicalizer interface {
	Canonicalize(path string) (string, error)
}

// OS canonicalizes through the host operating system.
type OS struct{}

// Canonicalize makes path absolute and resolves all symlinks in it.
func (OS) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &Error{Op: "canonicalize", Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &Error{Op: "canonicalize", Path: path, Err: unwrapPathError(err)}
	}
	return resolved, nil
}

// unwrapPathError drops the *fs.PathError layer so the message is not
// repeated, keeping the errno so fs.ErrNotExist still matches.
func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// Canonicalize joins a relative path onto root, resolves it with c and strips
// the extended-length prefix from the result. An empty root means the current
// working directory.
func Canonicalize(c Canonicalizer, path, root string) (string, error) {
	if !filepath.IsAbs(path) {
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", &Error{Op: "getwd", Path: path, Err: err}
			}
			root = wd
		}
		path = filepath.Join(root, path)
	}

	resolved, err := c.Canonicalize(path)
	if err != nil {
		var pathErr *Error
		if errors.As(err, &pathErr) {
			return "", err
		}
		return "", &Error{Op: "canonicalize", Path: path, Err: err}
	}
	return StripExtendedPrefix(resolved), nil
}

// StripExtendedPrefix removes a leading `\\?\` marker.
func StripExtendedPrefix(path string) string {
	return strings.TrimPrefix(path, extendedPrefix)
}

// Normalize resolves "." and ".." segments lexically. A leading volume name
// and root separator are preserved; ".." never climbs above the root and is
// dropped when nothing precedes it.
func Normalize(path string) string {
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]
	rooted := len(rest) > 0 && os.IsPathSeparator(rest[0])

	var parts []string
	for _, seg := range strings.FieldsFunc(rest, isSeparator) {
		switch seg {
		case ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}

	var b strings.Builder
	b.WriteString(vol)
	if rooted {
		b.WriteByte(filepath.Separator)
	}
	b.WriteString(strings.Join(parts, string(filepath.Separator)))

	if b.Len() == 0 {
		return "."
	}
	return b.String()
}

// Resolve joins a relative path onto root and normalizes the result.
// Absolute paths ignore root.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) || filepath.VolumeName(path) != "" {
		return Normalize(path)
	}
	return Normalize(root + string(filepath.Separator) + path)
}

func isSeparator(r rune) bool {
	return r < 0x80 && os.IsPathSeparator(uint8(r))
}
