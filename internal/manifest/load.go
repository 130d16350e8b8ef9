// Package manifest finds, parses and validates ike.toml project manifests.
//
// Loading is all-or-nothing: a *Manifest is returned only when the file was
// read, parsed and every dependency and feature table validated. I/O and
// syntax failures stop at the first problem; semantic problems are collected
// and reported together.
package manifest

import (
	"errors"
	"io"
	"path/filepath"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/ikejs/ike/internal/sandbox"
)

// Loader reads manifests through a sandbox accessor.
type Loader struct {
	Accessor *sandbox.Accessor
	Logger   *log.Logger
}

// NewLoader returns a Loader with a default accessor and a discarding logger.
func NewLoader() *Loader {
	return &Loader{}
}

// FileAccessor returns the accessor the loader reads through, creating a
// default one if none was set.
func (l *Loader) FileAccessor() *sandbox.Accessor {
	return l.accessor()
}

func (l *Loader) accessor() *sandbox.Accessor {
	if l.Accessor == nil {
		l.Accessor = sandbox.New(sandbox.WithLogger(l.logger()))
	}
	return l.Accessor
}

func (l *Loader) logger() *log.Logger {
	if l.Logger == nil {
		l.Logger = log.New(io.Discard)
	}
	return l.Logger
}

// Load reads and validates the manifest file at path.
func (l *Loader) Load(path string) (*Manifest, error) {
	resolved, data, err := l.Read(path)
	if err != nil {
		return nil, err
	}
	return l.Decode(resolved, data)
}

// Read returns the resolved path and text of the manifest file at path.
// Every failure, including text that is not UTF-8, is a KindIO *Error.
func (l *Loader) Read(path string) (string, []byte, error) {
	f, err := l.accessor().Open(path)
	if err != nil {
		return "", nil, &Error{Kind: KindIO, Path: path, Err: err}
	}
	resolved := f.Name()

	data, err := f.ReadAll()
	if err != nil {
		return "", nil, &Error{Kind: KindIO, Path: resolved, Err: err}
	}
	if !utf8.Valid(data) {
		return "", nil, &Error{Kind: KindIO, Path: resolved, Err: errors.New("file is not valid UTF-8 text")}
	}
	return resolved, data, nil
}

// Decode parses and validates manifest text read from path.
func (l *Loader) Decode(path string, data []byte) (*Manifest, error) {
	raw, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	for _, key := range raw.UnknownKeys {
		l.logger().Warn("unknown manifest key", "key", key, "path", path)
	}

	m, err := raw.Resolve(path)
	if err != nil {
		return nil, err
	}
	l.logger().Debug("loaded manifest", "package", m.Package.Name, "path", path)
	return m, nil
}

// LoadNearest locates the nearest manifest at or above start and loads it.
// errors.Is(err, ErrNotFound) reports that none exists.
func (l *Loader) LoadNearest(start string) (*Manifest, error) {
	dir, err := Locate(start)
	if err != nil {
		return nil, err
	}
	return l.Load(filepath.Join(dir, FileName))
}

// Parent loads the nearest manifest strictly above m's directory, such as
// the workspace a nested package lives in. It returns (nil, nil) when there
// is none.
func (l *Loader) Parent(m *Manifest) (*Manifest, error) {
	dir := m.Dir()
	above := filepath.Dir(dir)
	if above == dir {
		return nil, nil
	}

	p, err := l.LoadNearest(above)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Load reads the manifest at path with a default Loader.
func Load(path string) (*Manifest, error) {
	return NewLoader().Load(path)
}

// LoadNearest loads the nearest manifest at or above start with a default Loader.
func LoadNearest(start string) (*Manifest, error) {
	return NewLoader().LoadNearest(start)
}
