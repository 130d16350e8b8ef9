package sandbox

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ikejs/ike/internal/fspath"
)

// Accessor is the single place files are opened and read. It resolves every
// path to one canonical location first so the same file is never reached
// under two different names.
type Accessor struct {
	canon    fspath.Canonicalizer
	platform Platform
	pool     *Pool
	getwd    func() (string, error)
	logger   *log.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithCanonicalizer replaces the OS canonicalizer.
func WithCanonicalizer(c fspath.Canonicalizer) Option {
	return func(a *Accessor) { a.canon = c }
}

// WithPlatform overrides the host platform description.
func WithPlatform(p Platform) Option {
	return func(a *Accessor) { a.platform = p }
}

// WithPool sets the worker pool used for asynchronous reads.
func WithPool(p *Pool) Option {
	return func(a *Accessor) { a.pool = p }
}

// WithWorkingDir sets the directory relative paths are resolved against.
func WithWorkingDir(dir string) Option {
	return func(a *Accessor) {
		a.getwd = func() (string, error) { return dir, nil }
	}
}

// WithLogger sets the logger for resolution diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(a *Accessor) { a.logger = l }
}

// New creates an Accessor for the host platform.
func New(opts ...Option) *Accessor {
	a := &Accessor{
		canon:    fspath.OS{},
		platform: HostPlatform(),
		getwd:    os.Getwd,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pool == nil {
		a.pool = NewPool(DefaultWorkers)
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	return a
}

// Resolve returns the path that Open would hand to the operating system.
// A path whose leaf does not exist yet resolves through its parent directory.
func (a *Accessor) Resolve(path string) (string, error) {
	if a.platform.IsDevicePath(path) {
		return path, nil
	}

	var normalized string
	if filepath.IsAbs(path) {
		normalized = fspath.Normalize(path)
	} else {
		wd, err := a.getwd()
		if err != nil {
			return "", &fspath.Error{Op: "getwd", Path: path, Err: err}
		}
		normalized = fspath.Resolve(wd, path)
	}

	if !a.platform.NeedsCanonicalization(normalized) {
		return normalized, nil
	}

	resolved, err := fspath.Canonicalize(a.canon, normalized, "")
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fspath.ErrNotFound) {
		return "", err
	}

	parent, leaf := filepath.Dir(normalized), filepath.Base(normalized)
	if parent == normalized {
		return "", err
	}
	resolvedParent, parentErr := fspath.Canonicalize(a.canon, parent, "")
	if parentErr != nil {
		return "", err
	}

	a.logger.Debug("leaf missing, resolved through parent", "path", normalized, "parent", resolvedParent)
	return filepath.Join(resolvedParent, leaf), nil
}

// Open resolves path and opens it for reading.
func (a *Accessor) Open(path string) (*File, error) {
	resolved, err := a.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, &fspath.Error{Op: "open", Path: resolved, Err: unwrapOSError(err)}
	}
	return &File{f: f, path: resolved, pool: a.pool}, nil
}

// ReadFile reads the whole file on the calling goroutine.
func (a *Accessor) ReadFile(path string) ([]byte, error) {
	f, err := a.Open(path)
	if err != nil {
		return nil, err
	}
	return f.ReadAll()
}

// ReadFileAsync opens path and dispatches the read to the worker pool.
// Open failures are reported through the returned Future.
func (a *Accessor) ReadFileAsync(path string) *Future {
	f, err := a.Open(path)
	if err != nil {
		return completed(nil, err)
	}
	return f.ReadAllAsync()
}

// Mkdir creates a single directory. An existing directory is an error.
func (a *Accessor) Mkdir(path string) error {
	if err := os.Mkdir(path, 0755); err != nil {
		return &fspath.Error{Op: "mkdir", Path: path, Err: unwrapOSError(err)}
	}
	return nil
}

// MkdirAll creates path and any missing parents. A directory that already
// exists, including one created concurrently by another caller, is success.
func (a *Accessor) MkdirAll(path string) error {
	return mkdirAll(path, 0755)
}

func mkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return &fspath.Error{Op: "mkdir", Path: path, Err: unwrapOSError(err)}
}

// File is an open, canonically resolved file.
type File struct {
	f    *os.File
	path string
	pool *Pool
}

// Name returns the resolved path the file was opened at.
func (f *File) Name() string {
	return f.path
}

// Stat describes the open file.
func (f *File) Stat() (fs.FileInfo, error) {
	info, err := f.f.Stat()
	if err != nil {
		return nil, &fspath.Error{Op: "stat", Path: f.path, Err: unwrapOSError(err)}
	}
	return info, nil
}

// Close releases the file handle.
func (f *File) Close() error {
	return f.f.Close()
}

// ReadAll reads the remaining content and closes the file.
func (f *File) ReadAll() ([]byte, error) {
	defer func() { _ = f.f.Close() }()

	data, err := io.ReadAll(f.f)
	if err != nil {
		return nil, &fspath.Error{Op: "read", Path: f.path, Err: unwrapOSError(err)}
	}
	return data, nil
}

// ReadAllAsync hands the read to the worker pool. The file is closed once the
// read finishes and must not be used afterwards.
func (f *File) ReadAllAsync() *Future {
	return f.pool.Submit(f.ReadAll)
}

func unwrapOSError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
