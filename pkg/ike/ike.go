// Package ike is the public Go API for reading ike projects.
//
// It loads and validates ike.toml manifests, computes feature activation,
// inspects dependency sources, reads files through the canonicalizing file
// accessor and runs manifest tasks.
//
// # Basic Usage
//
//	client := ike.New(ike.Options{})
//
//	m, err := client.LoadNearest(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Files added by the "web" feature and everything it depends on.
//	files, err := m.ActiveFiles("web")
//
//	// Read a file without blocking the caller.
//	data, err := client.ReadFileAsync(files[0]).Await(ctx)
package ike

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/sandbox"
	"github.com/ikejs/ike/internal/source"
	"github.com/ikejs/ike/internal/structured"
	"github.com/ikejs/ike/internal/task"
)

// Options configures a Client.
type Options struct {
	// Workers bounds concurrent asynchronous reads. Zero uses the default.
	Workers int

	// Remote lets Inspect contact git remotes.
	Remote bool

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// RunOptions configures RunTask.
type RunOptions struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // nil inherits the process environment
}

// Client is the main entry point for the ike library. It is safe for
// concurrent use; every Load builds an independent Manifest.
type Client struct {
	accessor *sandbox.Accessor
	loader   *manifest.Loader
	registry *source.Registry
	logger   *log.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = sandbox.DefaultWorkers
	}

	acc := sandbox.New(sandbox.WithPool(sandbox.NewPool(workers)), sandbox.WithLogger(logger))
	loader := &manifest.Loader{Accessor: acc, Logger: logger}

	return &Client{
		accessor: acc,
		loader:   loader,
		registry: source.DefaultRegistry(loader, opts.Remote),
		logger:   logger,
	}
}

// Load reads and validates the manifest at path.
func (c *Client) Load(path string) (*Manifest, error) {
	return c.loader.Load(path)
}

// LoadNearest loads the nearest manifest at or above start.
func (c *Client) LoadNearest(start string) (*Manifest, error) {
	return c.loader.LoadNearest(start)
}

// Parent loads the nearest manifest above m's directory, or nil if none.
func (c *Client) Parent(m *Manifest) (*Manifest, error) {
	return c.loader.Parent(m)
}

// Locate returns the nearest directory at or above start holding a manifest.
func Locate(start string) (string, error) {
	return manifest.Locate(start)
}

// Inspect describes the source of every dependency active under features,
// in name order.
func (c *Client) Inspect(ctx context.Context, m *Manifest, features ...string) ([]*Inspection, error) {
	deps, err := m.ActiveDependencies(features...)
	if err != nil {
		return nil, err
	}
	return c.registry.InspectAll(ctx, deps, m.Dir())
}

// Resolve returns the canonical path the client would open for path.
func (c *Client) Resolve(path string) (string, error) {
	return c.accessor.Resolve(path)
}

// ReadFile reads a whole file on the calling goroutine.
func (c *Client) ReadFile(path string) ([]byte, error) {
	return c.accessor.ReadFile(path)
}

// ReadFileAsync reads a whole file on the client's worker pool.
func (c *Client) ReadFileAsync(path string) *Future {
	return c.accessor.ReadFileAsync(path)
}

// MkdirAll creates a directory and its parents; an existing directory is
// not an error.
func (c *Client) MkdirAll(path string) error {
	return c.accessor.MkdirAll(path)
}

// RunTask runs one of m's tasks in its directory.
func (c *Client) RunTask(ctx context.Context, m *Manifest, name string, opts RunOptions) error {
	r := &task.Runner{
		Manifest: m,
		Stdin:    opts.Stdin,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
		Env:      opts.Env,
		Logger:   c.logger,
	}
	return r.Run(ctx, name, opts.Args...)
}

// ReadStructured decodes a TOML, YAML or JSON file into a T, chosen by
// extension. A missing file yields ErrFileNotFound; a malformed one a
// *DecodeError.
func ReadStructured[T any](c *Client, path string) (T, error) {
	return structured.ReadWith[T](c.accessor, path)
}
