// Package task runs the shell commands declared in a manifest's [tasks]
// table. Commands are interpreted in-process with a POSIX shell
// implementation so they behave the same on every platform.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ikejs/ike/internal/manifest"
)

// ErrUnknownTask is returned when the manifest does not declare the task.
var ErrUnknownTask = errors.New("unknown task")

// ExitError reports a task that ran and exited non-zero.
type ExitError struct {
	Task string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("task '%s' exited with status %d", e.Task, e.Code)
}

// Runner executes manifest tasks in the manifest's directory.
type Runner struct {
	Manifest *manifest.Manifest

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is the base environment; nil means the current process environment.
	Env []string

	Logger *log.Logger
}

// Names returns the declared task names in sorted order.
func Names(m *manifest.Manifest) []string {
	return slices.Sorted(maps.Keys(m.Tasks))
}

// Environ returns the variables exported to every task of m.
func Environ(m *manifest.Manifest) []string {
	return []string{
		"IKE_PACKAGE_NAME=" + m.Package.Name,
		"IKE_PACKAGE_VERSION=" + m.Package.Version,
		"IKE_MANIFEST_DIR=" + m.Dir(),
	}
}

// Run executes the named task with args as its positional parameters.
// A non-zero exit is reported as *ExitError.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	script, ok := r.Manifest.Tasks[name]
	if !ok {
		return fmt.Errorf("%w '%s' (available: %s)", ErrUnknownTask, name, strings.Join(Names(r.Manifest), ", "))
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return fmt.Errorf("parsing task '%s': %w", name, err)
	}

	env := r.Env
	if env == nil {
		env = os.Environ()
	}
	env = append(slices.Clone(env), Environ(r.Manifest)...)

	opts := []interp.RunnerOption{
		interp.Dir(r.Manifest.Dir()),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
	}
	// "--" keeps args such as "-v" from being read as shell options.
	if len(args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	if r.Logger != nil {
		r.Logger.Debug("running task", "task", name, "dir", r.Manifest.Dir(), "command", script)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Task: name, Code: int(status)}
		}
		return fmt.Errorf("running task '%s': %w", name, err)
	}
	return nil
}
