package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a manifest failure.
type Kind int

const (
	// KindIO means the file could not be read.
	KindIO Kind = iota + 1
	// KindSyntax means the text is not a structurally valid manifest.
	KindSyntax
	// KindSemantic means the manifest is well-formed but breaks a domain rule.
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "i/o error"
	case KindSyntax:
		return "syntax error"
	case KindSemantic:
		return "invalid manifest"
	}
	return "unknown error"
}

var (
	ErrNoSource           = errors.New("must specify one of 'version', 'path' or 'git'")
	ErrConflictingSources = errors.New("has conflicting fields: 'version', 'path' and 'git' cannot be used together")
	ErrGitRefConflict     = errors.New("has conflicting fields: 'branch' cannot be combined with both 'rev' and 'path'")
	ErrUnknownFeature     = errors.New("undefined feature")
	ErrFeatureCycle       = errors.New("feature dependency cycle")
)

// Error is returned by every failing operation in this package.
type Error struct {
	Kind Kind
	Path string

	// Line and Column locate syntax errors; zero when unknown.
	Line   int
	Column int

	// Detail is a multi-line excerpt of the offending text, if available.
	Detail string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a manifest error, or zero for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	if len(msgs) == 1 {
		return msgs[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// DependencyError names the dependency and table a rule was broken in.
type DependencyError struct {
	Table string
	Name  string
	Err   error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency '%s' in [%s] %s", e.Name, e.Table, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// FeatureError reports a broken feature reference or a cycle.
type FeatureError struct {
	// Feature is the referring feature; empty when the name was selected directly.
	Feature string
	Name    string
	Cycle   []string
	Err     error
}

func (e *FeatureError) Error() string {
	switch {
	case len(e.Cycle) > 0:
		return fmt.Sprintf("%s: %s", e.Err, strings.Join(e.Cycle, " -> "))
	case e.Feature != "":
		return fmt.Sprintf("feature '%s' depends on %s '%s'", e.Feature, e.Err, e.Name)
	default:
		return fmt.Sprintf("%s '%s' selected", e.Err, e.Name)
	}
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}
