// Package source inspects where a manifest's dependencies come from.
//
// Inspection is read-only: it reports what a source points at (a version
// requirement, a local package, a git ref) without fetching or solving
// anything.
package source

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ikejs/ike/internal/manifest"
)

// Resolver inspects one kind of dependency source.
type Resolver interface {
	// Inspect describes dep. Relative paths are taken from manifestDir.
	Inspect(ctx context.Context, dep manifest.Dependency, manifestDir string) (*Inspection, error)
}

// Inspection is what a Resolver learned about a dependency's source.
type Inspection struct {
	Name string
	Kind manifest.SourceKind

	// Version sources.
	Requirement string
	Exact       bool

	// Path sources.
	Dir            string // canonical directory
	Package        string // name from the nested manifest, if any
	PackageVersion string
	ManifestSHA256 string

	// Git sources.
	URL    string
	Ref    string // rev, branch or HEAD, in that order of preference
	Commit string // filled when the ref was looked up or is a full hash
}

// Summary is a one-line description for listings.
func (in *Inspection) Summary() string {
	switch in.Kind {
	case manifest.KindVersion:
		if in.Exact {
			return fmt.Sprintf("exactly %s", in.Requirement)
		}
		return fmt.Sprintf("range %s", in.Requirement)
	case manifest.KindPath:
		if in.Package == "" {
			return fmt.Sprintf("%s (no %s)", in.Dir, manifest.FileName)
		}
		return fmt.Sprintf("%s (%s %s)", in.Dir, in.Package, in.PackageVersion)
	case manifest.KindGit:
		s := fmt.Sprintf("%s @ %s", in.URL, in.Ref)
		if in.Commit != "" && in.Commit != in.Ref {
			s += " " + in.Commit
		}
		return s
	}
	return string(in.Kind)
}

// SourceError represents an error associated with a specific dependency.
type SourceError struct {
	Source    string
	Operation string
	Err       error
	Hint      string
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.Source, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Registry maps source kinds to Resolver implementations.
type Registry struct {
	resolvers map[manifest.SourceKind]Resolver
}

// NewRegistry creates a new empty resolver registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[manifest.SourceKind]Resolver)}
}

// DefaultRegistry registers the built-in resolvers. remote allows the git
// resolver to contact remotes.
func DefaultRegistry(loader *manifest.Loader, remote bool) *Registry {
	reg := NewRegistry()
	reg.Register(manifest.KindVersion, &VersionResolver{})
	reg.Register(manifest.KindPath, &PathResolver{Loader: loader})
	reg.Register(manifest.KindGit, &GitResolver{Remote: remote})
	return reg
}

// Register adds a resolver for the given source kind.
func (r *Registry) Register(kind manifest.SourceKind, resolver Resolver) {
	r.resolvers[kind] = resolver
}

// Get returns the resolver for the given source kind.
func (r *Registry) Get(kind manifest.SourceKind) (Resolver, error) {
	res, ok := r.resolvers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind '%s' (supported: %s)", kind, r.supportedKinds())
	}
	return res, nil
}

func (r *Registry) supportedKinds() string {
	kinds := make([]string, 0, len(r.resolvers))
	for k := range r.resolvers {
		kinds = append(kinds, string(k))
	}
	if len(kinds) == 0 {
		return "none registered"
	}
	slices.Sort(kinds)
	return strings.Join(kinds, ", ")
}

// Inspect runs the matching resolver for dep.
func (r *Registry) Inspect(ctx context.Context, dep manifest.Dependency, manifestDir string) (*Inspection, error) {
	res, err := r.Get(dep.Source.Kind())
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err}
	}
	return res.Inspect(ctx, dep, manifestDir)
}

// InspectAll inspects every dependency in name order. It stops at the first
// failure.
func (r *Registry) InspectAll(ctx context.Context, deps map[string]manifest.Dependency, manifestDir string) ([]*Inspection, error) {
	out := make([]*Inspection, 0, len(deps))
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, err := r.Inspect(ctx, deps[name], manifestDir)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
