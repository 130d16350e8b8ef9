package manifest

import (
	"fmt"
	"path/filepath"
)

// Package holds the [package] table.
type Package struct {
	Name        string      `toml:"name"`
	Version     string      `toml:"version"`
	Description string      `toml:"description"`
	Files       []string    `toml:"files"`
	Main        string      `toml:"main"`
	Types       string      `toml:"types"`
	Repository  *Repository `toml:"repository"`
}

// Repository points at the package's source repository.
type Repository struct {
	Type string `toml:"type"`
	URL  string `toml:"url"`
}

// SourceKind names where a dependency comes from.
type SourceKind string

const (
	KindVersion SourceKind = "version"
	KindPath    SourceKind = "path"
	KindGit     SourceKind = "git"
)

// Source is the validated origin of a dependency. Exactly one of
// VersionSource, PathSource or GitSource.
type Source interface {
	Kind() SourceKind
	String() string
	isSource()
}

// VersionSource is a registry version requirement, kept verbatim.
type VersionSource struct {
	Version string
}

// PathSource is a local directory, relative to the manifest's directory
// unless absolute.
type PathSource struct {
	Path string
}

// GitSource is a git repository, optionally pinned to a branch and/or revision.
type GitSource struct {
	URL    string
	Branch string
	Rev    string
}

func (VersionSource) Kind() SourceKind { return KindVersion }
func (PathSource) Kind() SourceKind    { return KindPath }
func (GitSource) Kind() SourceKind     { return KindGit }

func (s VersionSource) String() string { return s.Version }
func (s PathSource) String() string    { return "path:" + s.Path }

func (s GitSource) String() string {
	out := "git:" + s.URL
	if s.Branch != "" {
		out += fmt.Sprintf(" (branch %s)", s.Branch)
	}
	if s.Rev != "" {
		out += fmt.Sprintf(" (rev %s)", s.Rev)
	}
	return out
}

func (VersionSource) isSource() {}
func (PathSource) isSource()    {}
func (GitSource) isSource()     {}

// Dependency is one validated entry of a dependency table.
type Dependency struct {
	Name     string
	Source   Source
	Features []string // features to enable on the dependency
}

// Feature is a named, optionally activated bundle of dependencies and files.
type Feature struct {
	Name         string
	Dependencies map[string]Dependency
	Files        []string // relative to the manifest directory
	DependsOn    []string // unresolved; see Activate
}

// Manifest is a fully validated ike.toml. Values are built once by Load and
// must be treated as read-only.
type Manifest struct {
	Package         Package
	Dependencies    map[string]Dependency
	DevDependencies map[string]Dependency
	Tasks           map[string]string
	Features        map[string]Feature

	// Path is the resolved location of the manifest file, as opened by the
	// sandbox accessor.
	Path string
}

// Dir returns the directory containing the manifest. Relative dependency
// paths and feature files are interpreted against it.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// RawManifest is the permissive form decoded from TOML before validation.
type RawManifest struct {
	Package         Package                  `toml:"package"`
	Dependencies    map[string]RawDependency `toml:"dependencies"`
	DevDependencies map[string]RawDependency `toml:"devDependencies"`
	Tasks           map[string]string        `toml:"tasks"`
	Features        map[string]RawFeature    `toml:"features"`

	// UnknownKeys lists keys present in the file that nothing reads.
	UnknownKeys []string `toml:"-"`
}

// RawDependency is a dependency entry in either of its written forms; a bare
// string decodes as {version = "..."}. A nil field was not written.
type RawDependency struct {
	Version  *string  `toml:"version"`
	Path     *string  `toml:"path"`
	Git      *string  `toml:"git"`
	Branch   *string  `toml:"branch"`
	Rev      *string  `toml:"rev"`
	Features []string `toml:"features"`
}

// RawFeature is a feature definition before validation.
type RawFeature struct {
	Dependencies map[string]RawDependency `toml:"dependencies"`
	Files        []string                 `toml:"files"`
	DependsOn    []string                 `toml:"depends_on"`
}
