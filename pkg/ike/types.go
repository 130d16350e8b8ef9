package ike

import (
	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/sandbox"
	"github.com/ikejs/ike/internal/source"
	"github.com/ikejs/ike/internal/structured"
)

// Type aliases re-export the internal model as the public API.
// Users import "github.com/ikejs/ike/pkg/ike" and use ike.Manifest,
// ike.Dependency, etc.

type Manifest = manifest.Manifest
type Package = manifest.Package
type Repository = manifest.Repository
type Dependency = manifest.Dependency
type Feature = manifest.Feature
type Source = manifest.Source
type SourceKind = manifest.SourceKind
type VersionSource = manifest.VersionSource
type PathSource = manifest.PathSource
type GitSource = manifest.GitSource
type Error = manifest.Error
type ErrorKind = manifest.Kind
type ValidationError = manifest.ValidationError
type DependencyError = manifest.DependencyError
type FeatureError = manifest.FeatureError
type Inspection = source.Inspection
type Future = sandbox.Future
type DecodeError = structured.DecodeError

const (
	KindIO       = manifest.KindIO
	KindSyntax   = manifest.KindSyntax
	KindSemantic = manifest.KindSemantic

	SourceVersion = manifest.KindVersion
	SourcePath    = manifest.KindPath
	SourceGit     = manifest.KindGit
)

// ManifestFileName is the name of the project manifest.
const ManifestFileName = manifest.FileName

var (
	ErrManifestNotFound   = manifest.ErrNotFound
	ErrFileNotFound       = structured.ErrNotFound
	ErrNoSource           = manifest.ErrNoSource
	ErrConflictingSources = manifest.ErrConflictingSources
	ErrGitRefConflict     = manifest.ErrGitRefConflict
	ErrUnknownFeature     = manifest.ErrUnknownFeature
	ErrFeatureCycle       = manifest.ErrFeatureCycle
)

// KindOf returns the ErrorKind of err, or zero if err is not a manifest error.
func KindOf(err error) ErrorKind {
	return manifest.KindOf(err)
}
