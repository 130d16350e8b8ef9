package manifest

import (
	"errors"
	"maps"
	"slices"
)

// Names of the top-level dependency tables, as written in the manifest.
const (
	TableDependencies    = "dependencies"
	TableDevDependencies = "devDependencies"
)

// FeatureTable returns the table name used in errors for a feature's
// private dependency table.
func FeatureTable(feature string) string {
	return "features." + feature + ".dependencies"
}

// ValidateDependencies turns a permissive dependency table into canonical
// dependencies. Every broken entry is reported, in name order, as a
// *DependencyError inside a single *ValidationError.
func ValidateDependencies(table string, raw map[string]RawDependency) (map[string]Dependency, error) {
	deps := make(map[string]Dependency, len(raw))
	var errs []error

	for _, name := range slices.Sorted(maps.Keys(raw)) {
		src, err := validateSource(raw[name])
		if err != nil {
			errs = append(errs, &DependencyError{Table: table, Name: name, Err: err})
			continue
		}
		deps[name] = Dependency{
			Name:     name,
			Source:   src,
			Features: slices.Clone(raw[name].Features),
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return deps, nil
}

// validateSource applies the source-kind rules to one entry. branch and rev
// only mean something next to git and are ignored otherwise.
func validateSource(d RawDependency) (Source, error) {
	set := 0
	for _, f := range []*string{d.Version, d.Path, d.Git} {
		if f != nil {
			set++
		}
	}

	switch {
	case set == 0:
		return nil, ErrNoSource
	case d.Git != nil && d.Branch != nil && d.Rev != nil && d.Path != nil:
		return nil, ErrGitRefConflict
	case set > 1:
		return nil, ErrConflictingSources
	}

	switch {
	case d.Version != nil:
		return VersionSource{Version: *d.Version}, nil
	case d.Path != nil:
		return PathSource{Path: *d.Path}, nil
	default:
		return GitSource{URL: *d.Git, Branch: deref(d.Branch), Rev: deref(d.Rev)}, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ResolveFeatures validates every feature's dependency table. Files and
// depends_on are carried as written; their graph is checked by Activate.
func ResolveFeatures(raw map[string]RawFeature) (map[string]Feature, error) {
	features := make(map[string]Feature, len(raw))
	var errs []error

	for _, name := range slices.Sorted(maps.Keys(raw)) {
		rf := raw[name]
		deps, err := ValidateDependencies(FeatureTable(name), rf.Dependencies)
		if err != nil {
			errs = append(errs, flatten(err)...)
			continue
		}
		features[name] = Feature{
			Name:         name,
			Dependencies: deps,
			Files:        slices.Clone(rf.Files),
			DependsOn:    slices.Clone(rf.DependsOn),
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return features, nil
}

// Resolve validates the raw manifest into a Manifest located at path.
// Nothing is returned unless every table validates.
func (raw *RawManifest) Resolve(path string) (*Manifest, error) {
	var errs []error

	deps, err := ValidateDependencies(TableDependencies, raw.Dependencies)
	errs = append(errs, flatten(err)...)
	devDeps, err := ValidateDependencies(TableDevDependencies, raw.DevDependencies)
	errs = append(errs, flatten(err)...)
	features, err := ResolveFeatures(raw.Features)
	errs = append(errs, flatten(err)...)

	if len(errs) > 0 {
		return nil, &Error{Kind: KindSemantic, Path: path, Err: &ValidationError{Errors: errs}}
	}

	tasks := maps.Clone(raw.Tasks)
	if tasks == nil {
		tasks = map[string]string{}
	}

	return &Manifest{
		Package:         raw.Package,
		Dependencies:    deps,
		DevDependencies: devDeps,
		Tasks:           tasks,
		Features:        features,
		Path:            path,
	}, nil
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return []error{err}
}
