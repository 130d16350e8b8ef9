package source

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/ikejs/ike/internal/manifest"
)

// VersionResolver classifies registry version requirements. It checks that
// a requirement is well-formed and whether it pins one exact version.
type VersionResolver struct{}

func (v *VersionResolver) Inspect(ctx context.Context, dep manifest.Dependency, manifestDir string) (*Inspection, error) {
	src, ok := dep.Source.(manifest.VersionSource)
	if !ok {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: fmt.Errorf("not a version source: %s", dep.Source)}
	}

	in := &Inspection{Name: dep.Name, Kind: manifest.KindVersion, Requirement: src.Version}
	if _, err := semver.StrictNewVersion(src.Version); err == nil {
		in.Exact = true
		return in, nil
	}
	if _, err := semver.NewConstraint(src.Version); err != nil {
		return nil, &SourceError{
			Source:    dep.Name,
			Operation: "inspect",
			Err:       fmt.Errorf("invalid version requirement '%s': %w", src.Version, err),
			Hint:      "use an exact version such as 1.2.3 or a range such as ^1.2",
		}
	}
	return in, nil
}
