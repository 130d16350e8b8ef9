package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ikejs/ike/internal/fspath"
	"github.com/ikejs/ike/internal/manifest"
)

// PathResolver inspects dependencies that live in a local directory. All
// reads go through the loader's accessor.
type PathResolver struct {
	// Loader reads the dependency's own manifest. Nil uses a default loader.
	Loader *manifest.Loader
}

func (p *PathResolver) Inspect(ctx context.Context, dep manifest.Dependency, manifestDir string) (*Inspection, error) {
	src, ok := dep.Source.(manifest.PathSource)
	if !ok {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: fmt.Errorf("not a path source: %s", dep.Source)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loader := p.Loader
	if loader == nil {
		loader = manifest.NewLoader()
	}

	dir, err := fspath.Canonicalize(fspath.OS{}, src.Path, manifestDir)
	if err != nil {
		hint := ""
		if errors.Is(err, fspath.ErrNotFound) {
			hint = "check that the path exists relative to " + manifestDir
		}
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err, Hint: hint}
	}

	f, err := loader.FileAccessor().Open(dir)
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err}
	}
	info, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err}
	}
	if !info.IsDir() {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: fmt.Errorf("'%s' is not a directory", src.Path)}
	}

	in := &Inspection{Name: dep.Name, Kind: manifest.KindPath, Dir: dir}

	resolved, data, err := loader.Read(filepath.Join(dir, manifest.FileName))
	if errors.Is(err, fspath.ErrNotFound) {
		return in, nil
	}
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err}
	}
	in.ManifestSHA256 = computeSHA256(data)

	nested, err := loader.Decode(resolved, data)
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: err, Hint: "the dependency's own manifest is invalid"}
	}
	in.Package = nested.Package.Name
	in.PackageVersion = nested.Package.Version
	return in, nil
}

func computeSHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
