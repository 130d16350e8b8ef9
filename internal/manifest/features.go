package manifest

import (
	"errors"
	"maps"
	"slices"

	"github.com/ikejs/ike/internal/fspath"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Activate returns the transitive closure of selected over depends_on.
// Every feature appears once, after all the features it depends on; among
// independent features the selection order is kept. Unknown names and
// cycles are KindSemantic errors.
func Activate(features map[string]Feature, selected []string) ([]string, error) {
	state := make(map[string]visitState, len(features))
	var order []string
	var stack []string

	var visit func(from, name string) error
	visit = func(from, name string) error {
		f, ok := features[name]
		if !ok {
			return &FeatureError{Feature: from, Name: name, Err: ErrUnknownFeature}
		}

		switch state[name] {
		case visited:
			return nil
		case visiting:
			start := slices.Index(stack, name)
			cycle := append(slices.Clone(stack[start:]), name)
			return &FeatureError{Feature: from, Name: name, Cycle: cycle, Err: ErrFeatureCycle}
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range f.DependsOn {
			if err := visit(name, dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		order = append(order, name)
		return nil
	}

	for _, name := range selected {
		if err := visit("", name); err != nil {
			return nil, &Error{Kind: KindSemantic, Err: err}
		}
	}
	return order, nil
}

// Activate computes the activation closure for this manifest.
func (m *Manifest) Activate(selected ...string) ([]string, error) {
	order, err := Activate(m.Features, selected)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = m.Path
		}
		return nil, err
	}
	return order, nil
}

// ActiveFiles returns the absolute paths of the files contributed by the
// activation closure of selected, without duplicates, in activation order.
func (m *Manifest) ActiveFiles(selected ...string) ([]string, error) {
	order, err := m.Activate(selected...)
	if err != nil {
		return nil, err
	}

	dir := m.Dir()
	seen := make(map[string]bool)
	var files []string
	for _, name := range order {
		for _, f := range m.Features[name].Files {
			p := fspath.Resolve(dir, f)
			if seen[p] {
				continue
			}
			seen[p] = true
			files = append(files, p)
		}
	}
	return files, nil
}

// ActiveDependencies merges the base dependency table with those of every
// activated feature. A feature entry overrides a base entry of the same name.
func (m *Manifest) ActiveDependencies(selected ...string) (map[string]Dependency, error) {
	order, err := m.Activate(selected...)
	if err != nil {
		return nil, err
	}

	deps := maps.Clone(m.Dependencies)
	if deps == nil {
		deps = map[string]Dependency{}
	}
	for _, name := range order {
		for depName, d := range m.Features[name].Dependencies {
			deps[depName] = d
		}
	}
	return deps, nil
}
