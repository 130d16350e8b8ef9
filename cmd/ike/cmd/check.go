package cmd

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/sandbox"
	"github.com/ikejs/ike/internal/source"
)

var checkFeatures []string

// checkedFile is one file referenced by the manifest.
type checkedFile struct {
	Rel    string // as written in the manifest
	Origin string // which manifest field referenced it
	Size   int64
	Err    error
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the manifest and every file it references",
	Long: `Loads ike.toml, computes the activation closure of the selected features
(all features by default) and reads every referenced file: package main and types,
files matched by package files, and the files of each active feature.
Path and version dependencies are inspected offline.

Exit 0 if everything is valid; exit non-zero otherwise. Suitable for CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		selected := checkFeatures
		if len(selected) == 0 {
			selected = slices.Sorted(maps.Keys(m.Features))
		}
		order, err := m.Activate(selected...)
		if err != nil {
			return err
		}

		files, err := referencedFiles(m, order)
		if err != nil {
			return err
		}
		readAll(commandContext(cmd), fileAccessor(), m.Dir(), files)

		problems := 0
		var total int64
		for _, f := range files {
			if f.Err != nil {
				problems++
				info("  missing   %s (%s): %v", f.Rel, f.Origin, f.Err)
				continue
			}
			total += f.Size
			detail("ok %s (%s)", f.Rel, humanSize(f.Size))
		}

		reg := source.DefaultRegistry(newLoader(), false)
		deps, err := m.ActiveDependencies(order...)
		if err != nil {
			return err
		}
		maps.Copy(deps, m.DevDependencies)
		inspections, err := reg.InspectAll(commandContext(cmd), deps, m.Dir())
		if err != nil {
			problems++
			info("  invalid   %v", err)
		}
		for _, in := range inspections {
			detail("dep %s: %s", in.Name, in.Summary())
		}

		if problems > 0 {
			return fmt.Errorf("check failed: %d problem(s) in %s", problems, m.Path)
		}
		info("%s is valid: %d file(s), %s, %d dependencies, %d active feature(s).",
			manifest.FileName, len(files), humanSize(total), len(deps), len(order))
		return nil
	},
}

// referencedFiles lists the files named by the package table and the active
// features. Package file patterns must match at least one file.
func referencedFiles(m *manifest.Manifest, order []string) ([]*checkedFile, error) {
	var files []*checkedFile
	seen := make(map[string]bool)
	add := func(rel, origin string) {
		key := filepath.Clean(rel)
		if rel == "" || seen[key] {
			return
		}
		seen[key] = true
		files = append(files, &checkedFile{Rel: rel, Origin: origin})
	}

	add(m.Package.Main, "package.main")
	add(m.Package.Types, "package.types")
	for _, pattern := range m.Package.Files {
		matches, err := filepath.Glob(filepath.Join(m.Dir(), pattern))
		if err != nil {
			return nil, fmt.Errorf("package.files: bad pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			files = append(files, &checkedFile{Rel: pattern, Origin: "package.files", Err: fmt.Errorf("pattern matches no files")})
			continue
		}
		for _, match := range matches {
			rel, err := filepath.Rel(m.Dir(), match)
			if err != nil {
				return nil, err
			}
			add(rel, "package.files")
		}
	}
	for _, name := range order {
		for _, f := range m.Features[name].Files {
			add(f, "features."+name)
		}
	}
	return files, nil
}

// readAll checks containment of every file and reads them concurrently on
// the accessor's worker pool, recording the outcome on each entry.
func readAll(ctx context.Context, acc *sandbox.Accessor, root string, files []*checkedFile) {
	var g errgroup.Group
	for _, f := range files {
		if f.Err != nil {
			continue
		}
		resolved, err := sandbox.ValidatePath(root, f.Rel)
		if err != nil {
			f.Err = err
			continue
		}
		fut := acc.ReadFileAsync(resolved)
		g.Go(func() error {
			data, err := fut.Await(ctx)
			f.Size, f.Err = int64(len(data)), err
			return nil
		})
	}
	_ = g.Wait()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	checkCmd.Flags().StringSliceVarP(&checkFeatures, "features", "F", nil, "features to activate (default: all)")
	rootCmd.AddCommand(checkCmd)
}
