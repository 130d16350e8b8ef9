package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/source"
)

var (
	depsDev      bool
	depsFeatures []string
	depsResolve  bool
	depsRemote   bool
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "List the project's dependencies",
	Long: `Lists the dependencies declared in ike.toml, including those contributed by
the features selected with --features. Use --dev for devDependencies.

With --resolve each source is inspected: path dependencies are canonicalized
and their own manifest is read, version requirements are classified as exact
or range, and git dependencies show the ref that would be used. Add --remote
to look up the commit a git ref points at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		table := manifest.TableDependencies
		var deps map[string]manifest.Dependency
		if depsDev {
			table = manifest.TableDevDependencies
			deps = m.DevDependencies
		} else if deps, err = m.ActiveDependencies(depsFeatures...); err != nil {
			return err
		}

		if len(deps) == 0 {
			info("No %s.", table)
			return nil
		}

		if !depsResolve {
			for _, name := range slices.Sorted(maps.Keys(deps)) {
				printDependency(deps[name])
			}
			return nil
		}

		reg := source.DefaultRegistry(newLoader(), depsRemote)
		inspections, err := reg.InspectAll(commandContext(cmd), deps, m.Dir())
		if err != nil {
			return err
		}
		for _, in := range inspections {
			info("%-20s %-8s %s", in.Name, in.Kind, in.Summary())
			if in.ManifestSHA256 != "" {
				detail("manifest sha256: %s", in.ManifestSHA256)
			}
		}
		return nil
	},
}

func printDependency(d manifest.Dependency) {
	line := fmt.Sprintf("%-20s %-8s %s", d.Name, d.Source.Kind(), d.Source)
	if len(d.Features) > 0 {
		line += fmt.Sprintf(" [features: %s]", strings.Join(d.Features, ", "))
	}
	info("%s", line)
}

func init() {
	depsCmd.Flags().BoolVar(&depsDev, "dev", false, "list devDependencies instead")
	depsCmd.Flags().StringSliceVarP(&depsFeatures, "features", "F", nil, "include dependencies of these features")
	depsCmd.Flags().BoolVar(&depsResolve, "resolve", false, "inspect each dependency source")
	depsCmd.Flags().BoolVar(&depsRemote, "remote", false, "contact git remotes when resolving")
	rootCmd.AddCommand(depsCmd)
}
