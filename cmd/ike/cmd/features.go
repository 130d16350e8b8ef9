package cmd

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features [feature...]",
	Short: "List features or show what activating them enables",
	Long: `Without arguments, lists every feature declared in ike.toml with the
features it depends on. With arguments, computes the activation closure of the
named features and prints the features in activation order followed by the
files they add.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if len(m.Features) == 0 {
				info("No features.")
				return nil
			}
			for _, name := range slices.Sorted(maps.Keys(m.Features)) {
				f := m.Features[name]
				if len(f.DependsOn) == 0 {
					info("%s", name)
				} else {
					info("%s -> %s", name, strings.Join(f.DependsOn, ", "))
				}
				detail("%d file(s), %d dependencies", len(f.Files), len(f.Dependencies))
			}
			return nil
		}

		order, err := m.Activate(args...)
		if err != nil {
			return err
		}
		files, err := m.ActiveFiles(args...)
		if err != nil {
			return err
		}

		info("Activation order: %s", strings.Join(order, ", "))
		if len(files) > 0 {
			info("Files:")
			for _, f := range files {
				info("  %s", f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
