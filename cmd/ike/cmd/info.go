package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ikejs/ike/internal/config"
)

var infoYAML bool

// ConfigLayerStatus reports one settings layer.
type ConfigLayerStatus struct {
	Level  string `yaml:"level"`
	Path   string `yaml:"path"`
	Loaded bool   `yaml:"loaded"`
}

// InfoResult holds everything ike info reports.
type InfoResult struct {
	Version      string              `yaml:"version"`
	Package      string              `yaml:"package,omitempty"`
	PackageVer   string              `yaml:"package_version,omitempty"`
	Description  string              `yaml:"description,omitempty"`
	ManifestPath string              `yaml:"manifest,omitempty"`
	ParentPath   string              `yaml:"parent,omitempty"`
	Dependencies int                 `yaml:"dependencies"`
	DevDeps      int                 `yaml:"dev_dependencies"`
	Features     int                 `yaml:"features"`
	Tasks        int                 `yaml:"tasks"`
	Settings     config.Settings     `yaml:"settings"`
	ConfigChain  []ConfigLayerStatus `yaml:"config_chain"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the project and ike settings",
	Long: `Displays the ike version, the nearest manifest and its enclosing parent
project, dependency and feature counts, the resolved settings and the chain of
settings files that produced them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result := InfoResult{Version: version, Settings: *settings}
		for _, l := range layers {
			result.ConfigChain = append(result.ConfigChain, ConfigLayerStatus{
				Level:  string(l.Level),
				Path:   l.Path,
				Loaded: l.Loaded,
			})
		}

		// A missing manifest is fine here; info still reports settings.
		loader := newLoader()
		m, err := loader.LoadNearest(projectDir)
		if err == nil {
			result.Package = m.Package.Name
			result.PackageVer = m.Package.Version
			result.Description = m.Package.Description
			result.ManifestPath = m.Path
			result.Dependencies = len(m.Dependencies)
			result.DevDeps = len(m.DevDependencies)
			result.Features = len(m.Features)
			result.Tasks = len(m.Tasks)

			parent, perr := loader.Parent(m)
			if perr != nil {
				logger.Warn("parent manifest is invalid", "err", perr)
			} else if parent != nil {
				result.ParentPath = parent.Path
			}
		} else {
			logger.Debug("no manifest", "err", err)
		}

		if infoYAML {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer func() { _ = enc.Close() }()
			return enc.Encode(result)
		}

		fmt.Printf("ike %s\n", result.Version)
		if result.ManifestPath == "" {
			fmt.Printf("  manifest:      (none found from %s)\n", projectDir)
		} else {
			fmt.Printf("  package:       %s %s\n", result.Package, result.PackageVer)
			if result.Description != "" {
				fmt.Printf("  description:   %s\n", result.Description)
			}
			fmt.Printf("  manifest:      %s\n", result.ManifestPath)
			if result.ParentPath != "" {
				fmt.Printf("  parent:        %s\n", result.ParentPath)
			}
			fmt.Printf("  dependencies:  %d (+%d dev)\n", result.Dependencies, result.DevDeps)
			fmt.Printf("  features:      %d\n", result.Features)
			fmt.Printf("  tasks:         %d\n", result.Tasks)
		}

		fmt.Printf("  log:           %s (%s)\n", result.Settings.LogLevel, result.Settings.LogFormat)
		fmt.Printf("  workers:       %d\n", result.Settings.Workers)

		if len(result.ConfigChain) > 0 {
			fmt.Println("  config chain:")
			for _, layer := range result.ConfigChain {
				status := "not found"
				if layer.Loaded {
					status = "loaded"
				}
				fmt.Printf("    %-10s %s (%s)\n", layer.Level+":", layer.Path, status)
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoYAML, "yaml", false, "print the report as YAML")
	rootCmd.AddCommand(infoCmd)
}
