package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/sandbox"
)

var (
	initForce   bool
	initName    string
	initVersion string
)

// initTemplate is the default ike.toml scaffold.
const initTemplate = `# ike project manifest
[package]
name = "{{ .Name }}"
version = "{{ .Version }}"
main = "src/main.ts"
# description = ""
# files = ["src/**"]
# types = "types/index.d.ts"
# repository = { type = "git", url = "https://example.com/{{ .Name }}.git" }

[dependencies]
# Registry version (shorthand for { version = "^1.0.0" }):
# example = "^1.0.0"
# Local directory, relative to this file:
# shared = { path = "../shared" }
# Git repository, pinned to a branch or rev:
# tools = { git = "https://example.com/tools.git", branch = "main" }

[devDependencies]

[tasks]
check = "ike check"

# [features.web]
# dependencies = {}
# files = ["src/web.ts"]
# depends_on = []
`

var manifestTemplate = template.Must(template.New(manifest.FileName).Option("missingkey=error").Parse(initTemplate))

var packageNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter ike.toml manifest",
	Long: `Creates an ike.toml file in the given directory (default: the --dir directory)
with the package name taken from the directory name and commented examples for
each dependency source kind.

Use --force to overwrite an existing manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := projectDir
		if len(args) == 1 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		outPath := filepath.Join(abs, manifest.FileName)

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		content, err := renderManifest(defaultPackageName(abs), initVersion)
		if err != nil {
			return err
		}

		if err := fileAccessor().MkdirAll(abs); err != nil {
			return err
		}
		if err := sandbox.SafeWrite(abs, manifest.FileName, content, 0644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Add dependencies under [dependencies]")
		info("  2. Run 'ike check' to validate the manifest")
		info("  3. Run 'ike tasks' to list tasks and 'ike run check' to run one")
		return nil
	},
}

func defaultPackageName(dir string) string {
	if initName != "" {
		return initName
	}
	name := strings.Trim(packageNameChars.ReplaceAllString(strings.ToLower(filepath.Base(dir)), "-"), "-.")
	if name == "" {
		return "app"
	}
	return name
}

// renderManifest fills the template and checks that the result validates.
func renderManifest(name, version string) ([]byte, error) {
	var buf bytes.Buffer
	if err := manifestTemplate.Execute(&buf, struct{ Name, Version string }{name, version}); err != nil {
		return nil, fmt.Errorf("rendering manifest: %w", err)
	}

	raw, err := manifest.Parse(manifest.FileName, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated manifest is invalid: %w", err)
	}
	if _, err := raw.Resolve(manifest.FileName); err != nil {
		return nil, fmt.Errorf("generated manifest is invalid: %w", err)
	}
	return buf.Bytes(), nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing ike.toml")
	initCmd.Flags().StringVar(&initName, "name", "", "package name (default: directory name)")
	initCmd.Flags().StringVar(&initVersion, "version", "0.1.0", "initial package version")
	rootCmd.AddCommand(initCmd)
}
