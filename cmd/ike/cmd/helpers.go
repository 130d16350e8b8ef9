package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ikejs/ike/internal/config"
	"github.com/ikejs/ike/internal/manifest"
	"github.com/ikejs/ike/internal/sandbox"
)

// Resolved by setup before any command runs.
var (
	settings    = defaultSettings()
	layers      []config.ConfigLayerInfo
	logger      = log.New(io.Discard)
	accessor    *sandbox.Accessor
	manifestDir string
)

func defaultSettings() *config.Settings {
	s := config.Defaults()
	return &s
}

// setup resolves settings and builds the logger and file accessor.
func setup(cmd *cobra.Command) error {
	if dir, err := manifest.Locate(projectDir); err == nil {
		manifestDir = dir
	}

	s, ls, err := config.Load(config.LoadOptions{
		Discover: config.DiscoverOptions{
			ProjectDir: manifestDir,
			NoInherit:  config.EnvNoInherit(),
		},
		File:      configFile,
		Overrides: flagOverrides(cmd),
	})
	layers = ls
	if err != nil {
		return err
	}
	settings = s

	l, err := newLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	logger = l
	accessor = sandbox.New(
		sandbox.WithPool(sandbox.NewPool(settings.Workers)),
		sandbox.WithLogger(logger),
	)
	return nil
}

// flagOverrides returns the settings given explicitly on the command line.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	if verbose {
		overrides["log_level"] = "debug"
	}
	if flags.Changed("log-level") {
		overrides["log_level"] = logLevel
	}
	if flags.Changed("log-format") {
		overrides["log_format"] = logFormat
	}
	if flags.Changed("workers") {
		overrides["workers"] = workers
	}
	return overrides
}

func newLogger(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	formatter := log.TextFormatter
	switch format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:    "ike",
		Level:     lvl,
		Formatter: formatter,
	}), nil
}

// fileAccessor returns the shared accessor, creating a default one when
// setup has not run.
func fileAccessor() *sandbox.Accessor {
	if accessor == nil {
		accessor = sandbox.New(sandbox.WithLogger(logger))
	}
	return accessor
}

func newLoader() *manifest.Loader {
	return &manifest.Loader{Accessor: fileAccessor(), Logger: logger}
}

// loadManifest loads the manifest nearest to --dir.
func loadManifest() (*manifest.Manifest, error) {
	m, err := newLoader().LoadNearest(projectDir)
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, fmt.Errorf("%w (run 'ike init' to create one)", err)
	}
	return m, err
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
