package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	projectDir string
	configFile string
	logLevel   string
	logFormat  string
	workers    int
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "ike",
	Short: "Project tooling for the ike JavaScript/TypeScript runtime",
	Long: `ike reads the project manifest (ike.toml) nearest to the working directory,
validates its dependencies and features, and runs the tasks it declares.

Settings are read from /etc/ike/config.yaml, the user config directory and
.ike/config.yaml next to the manifest, then IKE_* environment variables and flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ike %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "directory to search for ike.toml from")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file to use instead of the discovered layers")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json, logfmt)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of background file readers")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "detailed output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		errorf("%v", err)
		return err
	}
	return nil
}
