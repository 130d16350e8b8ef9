package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ikejs/ike/internal/task"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the tasks declared in ike.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		names := task.Names(m)
		if len(names) == 0 {
			info("No tasks.")
			return nil
		}
		for _, name := range names {
			info("%-15s %s", name, m.Tasks[name])
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <task> [args...]",
	Short: "Run a task from ike.toml",
	Long: `Runs the named task's command in the manifest directory. Extra arguments
are passed to the command as positional parameters ($1, $2, ...).

The command sees IKE_PACKAGE_NAME, IKE_PACKAGE_VERSION and IKE_MANIFEST_DIR.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		r := &task.Runner{
			Manifest: m,
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
			Logger:   logger,
		}
		return r.Run(commandContext(cmd), args[0], args[1:]...)
	},
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *task.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

func init() {
	// Flags after the task name belong to the task.
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(tasksCmd, runCmd)
}
