// Package cli wires the routine to its front-ends: the tray app, the
// interactive shell and one-shot task and settings commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	storeKind  string
	storePath  string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "routinetimer",
		Short: "Spoken timer for a daily routine",
		Long: `routinetimer walks you through an ordered list of timed tasks.

Each task is announced out loud, a countdown runs, and when time is up you are
reminded until you move on, take a break or ask for more time.`,
		RunE:          runTray, // Default action is the tray app
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Options file (default <config dir>/routinetimer/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&storeKind, "store", "", "Storage backend: yaml, sqlite or memory")
	flags.StringVar(&storePath, "store-path", "", "Storage file path")

	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(autostartCmd)
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
