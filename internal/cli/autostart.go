package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"routinetimer/internal/config"
	"routinetimer/internal/platform"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the tray app at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Launch the tray app at login",
	Args:  cobra.NoArgs,
	RunE:  runAutostartEnable,
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop launching at login",
	Args:  cobra.NoArgs,
	RunE:  runAutostartDisable,
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
}

func runAutostartEnable(cmd *cobra.Command, args []string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	entry := platform.AutostartEntry{
		Name:     config.AppName,
		ExecPath: execPath,
		Args:     append([]string{"tray"}, forwardedFlags(cmd)...),
		Comment:  "Spoken timer for a daily routine",
	}
	if err := platform.NewService().EnableAutostart(entry); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled.")
	return nil
}

func runAutostartDisable(cmd *cobra.Command, args []string) error {
	if err := platform.NewService().DisableAutostart(config.AppName); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled.")
	return nil
}

// forwardedFlags repeats the persistent flags given on this command line.
func forwardedFlags(cmd *cobra.Command) []string {
	var args []string
	for _, name := range []string{"config", "log-level", "store", "store-path"} {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			args = append(args, "--"+name, flag.Value.String())
		}
	}
	return args
}
