package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"routinetimer/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the routine in the terminal",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	options, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	logOut := &switchWriter{out: os.Stderr}
	a := openApp(options, newLogger(options, logOut), sinks{speech: true})
	defer a.Close()

	sh, err := shell.New(a.routine)
	if err != nil {
		return err
	}
	logOut.Set(sh.Stderr())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go a.routine.Run(ctx)
	sh.Run(ctx, cancel)
	return nil
}
