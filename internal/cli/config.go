package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routinetimer/internal/core/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change routine settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show routine settings and application options",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a routine setting (break, repeats, passcode, rate, voice)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	printRoutineConfig(cmd, a.routine.Config())

	out := cmd.OutOrStdout()
	options := a.options
	fmt.Fprintln(out)
	fmt.Fprintf(out, "store:      %s %s\n", options.Store.Backend, options.Store.Path)
	fmt.Fprintf(out, "language:   %s\n", options.Language)
	fmt.Fprintf(out, "speech:     %t %s\n", options.Speech.Enabled, options.Speech.Command)
	fmt.Fprintf(out, "timing:     tick %s, reminders every %s, retry %s\n",
		options.Timing.Tick, options.Timing.Escalation, options.Timing.Retry)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	patch, err := model.ParseConfigField(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.routine.UpdateConfig(patch); err != nil {
		return err
	}
	printRoutineConfig(cmd, a.routine.Config())
	return nil
}

func printRoutineConfig(cmd *cobra.Command, config model.RoutineConfig) {
	out := cmd.OutOrStdout()
	voice := config.VoiceID
	if voice == "" {
		voice = "(default)"
	}
	fmt.Fprintf(out, "break:      %d min\n", config.BreakDurationMinutes)
	fmt.Fprintf(out, "repeats:    %d\n", config.MaxWarnRepeats)
	fmt.Fprintf(out, "passcode:   %s\n", strings.Repeat("*", len(config.StopPasscode)))
	fmt.Fprintf(out, "voice rate: %.1f\n", config.VoiceRate)
	fmt.Fprintf(out, "voice:      %s\n", voice)
}
