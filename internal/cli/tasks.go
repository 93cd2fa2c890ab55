package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"routinetimer/internal/core/model"
	"routinetimer/internal/core/routine"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the task list",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <minutes> <name>",
	Short: "Append a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTasksAdd,
}

var tasksRemoveCmd = &cobra.Command{
	Use:   "remove <number>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRemove,
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a task to another position",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasksMove,
}

var tasksRenameCmd = &cobra.Command{
	Use:   "rename <number> <name>",
	Short: "Rename a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTasksRename,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	tasksCmd.AddCommand(tasksRenameCmd)

	tasksRenameCmd.Flags().Int("minutes", 0, "Also change the duration")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	printTaskList(cmd, a.routine.Tasks())
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid minutes %q", args[0])
	}

	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return showTasks(cmd)(a.routine.AddTask(strings.Join(args[1:], " "), minutes))
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := taskByNumber(a.routine.Tasks(), args[0])
	if err != nil {
		return err
	}
	return showTasks(cmd)(a.routine.DeleteTask(task.ID))
}

func runTasksMove(cmd *cobra.Command, args []string) error {
	from, errFrom := strconv.Atoi(args[0])
	to, errTo := strconv.Atoi(args[1])
	if errFrom != nil || errTo != nil {
		return fmt.Errorf("task numbers must be integers")
	}

	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return showTasks(cmd)(a.routine.ReorderTask(from-1, to-1))
}

func runTasksRename(cmd *cobra.Command, args []string) error {
	a, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := taskByNumber(a.routine.Tasks(), args[0])
	if err != nil {
		return err
	}

	name := strings.Join(args[1:], " ")
	patch := model.TaskPatch{Name: &name}
	if cmd.Flags().Changed("minutes") {
		minutes, _ := cmd.Flags().GetInt("minutes")
		patch.DurationMinutes = &minutes
	}
	return showTasks(cmd)(a.routine.UpdateTask(task.ID, patch))
}

// showTasks prints the task list of a successful edit.
func showTasks(cmd *cobra.Command) func(routine.Snapshot, error) error {
	return func(snapshot routine.Snapshot, err error) error {
		if err != nil {
			return err
		}
		printTaskList(cmd, snapshot.Tasks)
		return nil
	}
}

func taskByNumber(tasks []model.Task, arg string) (model.Task, error) {
	number, err := strconv.Atoi(arg)
	if err != nil || number < 1 || number > len(tasks) {
		return model.Task{}, fmt.Errorf("no task %s (have %d)", arg, len(tasks))
	}
	return tasks[number-1], nil
}

func printTaskList(cmd *cobra.Command, tasks []model.Task) {
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	total := 0
	for index, task := range tasks {
		fmt.Fprintf(out, "%2d. %-36s %3d min\n", index+1, task.Name, task.DurationMinutes)
		total += task.DurationMinutes
	}
	fmt.Fprintf(out, "Total: %d min\n", total)
}
