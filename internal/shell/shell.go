// Package shell provides an interactive terminal front-end for the routine.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"routinetimer/internal/core/model"
	"routinetimer/internal/core/routine"
)

// Controller is the routine surface driven by the shell.
type Controller interface {
	Subscribe(buffer int) <-chan routine.Event
	Start() (routine.Snapshot, error)
	Advance() (routine.Snapshot, error)
	TakeBreak() (routine.Snapshot, error)
	Retry() (routine.Snapshot, error)
	Stop(passcode string) (routine.Snapshot, error)
	TestVoice() routine.Snapshot
	AddTask(name string, durationMinutes int) (routine.Snapshot, error)
	UpdateTask(id string, patch model.TaskPatch) (routine.Snapshot, error)
	DeleteTask(id string) (routine.Snapshot, error)
	ReorderTask(fromIndex, toIndex int) (routine.Snapshot, error)
	UpdateConfig(patch model.ConfigPatch) (routine.Snapshot, error)
	Snapshot() routine.Snapshot
	Config() model.RoutineConfig
}

// Shell handles interactive mode.
type Shell struct {
	routine Controller
	rl      *readline.Instance
}

// New creates a new interactive shell.
func New(controller Controller) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "routine> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{routine: controller, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline input.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that coordinates with the readline input.
// Use this for log output to avoid interfering with the prompt.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	go s.watch(ctx, s.routine.Subscribe(32))

	printHelp(s.rl.Stdout())
	printStatus(s.rl.Stdout(), s.routine.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if !s.Execute(s.rl.Stdout(), line) {
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(out io.Writer, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		printHelp(out)

	case "status", "s":
		printStatus(out, s.routine.Snapshot())

	case "start":
		printer{out}.result(s.routine.Start())

	case "next", "n":
		printer{out}.result(s.routine.Advance())

	case "break", "b":
		printer{out}.result(s.routine.TakeBreak())

	case "retry", "r":
		printer{out}.result(s.routine.Retry())

	case "stop":
		if len(args) == 0 {
			fmt.Fprintln(out, "Usage: stop <passcode>")
			return true
		}
		printer{out}.result(s.routine.Stop(strings.Join(args, " ")))

	case "voice":
		s.routine.TestVoice()

	case "tasks", "ls":
		printTasks(out, s.routine.Snapshot())

	case "add":
		s.cmdAdd(out, args)

	case "rename":
		s.cmdRename(out, args)

	case "duration":
		s.cmdDuration(out, args)

	case "rm", "delete":
		if len(args) != 1 {
			fmt.Fprintln(out, "Usage: rm <task-number>")
			return true
		}
		id, ok := s.taskID(out, args[0])
		if !ok {
			return true
		}
		printer{out}.taskResult(s.routine.DeleteTask(id))

	case "move", "mv":
		s.cmdMove(out, args)

	case "config":
		printConfig(out, s.routine.Config())

	case "set":
		s.cmdSet(out, args)

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) cmdAdd(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: add <minutes> <name>")
		return
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(out, "Invalid minutes: %s\n", args[0])
		return
	}
	printer{out}.taskResult(s.routine.AddTask(strings.Join(args[1:], " "), minutes))
}

func (s *Shell) cmdRename(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: rename <task-number> <name>")
		return
	}
	id, ok := s.taskID(out, args[0])
	if !ok {
		return
	}
	name := strings.Join(args[1:], " ")
	printer{out}.taskResult(s.routine.UpdateTask(id, model.TaskPatch{Name: &name}))
}

func (s *Shell) cmdDuration(out io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: duration <task-number> <minutes>")
		return
	}
	id, ok := s.taskID(out, args[0])
	if !ok {
		return
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(out, "Invalid minutes: %s\n", args[1])
		return
	}
	printer{out}.taskResult(s.routine.UpdateTask(id, model.TaskPatch{DurationMinutes: &minutes}))
}

func (s *Shell) cmdMove(out io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(out, "Usage: move <from> <to>")
		return
	}
	from, errFrom := strconv.Atoi(args[0])
	to, errTo := strconv.Atoi(args[1])
	if errFrom != nil || errTo != nil {
		fmt.Fprintln(out, "Task numbers must be integers")
		return
	}
	printer{out}.taskResult(s.routine.ReorderTask(from-1, to-1))
}

func (s *Shell) cmdSet(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: set <break|repeats|passcode|rate|voice> <value>")
		return
	}
	patch, err := model.ParseConfigField(args[0], strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if _, err := s.routine.UpdateConfig(patch); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	printConfig(out, s.routine.Config())
}

// taskID resolves a 1-based task number to its id.
func (s *Shell) taskID(out io.Writer, arg string) (string, bool) {
	tasks := s.routine.Snapshot().Tasks
	number, err := strconv.Atoi(arg)
	if err != nil || number < 1 || number > len(tasks) {
		fmt.Fprintf(out, "No task %s (have %d)\n", arg, len(tasks))
		return "", false
	}
	return tasks[number-1].ID, true
}

// printer writes command results to one output.
type printer struct {
	out io.Writer
}

func (p printer) result(snapshot routine.Snapshot, err error) {
	if err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}
	printStatus(p.out, snapshot)
}

func (p printer) taskResult(snapshot routine.Snapshot, err error) {
	if err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}
	printTasks(p.out, snapshot)
}

func (s *Shell) watch(ctx context.Context, events <-chan routine.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case routine.EventExpired:
				fmt.Fprintf(s.rl.Stdout(), "[time is up] %s\n", event.TaskName)
			case routine.EventNag:
				fmt.Fprintf(s.rl.Stdout(), "[reminder %d] %s\n", event.Count, event.Message)
			}
		}
	}
}

func printStatus(out io.Writer, snapshot routine.Snapshot) {
	switch snapshot.Phase {
	case routine.PhaseIdle:
		fmt.Fprintf(out, "Idle, %d tasks ready. Type 'start' to begin.\n", len(snapshot.Tasks))
	case routine.PhaseAllComplete:
		fmt.Fprintln(out, "All tasks done.")
	default:
		label := "Task"
		if snapshot.Phase == routine.PhaseTaskOnBreak {
			label = "Break"
		}
		name := ""
		if snapshot.Task != nil {
			name = snapshot.Task.Name
		}
		fmt.Fprintf(out, "%s %d/%d: %s  %s",
			label,
			snapshot.Session.ActiveTaskIndex+1,
			len(snapshot.Tasks),
			name,
			routine.FormatRemaining(snapshot.Remaining),
		)
		if snapshot.Escalating {
			fmt.Fprintf(out, "  (reminder %d)", snapshot.Session.WarnRepeatCount)
		}
		fmt.Fprintln(out)
	}
}

func printTasks(out io.Writer, snapshot routine.Snapshot) {
	if len(snapshot.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	for index, task := range snapshot.Tasks {
		marker := " "
		if snapshot.Active() && index == snapshot.Session.ActiveTaskIndex {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %2d. %-36s %3d min\n", marker, index+1, task.Name, task.DurationMinutes)
	}
}

func printConfig(out io.Writer, config model.RoutineConfig) {
	voice := config.VoiceID
	if voice == "" {
		voice = "(default)"
	}
	fmt.Fprintf(out, "break:    %d min\n", config.BreakDurationMinutes)
	fmt.Fprintf(out, "repeats:  %d\n", config.MaxWarnRepeats)
	fmt.Fprintf(out, "passcode: %s\n", strings.Repeat("*", len(config.StopPasscode)))
	fmt.Fprintf(out, "rate:     %.1f\n", config.VoiceRate)
	fmt.Fprintf(out, "voice:    %s\n", voice)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Routine Timer Commands:
  Routine:
    start              - Start the routine
    next, n            - Finish the current task (or end the break)
    break, b           - Take a break
    retry, r           - Give more time for the current step
    stop <passcode>    - Stop the routine
    status, s          - Show the current step
    voice              - Test the voice

  Tasks:
    tasks, ls                  - List tasks
    add <minutes> <name>       - Add a task
    rename <n> <name>          - Rename task n
    duration <n> <minutes>     - Change the duration of task n
    rm <n>                     - Delete task n
    move <from> <to>           - Move a task

  Settings:
    config                     - Show settings
    set <key> <value>          - Change break, repeats, passcode, rate or voice

  quit, exit, q        - Exit`)
}
