package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/pkg/iojson"
)

// TodoCmd implements the planora todo command group.
type TodoCmd struct {
	flags *Flags
	app   *app.App

	// add flags
	addTask  string
	addHours float64
	addStart string
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *app.App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage task todos",
		Description: `Todo commands for managing a task's schedulable items.

Every todo carries an hour estimate and an earliest start date; a
scheduling run places those hours onto the working calendar.

Examples:
  planora todo add "Write notes" --task abc123 --hours 2 --start 2026-03-02
  planora todo done <id>
  planora todo ls --task abc123`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.doneCmd(),
		},
	})

	return root
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a todo to a task",
		UsageText: "planora todo add <text> --task <id> --hours <hours> --start <date>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "task",
				Aliases:     []string{"t"},
				Usage:       "task ID the todo belongs to",
				Required:    true,
				Destination: &cmd.addTask,
			},
			&cli.FloatFlag{
				Name:        "hours",
				Usage:       "estimated work hours (fractions allowed)",
				Required:    true,
				Destination: &cmd.addHours,
			},
			&cli.StringFlag{
				Name:        "start",
				Aliases:     []string{"s"},
				Usage:       "earliest start date (YYYY-MM-DD)",
				Required:    true,
				Destination: &cmd.addStart,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TodoCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List a task's todos as JSON lines",
		UsageText: "planora todo ls --task <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "task",
				Aliases:     []string{"t"},
				Usage:       "task ID",
				Required:    true,
				Destination: &cmd.addTask,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TodoCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Aliases:   []string{"complete"},
		Usage:     "Mark a todo as completed",
		UsageText: "planora todo done <id>",
		Action:    cmd.runDone,
	}
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora todo add <text> --task <id> --hours <hours> --start <date>")
	}

	start, err := plan.ParseDate(cmd.addStart)
	if err != nil {
		return fmt.Errorf("parse start date: %w", err)
	}

	td, err := cmd.app.Plans.AddTodo(ctx, cmd.addTask, plan.Todo{
		Text:           c.Args().Get(0),
		StartDate:      start,
		EstimatedHours: cmd.addHours,
	})
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, td)
}

func (cmd *TodoCmd) runLs(ctx context.Context, c *cli.Command) error {
	task, err := cmd.app.Plans.GetTask(ctx, cmd.addTask)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	for _, td := range task.Todos {
		if err := iojson.WriteLine(c.Root().Writer, td); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *TodoCmd) runDone(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora todo done <id>")
	}

	if err := cmd.app.Plans.CompleteTodo(ctx, c.Args().Get(0)); err != nil {
		return fmt.Errorf("complete todo: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "completed")
	return nil
}
