package commands

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/pkg/iojson"
)

// TaskCmd implements the planora task command group.
type TaskCmd struct {
	flags *Flags
	app   *app.App

	// new flags
	newProject  string
	newDue      string
	newAssignee string

	// ls flags
	lsProject  string
	lsAssignee string

	// rm flags
	rmYes bool
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *app.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage tasks",
		Description: `Task commands for creating and listing tasks.

Every task belongs to a project and carries a due date that drives
scheduling order.

Examples:
  planora task new "Release prep" --project web --due 2026-03-06
  planora task ls --project web
  planora task ls --project "web*"    # glob over project names
  planora task rm <id>`,
		Commands: []*cli.Command{
			cmd.newCmd(),
			cmd.lsCmd(),
			cmd.rmCmd(),
		},
	})

	return root
}

func (cmd *TaskCmd) newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a task",
		UsageText: "planora task new <title> --project <project> --due <date> [--assignee <name>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "project name or ID",
				Required:    true,
				Destination: &cmd.newProject,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD)",
				Required:    true,
				Destination: &cmd.newDue,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Aliases:     []string{"a"},
				Usage:       "member name the task is assigned to",
				Destination: &cmd.newAssignee,
			},
		},
		Action: cmd.runNew,
	}
}

func (cmd *TaskCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks as JSON lines",
		UsageText: "planora task ls [--project <name-or-glob>] [--assignee <name>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "project name, ID, or glob pattern",
				Destination: &cmd.lsProject,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Aliases:     []string{"a"},
				Usage:       "filter by assignee",
				Destination: &cmd.lsAssignee,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task and its todos",
		UsageText: "planora task rm <id> [--yes]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.rmYes,
			},
		},
		Action: cmd.runRm,
	}
}

func (cmd *TaskCmd) runNew(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora task new <title> --project <project> --due <date>")
	}

	p, err := cmd.app.Projects.Resolve(ctx, cmd.newProject)
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}

	due, err := plan.ParseDate(cmd.newDue)
	if err != nil {
		return fmt.Errorf("parse due date: %w", err)
	}

	task, err := cmd.app.Plans.CreateTask(ctx, plan.Task{
		ProjectID: p.ID,
		Title:     c.Args().Get(0),
		Assignee:  cmd.newAssignee,
		DueDate:   due,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, task)
}

// matchProjects resolves a project reference that may be an exact name,
// an ID, or a glob pattern over project names.
func (cmd *TaskCmd) matchProjects(ctx context.Context, ref string) ([]project.Project, error) {
	if p, err := cmd.app.Projects.Resolve(ctx, ref); err == nil {
		return []project.Project{p}, nil
	}

	all, err := cmd.app.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var matched []project.Project
	for _, p := range all {
		ok, err := doublestar.Match(ref, p.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid project pattern %q: %w", ref, err)
		}
		if ok {
			matched = append(matched, p)
		}
	}

	if len(matched) == 0 {
		return nil, fmt.Errorf("no project matches %q: %w", ref, project.ErrNotFound)
	}

	return matched, nil
}

func (cmd *TaskCmd) runLs(ctx context.Context, c *cli.Command) error {
	filters := []plan.ListFilter{{Assignee: cmd.lsAssignee}}

	if cmd.lsProject != "" {
		projects, err := cmd.matchProjects(ctx, cmd.lsProject)
		if err != nil {
			return err
		}
		filters = filters[:0]
		for _, p := range projects {
			filters = append(filters, plan.ListFilter{ProjectID: p.ID, Assignee: cmd.lsAssignee})
		}
	}

	for _, filter := range filters {
		tasks, err := cmd.app.Plans.ListTasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		for _, task := range tasks {
			if err := iojson.WriteLine(c.Root().Writer, task); err != nil {
				return err
			}
		}
	}

	return nil
}

func (cmd *TaskCmd) runRm(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora task rm <id>")
	}

	id := c.Args().Get(0)
	task, err := cmd.app.Plans.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	ok, err := confirm(fmt.Sprintf("Delete task %q and its %d todo(s)?", task.Title, len(task.Todos)), cmd.rmYes)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := cmd.app.Plans.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}
