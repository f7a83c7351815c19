package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/calview"
	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/styles"
	"github.com/planora/planora/pkg/iojson"
)

// ScheduleCmd implements the planora schedule command group.
type ScheduleCmd struct {
	flags *Flags
	app   *app.App

	project string
	asJSON  bool
	week    string
}

// NewScheduleCmd creates a new schedule command.
func NewScheduleCmd(flags *Flags, app *app.App) *ScheduleCmd {
	return &ScheduleCmd{flags: flags, app: app}
}

// Register adds the schedule command to the application.
func (cmd *ScheduleCmd) Register(root *cli.Command) *cli.Command {
	projectFlag := &cli.StringFlag{
		Name:        "project",
		Aliases:     []string{"p"},
		Usage:       "project name or ID",
		Required:    true,
		Destination: &cmd.project,
	}

	root.Commands = append(root.Commands, &cli.Command{
		Name:  "schedule",
		Usage: "Run and inspect the auto-scheduler",
		Description: `Schedule commands place todo hours onto the working calendar.

A run orders a project's todos by task due date, packs them into
working days, splits them around the lunch break, and commits the
placements. Preview computes the same placements without writing.

Examples:
  planora schedule run --project web
  planora schedule preview --project web
  planora schedule show --project web
  planora schedule report --project web`,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run the scheduler and persist placements",
				UsageText: "planora schedule run --project <project> [--json]",
				Flags: []cli.Flag{
					projectFlag,
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "emit the full run result as JSON",
						Destination: &cmd.asJSON,
					},
				},
				Action: cmd.runRun,
			},
			{
				Name:      "preview",
				Usage:     "Compute placements without persisting them",
				UsageText: "planora schedule preview --project <project>",
				Flags:     []cli.Flag{projectFlag},
				Action:    cmd.runPreview,
			},
			{
				Name:      "show",
				Usage:     "Show committed placements as a week view",
				UsageText: "planora schedule show --project <project> [--week <date>]",
				Flags: []cli.Flag{
					projectFlag,
					&cli.StringFlag{
						Name:        "week",
						Aliases:     []string{"w"},
						Usage:       "only show the week containing this date (YYYY-MM-DD)",
						Destination: &cmd.week,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "report",
				Usage:     "Render a markdown schedule report",
				UsageText: "planora schedule report --project <project>",
				Flags:     []cli.Flag{projectFlag},
				Action:    cmd.runReport,
			},
		},
	})

	return root
}

func (cmd *ScheduleCmd) resolveProjectID(ctx context.Context) (string, error) {
	p, err := cmd.app.Projects.Resolve(ctx, cmd.project)
	if err != nil {
		return "", fmt.Errorf("resolve project: %w", err)
	}
	return p.ID, nil
}

func (cmd *ScheduleCmd) runRun(ctx context.Context, c *cli.Command) error {
	projectID, err := cmd.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	result, err := cmd.app.Plans.RunSchedule(ctx, projectID)
	if err != nil {
		return fmt.Errorf("run schedule: %w", err)
	}

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result)
	}

	printSummary(c, result)
	return nil
}

func (cmd *ScheduleCmd) runPreview(ctx context.Context, c *cli.Command) error {
	projectID, err := cmd.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	result, err := cmd.app.Plans.PreviewSchedule(ctx, projectID)
	if err != nil {
		return fmt.Errorf("preview schedule: %w", err)
	}

	printSummary(c, result)
	_, _ = fmt.Fprint(c.Root().Writer, renderTasks(result.Tasks))
	return nil
}

func (cmd *ScheduleCmd) runShow(ctx context.Context, c *cli.Command) error {
	projectID, err := cmd.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	tasks, err := cmd.app.Plans.ListTasks(ctx, plan.ListFilter{ProjectID: projectID})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if cmd.week != "" {
		day, err := plan.ParseDate(cmd.week)
		if err != nil {
			return fmt.Errorf("parse week date: %w", err)
		}
		tasks = calview.FilterWeek(tasks, day)
	}

	_, _ = fmt.Fprint(c.Root().Writer, renderTasks(tasks))
	return nil
}

func (cmd *ScheduleCmd) runReport(ctx context.Context, c *cli.Command) error {
	projectID, err := cmd.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	tasks, err := cmd.app.Plans.ListTasks(ctx, plan.ListFilter{ProjectID: projectID})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	md := calview.Report(tasks, time.Now())

	if !isTTY() {
		_, _ = fmt.Fprint(c.Root().Writer, md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(outputWidth()),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, _ = fmt.Fprint(c.Root().Writer, out)
	return nil
}

func renderTasks(tasks []plan.Task) string {
	if !isTTY() {
		return calview.Plain(tasks)
	}
	return calview.Render(tasks, outputWidth())
}

func printSummary(c *cli.Command, result app.RunResult) {
	line := fmt.Sprintf("%d placement(s), %d continuation(s)", result.Placed, result.Continuations)
	if !result.From.IsZero() {
		line += fmt.Sprintf(", %s to %s",
			result.From.Format("2006-01-02 15:04"),
			result.To.Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintln(c.Root().Writer, styles.TitleStyle.Render(line))
}
