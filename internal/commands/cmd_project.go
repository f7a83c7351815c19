package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/pkg/iojson"
)

// ProjectCmd implements the planora project command group.
type ProjectCmd struct {
	flags *Flags
	app   *app.App

	// new flags
	newDescription string

	// rm flags
	rmYes bool

	// member flags
	memberProject string
	memberEmail   string
	memberRole    string
}

// NewProjectCmd creates a new project command.
func NewProjectCmd(flags *Flags, app *app.App) *ProjectCmd {
	return &ProjectCmd{flags: flags, app: app}
}

// Register adds the project command to the application.
func (cmd *ProjectCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "project",
		Usage: "Manage projects and their members",
		Description: `Project commands for creating and managing projects.

Projects are containers for tasks; scheduling runs operate per project.

Examples:
  planora project new web                       # create a project
  planora project ls                            # list projects
  planora project member add ana --project web  # attach a member
  planora project rm web                        # delete a project`,
		Commands: []*cli.Command{
			cmd.newCmd(),
			cmd.lsCmd(),
			cmd.rmCmd(),
			cmd.memberCmd(),
		},
	})

	return root
}

func (cmd *ProjectCmd) newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a project",
		UsageText: "planora project new <name> [--description <desc>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "optional description",
				Destination: &cmd.newDescription,
			},
		},
		Action: cmd.runNew,
	}
}

func (cmd *ProjectCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "List projects as JSON lines",
		Action:  cmd.runLs,
	}
}

func (cmd *ProjectCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a project and everything attached to it",
		UsageText: "planora project rm <name-or-id> [--yes]",
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

func (cmd *ProjectCmd) memberCmd() *cli.Command {
	projectFlag := &cli.StringFlag{
		Name:        "project",
		Aliases:     []string{"p"},
		Usage:       "project name or ID",
		Required:    true,
		Destination: &cmd.memberProject,
	}

	return &cli.Command{
		Name:  "member",
		Usage: "Manage project members",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a member to a project",
				UsageText: "planora project member add <name> --project <project> [--role <role>] [--email <email>]",
				Flags: []cli.Flag{
					projectFlag,
					&cli.StringFlag{
						Name:        "email",
						Usage:       "member email",
						Destination: &cmd.memberEmail,
					},
					&cli.StringFlag{
						Name:        "role",
						Aliases:     []string{"r"},
						Usage:       "member role (owner, member, viewer)",
						Destination: &cmd.memberRole,
					},
				},
				Action: cmd.runMemberAdd,
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List a project's members as JSON lines",
				Flags:   []cli.Flag{projectFlag},
				Action:  cmd.runMemberLs,
			},
			{
				Name:      "rm",
				Usage:     "Remove a member by ID",
				UsageText: "planora project member rm <member-id>",
				Action:    cmd.runMemberRm,
			},
		},
	}
}

func (cmd *ProjectCmd) runNew(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora project new <name>")
	}

	p, err := cmd.app.Projects.Create(ctx, project.Project{
		Name:        c.Args().Get(0),
		Description: cmd.newDescription,
	})
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, p)
}

func (cmd *ProjectCmd) runLs(ctx context.Context, c *cli.Command) error {
	projects, err := cmd.app.Projects.List(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	for _, p := range projects {
		if err := iojson.WriteLine(c.Root().Writer, p); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *ProjectCmd) runRm(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora project rm <name-or-id>")
	}

	p, err := cmd.app.Projects.Resolve(ctx, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}

	ok, err := confirm(fmt.Sprintf("Delete project %q and all of its tasks?", p.Name), cmd.rmYes)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := cmd.app.Projects.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *ProjectCmd) runMemberAdd(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora project member add <name> --project <project>")
	}

	p, err := cmd.app.Projects.Resolve(ctx, cmd.memberProject)
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}

	m, err := cmd.app.Projects.AddMember(ctx, project.Member{
		ProjectID: p.ID,
		Name:      c.Args().Get(0),
		Email:     cmd.memberEmail,
		Role:      project.Role(cmd.memberRole),
	})
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, m)
}

func (cmd *ProjectCmd) runMemberLs(ctx context.Context, c *cli.Command) error {
	p, err := cmd.app.Projects.Resolve(ctx, cmd.memberProject)
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}

	members, err := cmd.app.Projects.ListMembers(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	for _, m := range members {
		if err := iojson.WriteLine(c.Root().Writer, m); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *ProjectCmd) runMemberRm(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: planora project member rm <member-id>")
	}

	if err := cmd.app.Projects.RemoveMember(ctx, c.Args().Get(0)); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "removed")
	return nil
}
