package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/core/export"
	"github.com/planora/planora/pkg/iojson"
)

// ExportCmd implements the planora export and import commands.
type ExportCmd struct {
	flags *Flags
	app   *app.App

	// export flags
	exportProjects string
	exportOut      string

	// import reader
	importReader iojson.FileReader[json.RawMessage]
}

// NewExportCmd creates a new export command.
func NewExportCmd(flags *Flags, app *app.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export and import commands to the application.
func (cmd *ExportCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands,
		&cli.Command{
			Name:      "export",
			Usage:     "Export projects, tasks, and todos as JSON",
			UsageText: "planora export [--projects <glob>] [--out <file>]",
			Description: `Writes a versioned JSON document of all data, or of projects
matching a glob pattern.

Examples:
  planora export > backup.json
  planora export --projects "web*" --out web.json`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "projects",
					Aliases:     []string{"p"},
					Usage:       "glob pattern over project names (default: all)",
					Destination: &cmd.exportProjects,
				},
				&cli.StringFlag{
					Name:        "out",
					Aliases:     []string{"o"},
					Usage:       "write to file instead of stdout",
					Destination: &cmd.exportOut,
				},
			},
			Action: cmd.runExport,
		},
		&cli.Command{
			Name:      "import",
			Usage:     "Import a previously exported JSON document",
			UsageText: "planora import [-f <file>]",
			Description: `Validates the document against the export schema and restores
it. Projects that already exist abort the import before any write.

Examples:
  planora import -f backup.json
  cat backup.json | planora import`,
			Flags:  []cli.Flag{cmd.importReader.Flag()},
			Action: cmd.runImport,
		},
	)

	return root
}

func (cmd *ExportCmd) runExport(ctx context.Context, c *cli.Command) error {
	doc, err := cmd.app.Exports.Export(ctx, cmd.exportProjects)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	raw, err := export.Encode(doc)
	if err != nil {
		return err
	}

	if cmd.exportOut != "" {
		if err := os.WriteFile(cmd.exportOut, raw, 0o644); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "exported %d project(s) to %s\n", len(doc.Projects), cmd.exportOut)
		return nil
	}

	_, err = c.Root().Writer.Write(raw)
	return err
}

func (cmd *ExportCmd) runImport(ctx context.Context, c *cli.Command) error {
	raw, err := cmd.importReader.Read()
	if err != nil {
		return err
	}

	doc, err := export.Decode(raw)
	if err != nil {
		return err
	}

	result, err := cmd.app.Exports.Import(ctx, doc)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, result)
}
