package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/core/export"
	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/internal/data/db"
	"github.com/planora/planora/internal/data/stores"
)

func newExportFixture(t *testing.T) (*ExportService, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewExportService(f.projects.store, f.plans.tasks, zerolog.Nop()), f
}

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()
	svc, f := newExportFixture(t)

	task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
	_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 4})
	require.NoError(t, err)
	_, err = f.projects.AddMember(ctx, project.Member{ProjectID: f.projectID, Name: "ana", Role: project.RoleOwner})
	require.NoError(t, err)

	t.Run("full export", func(t *testing.T) {
		doc, err := svc.Export(ctx, "")
		require.NoError(t, err)

		assert.Equal(t, export.Version, doc.Version)
		require.Len(t, doc.Projects, 1)
		assert.Equal(t, "web", doc.Projects[0].Project.Name)
		assert.Len(t, doc.Projects[0].Members, 1)
		require.Len(t, doc.Projects[0].Tasks, 1)
		assert.Equal(t, "build", doc.Projects[0].Tasks[0].Todos[0].Text)
	})

	t.Run("glob filters by name", func(t *testing.T) {
		doc, err := svc.Export(ctx, "w*")
		require.NoError(t, err)
		assert.Len(t, doc.Projects, 1)

		doc, err = svc.Export(ctx, "api*")
		require.NoError(t, err)
		assert.Empty(t, doc.Projects)
	})

	t.Run("survives encode round trip", func(t *testing.T) {
		doc, err := svc.Export(ctx, "")
		require.NoError(t, err)

		raw, err := export.Encode(doc)
		require.NoError(t, err)

		decoded, err := export.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, doc.Projects[0].Project.ID, decoded.Projects[0].Project.ID)
	})
}

func TestExportService_Import(t *testing.T) {
	ctx := context.Background()

	// Export from one database, import into a fresh one.
	svc, f := newExportFixture(t)
	task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
	_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 4})
	require.NoError(t, err)

	doc, err := svc.Export(ctx, "")
	require.NoError(t, err)

	t.Run("into empty database", func(t *testing.T) {
		database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close() })

		projectStore := stores.NewProjectStore(database)
		taskStore := stores.NewTaskStore(database)
		target := NewExportService(projectStore, taskStore, zerolog.Nop())

		result, err := target.Import(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Projects)
		assert.Equal(t, 1, result.Tasks)

		restored, err := taskStore.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "build", restored.Todos[0].Text)
	})

	t.Run("rejects colliding project before writing", func(t *testing.T) {
		_, err := svc.Import(ctx, doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, project.ErrDuplicate)
	})
}
