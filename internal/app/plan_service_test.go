package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/internal/data/db"
	"github.com/planora/planora/internal/data/stores"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fixture struct {
	plans     *PlanService
	projects  *ProjectService
	taskStore *stores.TaskStore
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	projectStore := stores.NewProjectStore(database)
	taskStore := stores.NewTaskStore(database)
	log := zerolog.Nop()

	plans := NewPlanService(taskStore, projectStore, plan.DefaultHours(), log)
	plans.now = func() time.Time { return monday }

	projects := NewProjectService(projectStore, log)

	p, err := projects.Create(context.Background(), project.Project{Name: "web"})
	require.NoError(t, err)

	return &fixture{
		plans:     plans,
		projects:  projects,
		taskStore: taskStore,
		projectID: p.ID,
	}
}

func (f *fixture) createTask(t *testing.T, title string, due time.Time) plan.Task {
	t.Helper()
	task, err := f.plans.CreateTask(context.Background(), plan.Task{
		ProjectID: f.projectID,
		Title:     title,
		DueDate:   due,
	})
	require.NoError(t, err)
	return task
}

func TestPlanService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("valid task", func(t *testing.T) {
		f := newFixture(t)

		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
		assert.NotEmpty(t, task.ID)

		got, err := f.plans.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "release prep", got.Title)
		assert.Equal(t, monday.AddDate(0, 0, 4), got.DueDate)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.CreateTask(ctx, plan.Task{ProjectID: f.projectID, DueDate: monday})
		assert.Error(t, err)
	})

	t.Run("rejects missing due date", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.CreateTask(ctx, plan.Task{ProjectID: f.projectID, Title: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "due date")
	})

	t.Run("rejects unknown project", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.CreateTask(ctx, plan.Task{ProjectID: "ghost", Title: "x", DueDate: monday})
		require.Error(t, err)
		assert.ErrorIs(t, err, project.ErrNotFound)
	})
}

func TestPlanService_AddTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("appends in order", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))

		for _, text := range []string{"write notes", "tag build", "announce"} {
			_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: text, StartDate: monday, EstimatedHours: 1})
			require.NoError(t, err)
		}

		got, err := f.plans.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, got.Todos, 3)
		assert.Equal(t, "write notes", got.Todos[0].Text)
		assert.Equal(t, "announce", got.Todos[2].Text)
	})

	t.Run("rejects non-positive hours", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))

		for _, hours := range []float64{0, -1} {
			_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "x", StartDate: monday, EstimatedHours: hours})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "estimated hours")
		}
	})

	t.Run("rejects missing start date", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))

		_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "x", EstimatedHours: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start date")
	})

	t.Run("rejects unknown task", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.AddTodo(ctx, "ghost", plan.Todo{Text: "x", StartDate: monday, EstimatedHours: 1})
		assert.ErrorIs(t, err, plan.ErrNotFound)
	})
}

func TestPlanService_RunSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("places and persists with continuations", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
		_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 4})
		require.NoError(t, err)

		result, err := f.plans.RunSchedule(ctx, f.projectID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Placed)
		assert.Equal(t, 1, result.Continuations)
		assert.Equal(t, monday.Add(9*time.Hour), result.From)
		assert.Equal(t, monday.Add(14*time.Hour), result.To)

		// Placements survive a reload.
		got, err := f.plans.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, got.Todos, 2)
		assert.Equal(t, monday.Add(9*time.Hour), got.Todos[0].CalendarStart)
		assert.Equal(t, monday.Add(12*time.Hour), got.Todos[0].CalendarEnd)
		assert.True(t, got.Todos[1].IsContinuation())
		assert.Equal(t, monday.Add(13*time.Hour), got.Todos[1].CalendarStart)
	})

	t.Run("validation failure leaves store untouched", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))

		// Bypass service validation to simulate bad data at rest.
		require.NoError(t, f.taskStore.CreateTodo(ctx, task.ID, plan.Todo{
			ID:        "corrupt",
			Text:      "no estimate",
			StartDate: monday,
		}))

		_, err := f.plans.RunSchedule(ctx, f.projectID)
		require.Error(t, err)

		var verr *plan.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "corrupt", verr.TodoID)

		got, err := f.plans.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, got.Todos, 1)
		assert.True(t, got.Todos[0].CalendarStart.IsZero())
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.plans.RunSchedule(ctx, "ghost")
		assert.ErrorIs(t, err, project.ErrNotFound)
	})

	t.Run("rerun after committed split persists unique ids", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
		_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 4})
		require.NoError(t, err)

		// First run commits a split: the continuation row survives as a
		// regular todo.
		_, err = f.plans.RunSchedule(ctx, f.projectID)
		require.NoError(t, err)

		// An earlier-due task shifts "build" into the break on the rerun,
		// so it splits again next to its persisted continuation.
		urgent := f.createTask(t, "hotfix", monday.AddDate(0, 0, 1))
		_, err = f.plans.AddTodo(ctx, urgent.ID, plan.Todo{Text: "patch", StartDate: monday, EstimatedHours: 1})
		require.NoError(t, err)

		_, err = f.plans.RunSchedule(ctx, f.projectID)
		require.NoError(t, err)

		got, err := f.plans.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, got.Todos, 3)

		seen := map[string]int{}
		for _, td := range got.Todos {
			seen[td.ID]++
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "todo id %s duplicated within its task", id)
		}
	})

	t.Run("rerun over same input is stable", func(t *testing.T) {
		f := newFixture(t)
		task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
		_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 2})
		require.NoError(t, err)

		first, err := f.plans.RunSchedule(ctx, f.projectID)
		require.NoError(t, err)
		second, err := f.plans.RunSchedule(ctx, f.projectID)
		require.NoError(t, err)

		assert.Equal(t, first.Placed, second.Placed)
		assert.Equal(t, first.From, second.From)
		assert.Equal(t, first.To, second.To)
	})
}

func TestPlanService_PreviewSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := f.createTask(t, "release prep", monday.AddDate(0, 0, 4))
	_, err := f.plans.AddTodo(ctx, task.ID, plan.Todo{Text: "build", StartDate: monday, EstimatedHours: 2})
	require.NoError(t, err)

	result, err := f.plans.PreviewSchedule(ctx, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Placed)

	// Nothing was written.
	got, err := f.plans.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Todos[0].CalendarStart.IsZero())
}
