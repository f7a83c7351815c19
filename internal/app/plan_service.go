package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/internal/core/validate"
	"github.com/planora/planora/pkg/randid"
)

// PlanService wraps plan.Store with task/todo domain logic and runs the
// auto-scheduler over a project's tasks.
type PlanService struct {
	tasks    plan.Store
	projects project.Store
	hours    plan.Hours
	log      zerolog.Logger
	now      func() time.Time
}

// NewPlanService creates a new PlanService.
func NewPlanService(tasks plan.Store, projects project.Store, hours plan.Hours, log zerolog.Logger) *PlanService {
	return &PlanService{
		tasks:    tasks,
		projects: projects,
		hours:    hours,
		log:      log.With().Str("component", "plan-service").Logger(),
		now:      time.Now,
	}
}

// RunResult summarizes one scheduling run.
type RunResult struct {
	Tasks         []plan.Task `json:"tasks"`
	Placed        int         `json:"placed"`
	Continuations int         `json:"continuations"`
	From          time.Time   `json:"from,omitzero"`
	To            time.Time   `json:"to,omitzero"`
}

// RunSchedule executes a scheduling run over the project's tasks and
// commits the result in a single transaction. On any error the previously
// persisted state is left untouched.
func (s *PlanService) RunSchedule(ctx context.Context, projectID string) (RunResult, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return RunResult{}, fmt.Errorf("run schedule: %w", err)
	}

	tasks, err := s.tasks.ListTasks(ctx, plan.ListFilter{ProjectID: projectID})
	if err != nil {
		return RunResult{}, fmt.Errorf("load tasks for schedule: %w", err)
	}

	scheduler := plan.NewScheduler(s.hours, plan.WithClock(s.now))
	scheduled, err := scheduler.Schedule(tasks)
	if err != nil {
		return RunResult{}, fmt.Errorf("schedule: %w", err)
	}

	if err := s.tasks.ReplaceTodos(ctx, scheduled); err != nil {
		return RunResult{}, fmt.Errorf("persist schedule: %w", err)
	}

	result := summarize(scheduled)
	s.log.Info().
		Str("project", projectID).
		Int("placed", result.Placed).
		Int("continuations", result.Continuations).
		Msg("schedule run committed")

	return result, nil
}

// PreviewSchedule computes a run without persisting it.
func (s *PlanService) PreviewSchedule(ctx context.Context, projectID string) (RunResult, error) {
	tasks, err := s.tasks.ListTasks(ctx, plan.ListFilter{ProjectID: projectID})
	if err != nil {
		return RunResult{}, fmt.Errorf("load tasks for preview: %w", err)
	}

	scheduled, err := plan.NewScheduler(s.hours, plan.WithClock(s.now)).Schedule(tasks)
	if err != nil {
		return RunResult{}, fmt.Errorf("schedule: %w", err)
	}

	return summarize(scheduled), nil
}

// CreateTask validates and persists a new task.
func (s *PlanService) CreateTask(ctx context.Context, task plan.Task) (plan.Task, error) {
	if err := validate.NameField("title", task.Title); err != nil {
		return plan.Task{}, err
	}
	if task.DueDate.IsZero() {
		return plan.Task{}, fmt.Errorf("task %q: due date is required", task.Title)
	}
	if _, err := s.projects.Get(ctx, task.ProjectID); err != nil {
		return plan.Task{}, fmt.Errorf("create task: %w", err)
	}

	if task.ID == "" {
		task.ID = randid.Generate(8)
	}
	task.DueDate = plan.Day(task.DueDate)

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return plan.Task{}, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// AddTodo validates and appends a todo to a task. Malformed estimates are
// rejected here rather than defaulted, so bad data never reaches a
// scheduling run.
func (s *PlanService) AddTodo(ctx context.Context, taskID string, td plan.Todo) (plan.Todo, error) {
	if err := validate.NameField("text", td.Text); err != nil {
		return plan.Todo{}, err
	}
	if td.EstimatedHours <= 0 || math.IsNaN(td.EstimatedHours) || math.IsInf(td.EstimatedHours, 0) {
		return plan.Todo{}, fmt.Errorf("todo %q: estimated hours must be positive, got %v", td.Text, td.EstimatedHours)
	}
	if td.StartDate.IsZero() {
		return plan.Todo{}, fmt.Errorf("todo %q: start date is required", td.Text)
	}

	if td.ID == "" {
		td.ID = randid.Generate(8)
	}
	td.StartDate = plan.Day(td.StartDate)

	if err := s.tasks.CreateTodo(ctx, taskID, td); err != nil {
		return plan.Todo{}, fmt.Errorf("add todo: %w", err)
	}

	return td, nil
}

// CompleteTodo marks a todo as completed.
func (s *PlanService) CompleteTodo(ctx context.Context, todoID string) error {
	if err := s.tasks.CompleteTodo(ctx, todoID); err != nil {
		return fmt.Errorf("complete todo: %w", err)
	}
	return nil
}

// ListTasks returns tasks matching the filter with todos attached.
func (s *PlanService) ListTasks(ctx context.Context, filter plan.ListFilter) ([]plan.Task, error) {
	return s.tasks.ListTasks(ctx, filter)
}

// GetTask returns a single task with its todos.
func (s *PlanService) GetTask(ctx context.Context, id string) (plan.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// DeleteTask removes a task and its todos.
func (s *PlanService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.DeleteTask(ctx, id)
}

// summarize derives run statistics from a scheduled task collection.
func summarize(tasks []plan.Task) RunResult {
	result := RunResult{Tasks: tasks}

	for _, task := range tasks {
		for _, td := range task.Todos {
			if td.Completed || td.CalendarStart.IsZero() {
				continue
			}
			result.Placed++
			if td.IsContinuation() {
				result.Continuations++
			}
			if result.From.IsZero() || td.CalendarStart.Before(result.From) {
				result.From = td.CalendarStart
			}
			if td.CalendarEnd.After(result.To) {
				result.To = td.CalendarEnd
			}
		}
	}

	return result
}
