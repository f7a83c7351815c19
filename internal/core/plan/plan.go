// Package plan defines the task/todo domain model and the auto-scheduler
// that places todo hours onto a business-hours calendar.
package plan

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Todo is a schedulable unit of work belonging to a Task.
//
// EstimatedHours is the number of work hours to place. After a scheduling
// run, CalendarStart/CalendarEnd carry the concrete placement for this
// fragment and EstimatedHours equals the hours allocated to it; overflow
// hours live on continuation todos appended to the owning task.
type Todo struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	Completed      bool      `json:"completed"`
	StartDate      time.Time `json:"start_date"`
	EstimatedHours float64   `json:"estimated_hours"`
	CalendarStart  time.Time `json:"calendar_start,omitzero"`
	CalendarEnd    time.Time `json:"calendar_end,omitzero"`
}

// IsContinuation reports whether the todo was produced by splitting another
// todo during a scheduling run.
func (t Todo) IsContinuation() bool {
	return continuationPattern.MatchString(t.ID)
}

// Task is a named container of todos with a due date.
type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee,omitempty"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Todos     []Todo    `json:"todos"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Todos = make([]Todo, len(t.Todos))
	copy(out.Todos, t.Todos)
	return out
}

// CloneTasks deep-copies a task collection so a scheduling run never
// mutates caller-held state.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// ListFilter narrows task listings.
type ListFilter struct {
	ProjectID string
	Assignee  string
}

// Store persists tasks and their todos.
type Store interface {
	CreateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter ListFilter) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateTodo(ctx context.Context, taskID string, td Todo) error
	CompleteTodo(ctx context.Context, todoID string) error

	// ReplaceTodos swaps every listed task's todo rows for the ones on the
	// given tasks in a single transaction. Used to commit a scheduling run
	// as an all-or-nothing write.
	ReplaceTodos(ctx context.Context, tasks []Task) error
}
