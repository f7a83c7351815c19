package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/data/db"
	"github.com/planora/planora/pkg/randid"
)

// TaskStore implements plan.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ plan.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// CreateTask persists a task and any todos it carries in one transaction.
// Generates IDs where not set.
func (s *TaskStore) CreateTask(ctx context.Context, task plan.Task) error {
	if task.ID == "" {
		task.ID = randid.Generate(8)
	}

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, project_id, title, assignee, due_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.ProjectID, task.Title, toNullString(task.Assignee),
			toNano(task.DueDate), task.CreatedAt.UnixNano(), task.UpdatedAt.UnixNano(),
		)
		if err != nil {
			return err
		}

		for i, td := range task.Todos {
			if err := insertTodo(ctx, tx, task.ID, td, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return plan.ErrDuplicate
		}
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// GetTask returns a task with its todos. Returns ErrNotFound if not found.
func (s *TaskStore) GetTask(ctx context.Context, id string) (plan.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, project_id, title, assignee, due_date, created_at, updated_at FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err != nil {
		if IsNotFoundError(err) {
			return plan.Task{}, plan.ErrNotFound
		}
		return plan.Task{}, fmt.Errorf("get task: %w", err)
	}

	task.Todos, err = s.todosForTask(ctx, task.ID)
	if err != nil {
		return plan.Task{}, err
	}

	return task, nil
}

// ListTasks returns tasks matching the filter, todos attached, ordered by
// due date ascending.
func (s *TaskStore) ListTasks(ctx context.Context, filter plan.ListFilter) ([]plan.Task, error) {
	query := `SELECT id, project_id, title, assignee, due_date, created_at, updated_at FROM tasks`
	var (
		where []string
		args  []any
	)
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Assignee != "" {
		where = append(where, "assignee = ?")
		args = append(args, filter.Assignee)
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY due_date, id"

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []plan.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].Todos, err = s.todosForTask(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// DeleteTask removes a task and its todos. Returns ErrNotFound if absent.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		return plan.ErrNotFound
	}

	return nil
}

// CreateTodo appends a todo to a task.
func (s *TaskStore) CreateTodo(ctx context.Context, taskID string, td plan.Todo) error {
	if td.ID == "" {
		td.ID = randid.Generate(8)
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, taskID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return plan.ErrNotFound
		}

		var next int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM todos WHERE task_id = ?`, taskID).Scan(&next)
		if err != nil {
			return err
		}

		return insertTodo(ctx, tx, taskID, td, next)
	})
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			return plan.ErrNotFound
		}
		return fmt.Errorf("create todo: %w", err)
	}

	return nil
}

// CompleteTodo marks a todo as completed.
func (s *TaskStore) CompleteTodo(ctx context.Context, todoID string) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE todos SET completed = 1 WHERE id = ?`, todoID)
	if err != nil {
		return fmt.Errorf("complete todo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete todo rows affected: %w", err)
	}
	if n == 0 {
		return plan.ErrNotFound
	}

	return nil
}

// ReplaceTodos swaps each task's todo rows for the given ones in a single
// transaction. This is how a scheduling run's output is committed: either
// the whole collection is adopted or nothing is.
func (s *TaskStore) ReplaceTodos(ctx context.Context, tasks []plan.Task) error {
	err := retryBusy(func() error {
		return s.db.WithTx(ctx, func(tx *sql.Tx) error {
			for _, task := range tasks {
				if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE task_id = ?`, task.ID); err != nil {
					return err
				}
				for i, td := range task.Todos {
					if err := insertTodo(ctx, tx, task.ID, td, i); err != nil {
						return err
					}
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("replace todos: %w", err)
	}

	return nil
}

func insertTodo(ctx context.Context, tx *sql.Tx, taskID string, td plan.Todo, position int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO todos (id, task_id, text, completed, start_date, estimated_hours, calendar_start, calendar_end, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		td.ID, taskID, td.Text, td.Completed, toNano(td.StartDate), td.EstimatedHours,
		toNullTime(td.CalendarStart), toNullTime(td.CalendarEnd), position,
	)
	return err
}

func (s *TaskStore) todosForTask(ctx context.Context, taskID string) ([]plan.Todo, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, text, completed, start_date, estimated_hours, calendar_start, calendar_end
		 FROM todos WHERE task_id = ? ORDER BY position`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []plan.Todo
	for rows.Next() {
		var (
			td       plan.Todo
			start    int64
			calStart sql.NullInt64
			calEnd   sql.NullInt64
		)
		if err := rows.Scan(&td.ID, &td.Text, &td.Completed, &start, &td.EstimatedHours, &calStart, &calEnd); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		td.StartDate = fromNano(start)
		td.CalendarStart = fromNullTime(calStart)
		td.CalendarEnd = fromNullTime(calEnd)
		todos = append(todos, td)
	}

	return todos, rows.Err()
}

func scanTask(row rowScanner) (plan.Task, error) {
	var (
		task     plan.Task
		assignee = toNullString("")
		due      int64
		created  int64
		updated  int64
	)
	if err := row.Scan(&task.ID, &task.ProjectID, &task.Title, &assignee, &due, &created, &updated); err != nil {
		return plan.Task{}, err
	}
	task.Assignee = fromNullString(assignee)
	task.DueDate = fromNano(due)
	task.CreatedAt = fromNano(created)
	task.UpdatedAt = fromNano(updated)
	return task, nil
}
