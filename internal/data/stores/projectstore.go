package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/internal/data/db"
	"github.com/planora/planora/pkg/randid"
)

// ProjectStore implements project.Store using SQLite.
type ProjectStore struct {
	db *db.DB
}

var _ project.Store = (*ProjectStore)(nil)

// NewProjectStore creates a new SQLite-backed project store.
func NewProjectStore(db *db.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create persists a new project. Generates an ID if not set. Returns
// ErrDuplicate if a project with the same name already exists.
func (s *ProjectStore) Create(ctx context.Context, p project.Project) error {
	if p.ID == "" {
		p.ID = randid.Generate(8)
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, toNullString(p.Description), p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return project.ErrDuplicate
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// Get returns a project by ID. Returns ErrNotFound if not found.
func (s *ProjectStore) Get(ctx context.Context, id string) (project.Project, error) {
	return s.getWhere(ctx, "id = ?", id)
}

// GetByName returns a project by its unique name.
func (s *ProjectStore) GetByName(ctx context.Context, name string) (project.Project, error) {
	return s.getWhere(ctx, "name = ?", name)
}

func (s *ProjectStore) getWhere(ctx context.Context, where string, arg any) (project.Project, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects WHERE `+where, arg)

	p, err := scanProject(row)
	if err != nil {
		if IsNotFoundError(err) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects ordered by name.
func (s *ProjectStore) List(ctx context.Context) ([]project.Project, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// Delete removes a project and, via cascade, its members, tasks, and todos.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if n == 0 {
		return project.ErrNotFound
	}

	return nil
}

// AddMember attaches a member to a project.
func (s *ProjectStore) AddMember(ctx context.Context, m project.Member) error {
	if m.ID == "" {
		m.ID = randid.Generate(8)
	}
	if m.Role == "" {
		m.Role = project.RoleMember
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO members (id, project_id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.Name, toNullString(m.Email), string(m.Role), m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

// ListMembers returns a project's members ordered by name.
func (s *ProjectStore) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, project_id, name, email, role, created_at FROM members WHERE project_id = ? ORDER BY name`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []project.Member
	for rows.Next() {
		var (
			m         project.Member
			email     = toNullString("")
			role      string
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &email, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Email = fromNullString(email)
		m.Role = project.Role(role)
		m.CreatedAt = fromNano(createdAt)
		members = append(members, m)
	}

	return members, rows.Err()
}

// RemoveMember removes a member by ID.
func (s *ProjectStore) RemoveMember(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove member rows affected: %w", err)
	}
	if n == 0 {
		return project.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (project.Project, error) {
	var (
		p       project.Project
		desc    = toNullString("")
		created int64
		updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &created, &updated); err != nil {
		return project.Project{}, err
	}
	p.Description = fromNullString(desc)
	p.CreatedAt = fromNano(created)
	p.UpdatedAt = fromNano(updated)
	return p, nil
}
