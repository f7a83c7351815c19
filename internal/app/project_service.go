package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planora/planora/internal/core/project"
	"github.com/planora/planora/internal/core/validate"
	"github.com/planora/planora/pkg/randid"
)

// ProjectService wraps project.Store with domain logic for project and
// member management.
type ProjectService struct {
	store project.Store
	log   zerolog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store project.Store, log zerolog.Logger) *ProjectService {
	return &ProjectService{
		store: store,
		log:   log.With().Str("component", "project-service").Logger(),
	}
}

// Create validates and persists a new project.
func (s *ProjectService) Create(ctx context.Context, p project.Project) (project.Project, error) {
	if err := validate.NameField("name", p.Name); err != nil {
		return project.Project{}, err
	}

	if p.ID == "" {
		p.ID = randid.Generate(8)
	}

	if err := s.store.Create(ctx, p); err != nil {
		return project.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.log.Info().Str("project", p.ID).Str("name", p.Name).Msg("project created")
	return p, nil
}

// Resolve finds a project by ID, falling back to name lookup. CLI commands
// accept either form.
func (s *ProjectService) Resolve(ctx context.Context, ref string) (project.Project, error) {
	p, err := s.store.Get(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, project.ErrNotFound) {
		return project.Project{}, err
	}
	return s.store.GetByName(ctx, ref)
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]project.Project, error) {
	return s.store.List(ctx)
}

// Delete removes a project and everything attached to it.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.log.Info().Str("project", id).Msg("project deleted")
	return nil
}

// AddMember validates and attaches a member to a project.
func (s *ProjectService) AddMember(ctx context.Context, m project.Member) (project.Member, error) {
	if err := validate.NameField("name", m.Name); err != nil {
		return project.Member{}, err
	}
	if m.Role == "" {
		m.Role = project.RoleMember
	}
	if !m.Role.IsValid() {
		return project.Member{}, fmt.Errorf("invalid role %q: must be one of owner, member, viewer", m.Role)
	}
	if _, err := s.store.Get(ctx, m.ProjectID); err != nil {
		return project.Member{}, fmt.Errorf("add member: %w", err)
	}

	if m.ID == "" {
		m.ID = randid.Generate(8)
	}

	if err := s.store.AddMember(ctx, m); err != nil {
		return project.Member{}, fmt.Errorf("add member: %w", err)
	}

	return m, nil
}

// ListMembers returns a project's members.
func (s *ProjectService) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	return s.store.ListMembers(ctx, projectID)
}

// RemoveMember removes a member by ID.
func (s *ProjectService) RemoveMember(ctx context.Context, id string) error {
	return s.store.RemoveMember(ctx, id)
}
