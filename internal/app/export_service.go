package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/planora/planora/internal/core/export"
	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
)

// ExportService builds and restores export documents.
type ExportService struct {
	projects project.Store
	tasks    plan.Store
	log      zerolog.Logger
	now      func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(projects project.Store, tasks plan.Store, log zerolog.Logger) *ExportService {
	return &ExportService{
		projects: projects,
		tasks:    tasks,
		log:      log.With().Str("component", "export-service").Logger(),
		now:      time.Now,
	}
}

// Export collects projects whose name matches the glob pattern into a
// document. An empty pattern exports everything.
func (s *ExportService) Export(ctx context.Context, pattern string) (export.Document, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return export.Document{}, fmt.Errorf("list projects: %w", err)
	}

	doc := export.Document{
		Version:    export.Version,
		ExportedAt: s.now().UTC(),
	}

	for _, p := range projects {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, p.Name)
			if err != nil {
				return export.Document{}, fmt.Errorf("invalid project pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}

		members, err := s.projects.ListMembers(ctx, p.ID)
		if err != nil {
			return export.Document{}, fmt.Errorf("list members for %q: %w", p.Name, err)
		}
		tasks, err := s.tasks.ListTasks(ctx, plan.ListFilter{ProjectID: p.ID})
		if err != nil {
			return export.Document{}, fmt.Errorf("list tasks for %q: %w", p.Name, err)
		}

		doc.Projects = append(doc.Projects, export.ProjectExport{
			Project: p,
			Members: members,
			Tasks:   tasks,
		})
	}

	return doc, nil
}

// ImportResult summarizes what an import created.
type ImportResult struct {
	Projects int `json:"projects"`
	Members  int `json:"members"`
	Tasks    int `json:"tasks"`
}

// Import restores a decoded document. Every project in the document must
// be absent from the database; collisions abort the import before any
// write happens.
func (s *ExportService) Import(ctx context.Context, doc export.Document) (ImportResult, error) {
	for _, pe := range doc.Projects {
		_, err := s.projects.GetByName(ctx, pe.Project.Name)
		if err == nil {
			return ImportResult{}, fmt.Errorf("import: project %q: %w", pe.Project.Name, project.ErrDuplicate)
		}
		if !errors.Is(err, project.ErrNotFound) {
			return ImportResult{}, fmt.Errorf("import: check project %q: %w", pe.Project.Name, err)
		}
	}

	var result ImportResult
	for _, pe := range doc.Projects {
		if err := s.projects.Create(ctx, pe.Project); err != nil {
			return result, fmt.Errorf("import project %q: %w", pe.Project.Name, err)
		}
		result.Projects++

		for _, m := range pe.Members {
			if err := s.projects.AddMember(ctx, m); err != nil {
				return result, fmt.Errorf("import member %q: %w", m.Name, err)
			}
			result.Members++
		}

		for _, task := range pe.Tasks {
			if err := s.tasks.CreateTask(ctx, task); err != nil {
				return result, fmt.Errorf("import task %q: %w", task.Title, err)
			}
			result.Tasks++
		}
	}

	s.log.Info().
		Int("projects", result.Projects).
		Int("tasks", result.Tasks).
		Msg("import completed")

	return result, nil
}
