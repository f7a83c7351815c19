// Package app wires stores and services into the planora application.
package app

import (
	"github.com/planora/planora/internal/core/config"
	"github.com/planora/planora/internal/data/db"
)

// App aggregates the services commands operate on.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Projects *ProjectService
	Plans    *PlanService
	Exports  *ExportService
}

// New creates an App from its collaborators.
func New(cfg *config.Config, database *db.DB, projects *ProjectService, plans *PlanService, exports *ExportService) *App {
	return &App{
		Config:   cfg,
		DB:       database,
		Projects: projects,
		Plans:    plans,
		Exports:  exports,
	}
}
