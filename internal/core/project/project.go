// Package project defines the project/member domain model.
package project

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrDuplicate = errors.New("project already exists")
)

// Role classifies a member's function within a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is a supported role.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// Project is a named container for tasks and members.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is a person attached to a project.
type Member struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists projects and their members.
type Store interface {
	Create(ctx context.Context, p Project) error
	Get(ctx context.Context, id string) (Project, error)
	GetByName(ctx context.Context, name string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m Member) error
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
	RemoveMember(ctx context.Context, id string) error
}
