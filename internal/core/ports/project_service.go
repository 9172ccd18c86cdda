package ports

import (
	"context"
	"time"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name        string
	Description string
	ClientID    int64
	StartDate   time.Time
	Deadline    time.Time
	Budget      string
	Status      domain.ProjectStatus
}

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id int64, in ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*domain.Project, error)
}
