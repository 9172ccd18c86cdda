package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// ListProjectsFilter carries optional project search criteria.
type ListProjectsFilter struct {
	Name   string               // optional: case-insensitive partial match
	Status domain.ProjectStatus // optional
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*domain.Project, error)
	// FindAllInProgress is what the deadline poller reads every cycle.
	FindAllInProgress(ctx context.Context) ([]*domain.Project, error)
}
