package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// ClientInput carries the editable fields of a client.
type ClientInput struct {
	Name          string
	Email         string
	ContactPerson string
}

// ListClientsFilter carries optional client search criteria.
type ListClientsFilter struct {
	Name string // optional: case-insensitive partial match
}

// ClientService defines use-case operations for clients.
type ClientService interface {
	Create(ctx context.Context, in ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id int64, in ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, error)
}
