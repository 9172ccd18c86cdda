package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	// List returns the clients matching filter, ordered by name.
	List(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, error)
}
