package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, domain.Identity, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
