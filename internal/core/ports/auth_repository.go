package ports

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// CredentialStore resolves a username/password pair to an identity. It is the
// only place login decisions are made.
type CredentialStore interface {
	// Authenticate returns domain.ErrAuthentication for an unknown username or
	// a wrong password, and domain.ErrConfiguration when the store itself is
	// missing or corrupted.
	Authenticate(ctx context.Context, username, password string) (domain.Identity, error)
	// Append adds a record for user with an already hashed password.
	Append(ctx context.Context, user *domain.User, hashedPassword string) error
}

// UserRepository persists user accounts alongside the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	// DeleteByID reports whether a user was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// LoginThrottle limits repeated failed logins per username.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
