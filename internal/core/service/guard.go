package service

import (
	"context"

	"github.com/freelancehub/tracker/internal/core/domain"
)

func actingIdentity(ctx context.Context) (domain.Identity, error) {
	id, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

func requireAdmin(ctx context.Context) error {
	id, err := actingIdentity(ctx)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
