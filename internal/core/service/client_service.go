package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

const clientEntity = "Client"

type clientService struct {
	repo  ports.ClientRepository
	audit ports.AuditService
	log   zerolog.Logger
}

// NewClientService returns a ClientService that audits every change.
func NewClientService(repo ports.ClientRepository, audit ports.AuditService, log zerolog.Logger) ports.ClientService {
	return &clientService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "clients").Logger(),
	}
}

func (s *clientService) Create(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
	if _, err := actingIdentity(ctx); err != nil {
		return nil, err
	}
	c, err := clientFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.audit.Record(ctx, clientEntity, domain.AuditNoValue, c.String())
	s.log.Info().Int64("client_id", c.ID).Msg("client created")
	return c, nil
}

func (s *clientService) Update(ctx context.Context, id int64, in ports.ClientInput) (*domain.Client, error) {
	if _, err := actingIdentity(ctx); err != nil {
		return nil, err
	}
	c, err := clientFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id

	oldValue := s.previous(ctx, id)

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if !updated {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, clientEntity, oldValue, c.String())
	return c, nil
}

func (s *clientService) Delete(ctx context.Context, id int64) error {
	if _, err := actingIdentity(ctx); err != nil {
		return err
	}
	oldValue := s.previous(ctx, id)

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if !removed {
		return domain.ErrNotFound
	}

	s.audit.Record(ctx, clientEntity, oldValue, domain.AuditDeleted)
	return nil
}

func (s *clientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *clientService) List(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	return s.repo.List(ctx, filter)
}

func (s *clientService) previous(ctx context.Context, id int64) string {
	c, err := s.repo.FindByID(ctx, id)
	return previousValue(c, err, s.log)
}

func clientFromInput(in ports.ClientInput) (*domain.Client, error) {
	c := &domain.Client{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
		}
	}
	return c, nil
}

// previousValue renders the state an update or delete is about to replace.
func previousValue(v fmt.Stringer, err error, log zerolog.Logger) string {
	switch {
	case err == nil:
		return v.String()
	case errors.Is(err, domain.ErrNotFound):
		return domain.AuditNotFound
	default:
		log.Warn().Err(err).Msg("could not read previous state for audit")
		return domain.AuditReadError
	}
}
