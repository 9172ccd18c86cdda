package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

const projectEntity = "Project"

type projectService struct {
	repo  ports.ProjectRepository
	audit ports.AuditService
	log   zerolog.Logger
}

// NewProjectService returns a ProjectService that audits every change.
func NewProjectService(repo ports.ProjectRepository, audit ports.AuditService, log zerolog.Logger) ports.ProjectService {
	return &projectService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "projects").Logger(),
	}
}

// Create stores a new project assigned to the acting user.
func (s *projectService) Create(ctx context.Context, in ports.ProjectInput) (*domain.Project, error) {
	id, err := actingIdentity(ctx)
	if err != nil {
		return nil, err
	}
	p, err := projectFromInput(in)
	if err != nil {
		return nil, err
	}
	p.AssignedUserID = id.UserID

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.audit.Record(ctx, projectEntity, domain.AuditNoValue, p.String())
	s.log.Info().Int64("project_id", p.ID).Int64("assigned_user_id", p.AssignedUserID).Msg("project created")
	return p, nil
}

// Update replaces the editable fields. The assignee is kept from the stored
// project when it can be read, otherwise the acting user takes it over.
func (s *projectService) Update(ctx context.Context, id int64, in ports.ProjectInput) (*domain.Project, error) {
	actor, err := actingIdentity(ctx)
	if err != nil {
		return nil, err
	}
	p, err := projectFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.AssignedUserID = actor.UserID

	prev, readErr := s.repo.FindByID(ctx, id)
	oldValue := previousValue(prev, readErr, s.log)
	if readErr == nil && prev.AssignedUserID != 0 {
		p.AssignedUserID = prev.AssignedUserID
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if !updated {
		return nil, domain.ErrNotFound
	}

	s.audit.Record(ctx, projectEntity, oldValue, p.String())
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	if _, err := actingIdentity(ctx); err != nil {
		return err
	}
	prev, readErr := s.repo.FindByID(ctx, id)
	oldValue := previousValue(prev, readErr, s.log)

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !removed {
		return domain.ErrNotFound
	}

	s.audit.Record(ctx, projectEntity, oldValue, domain.AuditDeleted)
	return nil
}

func (s *projectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, filter ports.ListProjectsFilter) ([]*domain.Project, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

func projectFromInput(in ports.ProjectInput) (*domain.Project, error) {
	p := &domain.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ClientID:    in.ClientID,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Budget:      strings.TrimSpace(in.Budget),
		Status:      in.Status,
	}
	if p.Status == "" {
		p.Status = domain.StatusPlanned
	}

	switch {
	case p.Name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	case p.ClientID <= 0:
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	case !p.Status.Valid():
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, p.Status)
	case p.Deadline.IsZero():
		return nil, fmt.Errorf("%w: deadline is required", domain.ErrValidation)
	case !p.StartDate.IsZero() && p.Deadline.Before(p.StartDate):
		return nil, fmt.Errorf("%w: deadline is before start date", domain.ErrValidation)
	}
	if p.Budget != "" && !isDecimal(p.Budget) {
		return nil, fmt.Errorf("%w: budget must be a decimal amount", domain.ErrValidation)
	}
	return p, nil
}

// isDecimal accepts plain non-negative amounts such as "1500" or "1500.50".
func isDecimal(s string) bool {
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && frac == "") {
		return false
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
