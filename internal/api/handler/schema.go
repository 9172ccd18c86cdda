package handler

import (
	"time"

	"github.com/freelancehub/tracker/internal/core/domain"
)

const dateLayout = "2006-01-02"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token  string      `json:"token"`
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN FREELANCER"`
}

// --- Clients ---

type clientRequest struct {
	Name          string `json:"name"           validate:"required,max=200"`
	Email         string `json:"email"          validate:"omitempty,email"`
	ContactPerson string `json:"contact_person" validate:"max=200"`
}

// --- Projects ---

type projectRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description"`
	ClientID    int64  `json:"client_id"   validate:"required,gt=0"`
	StartDate   string `json:"start_date"  validate:"omitempty,datetime=2006-01-02"`
	Deadline    string `json:"deadline"    validate:"required,datetime=2006-01-02"`
	Budget      string `json:"budget"      validate:"omitempty,numeric"`
	Status      string `json:"status"      validate:"omitempty,oneof=PLANNED IN_PROGRESS COMPLETED CANCELLED"`
}

type projectResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	ClientID       int64  `json:"client_id"`
	AssignedUserID int64  `json:"assigned_user_id"`
	StartDate      string `json:"start_date,omitempty"`
	Deadline       string `json:"deadline"`
	Budget         string `json:"budget,omitempty"`
	Status         string `json:"status"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		ClientID:       p.ClientID,
		AssignedUserID: p.AssignedUserID,
		StartDate:      formatDate(p.StartDate),
		Deadline:       formatDate(p.Deadline),
		Budget:         p.Budget,
		Status:         string(p.Status),
	}
}

// --- Audit ---

type auditRecordResponse struct {
	ChangedAt  string `json:"changed_at"`
	ActingRole string `json:"acting_role"`
	EntityName string `json:"entity_name"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
