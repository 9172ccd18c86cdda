package domain

import (
	"fmt"
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	StatusPlanned    ProjectStatus = "PLANNED"
	StatusInProgress ProjectStatus = "IN_PROGRESS"
	StatusCompleted  ProjectStatus = "COMPLETED"
	StatusCancelled  ProjectStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project is a piece of work for a client, assigned to one user.
type Project struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	ClientID       int64         `json:"client_id"`
	AssignedUserID int64         `json:"assigned_user_id"`
	StartDate      time.Time     `json:"start_date"`
	Deadline       time.Time     `json:"deadline"`
	Budget         string        `json:"budget"` // decimal, e.g. "1500.00"
	Status         ProjectStatus `json:"status"`
}

// String is the representation stored in audit records.
func (p Project) String() string {
	return fmt.Sprintf("Project{id=%d, name=%q, status=%s}", p.ID, p.Name, p.Status)
}

// DaysUntil returns the number of calendar days from today to the deadline,
// negative once the deadline has passed. The deadline is a date: only its
// year, month and day are used.
func (p Project) DaysUntil(today time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(p.Deadline.Year(), p.Deadline.Month(), p.Deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
