package domain

import (
	"fmt"
	"time"
)

// Reminder is raised once per project when its deadline comes close.
type Reminder struct {
	ProjectID     int64     `json:"project_id"`
	ProjectName   string    `json:"project_name"`
	DaysRemaining int       `json:"days_remaining"`
	RaisedAt      time.Time `json:"raised_at"`
}

// Message is the human-readable text shown to the user.
func (r Reminder) Message() string {
	return fmt.Sprintf("Project '%s' is due in %d day(s)!", r.ProjectName, r.DaysRemaining)
}
