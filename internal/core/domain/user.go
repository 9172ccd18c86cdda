package domain

import "time"

// Role identifies what an authenticated actor may do. The string values are
// the ones stored in the credential file.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleFreelancer Role = "FREELANCER"
)

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleFreelancer:
		return Role(s), true
	}
	return "", false
}

// User models an account that can sign in to the tracker.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PrimaryAdminID is the bootstrap administrator, which can never be deleted.
const PrimaryAdminID int64 = 1

// CredentialSeparator is the line between records in the credential file.
// No field of a record, the username included, may equal it.
const CredentialSeparator = "--"
