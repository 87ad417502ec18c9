package domain

import "time"

// Role tags describe what a user is in the booking domain. They are stored
// in a separate association so one identity can be both a client and an
// owner.
type Role string

const (
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
)

// Valid reports whether r is a known tag.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleOwner:
		return true
	}
	return false
}

// UserRole links a user to a role tag.
type UserRole struct {
	UserID    int64
	Role      Role
	CreatedAt time.Time
}
