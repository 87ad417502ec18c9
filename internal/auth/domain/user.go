package domain

import "time"

// User is the durable identity consulted by authentication. ID is assigned
// by the directory on insert.
type User struct {
	ID           int64
	Username     string
	Email        string
	Phone        *string // optional, unique when present
	FullName     string
	PasswordHash string // bcrypt modular crypt
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch is the allow-listed set of fields a user may change about
// themselves. Nil fields are left untouched; an empty Phone clears it.
type ProfilePatch struct {
	FullName *string
	Phone    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil
}

// UserCounts summarises the directory.
type UserCounts struct {
	Total  int64
	Active int64
}
