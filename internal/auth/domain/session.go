package domain

import "time"

// Session is the read-only view of an authenticated caller handed to
// handlers. It is rebuilt from the directory on every request.
type Session struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession projects the public fields of u.
func NewSession(u User) Session {
	s := Session{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
	if u.Phone != nil {
		s.Phone = *u.Phone
	}
	return s
}
