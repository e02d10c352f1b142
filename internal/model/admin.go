package model

import "time"

// Admin is a back-office account.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a DB-backed admin login.
type Session struct {
	Token     string    `json:"-"`
	AdminID   string    `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionChange is emitted when an admin session starts or ends.
type SessionChange struct {
	Token   string
	AdminID string
	Ended   bool
}
