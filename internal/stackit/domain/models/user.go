package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"` //nolint:tagliatelle
	Role         string    `json:"role"`
	Reputation   int       `json:"reputation"`
	Active       bool      `json:"is_active"` //nolint:tagliatelle
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` //nolint:tagliatelle
	UpdatedAt    time.Time `json:"updated_at"` //nolint:tagliatelle
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModify reports whether u may edit or delete content written by authorID.
func (u User) CanModify(authorID string) bool {
	return u.ID == authorID || u.IsAdmin()
}
