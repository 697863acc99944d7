package authservice

import "github.com/Leopold1975/stackit/internal/stackit/domain/models"

type RegisterRequest struct {
	Username string `json:"username"  validate:"required,min=3,max=50"`
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=100"` //nolint:tagliatelle
	Password string `json:"password"  validate:"required,min=6"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Username *string `json:"username,omitempty"  validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty"     validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"` //nolint:tagliatelle
	Password *string `json:"password,omitempty"  validate:"omitempty,min=6"`
}

func (r UpdateRequest) empty() bool {
	return r.Username == nil && r.Email == nil && r.FullName == nil && r.Password == nil
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"` //nolint:tagliatelle
	TokenType   string      `json:"token_type"`   //nolint:tagliatelle
	User        models.User `json:"user"`
}
