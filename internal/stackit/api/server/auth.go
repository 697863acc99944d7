package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/services/authservice"
)

// (POST /auth/register).
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req authservice.RegisterRequest

	if err := s.decode(r, &req); err != nil {
		s.handleError(w, err)

		return
	}

	u, err := s.authService.Register(r.Context(), req)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Login takes an OAuth2 password form.
// (POST /auth/login).
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.handleError(w, &validation.Error{Fields: map[string]string{"body": "must be a form"}})

		return
	}

	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	missing := map[string]string{}
	if username == "" {
		missing["username"] = "is required"
	}

	if password == "" {
		missing["password"] = "is required"
	}

	if len(missing) != 0 {
		s.handleError(w, &validation.Error{Fields: missing})

		return
	}

	resp, err := s.authService.Login(r.Context(), username, password)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// (GET /auth/me).
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

// (PUT /auth/me).
func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req authservice.UpdateRequest

	if err := s.decode(r, &req); err != nil {
		s.handleError(w, err)

		return
	}

	u, err := s.authService.UpdateMe(r.Context(), currentUser(r), req)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, u)
}
