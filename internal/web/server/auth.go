package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
)

const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgWelcome        = "Welcome back!"
	msgRegistered     = "Account created successfully!"
)

type authPage struct {
	Username string
	Email    string
	FullName string
}

// (GET /login).
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login", "Sign in", authPage{})
}

// (POST /login) form: username, password.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	username := r.FormValue("username")

	err := s.sessions.Login(r.Context(), ws.ID, ws.Session, username, r.FormValue("password"))
	if err != nil {
		s.flash(r.Context(), ws, session.FlashError, views.Failure(err, msgLoginFailed))
		s.render(w, r, "login", "Sign in", authPage{Username: username})

		return
	}

	ws.Bind(ws.Session.Token())
	s.flash(r.Context(), ws, session.FlashSuccess, msgWelcome)
	redirect(w, r, "/")
}

// (GET /register).
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register", "Create account", authPage{})
}

// (POST /register) form: username, email, full_name, password.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	req := gateway.RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("full_name"),
		Password: r.FormValue("password"),
	}

	if err := s.sessions.Register(r.Context(), ws.ID, ws.Session, req); err != nil {
		s.flash(r.Context(), ws, session.FlashError, views.Failure(err, msgRegisterFailed))
		s.render(w, r, "register", "Create account", authPage{
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
		})

		return
	}

	ws.Bind(ws.Session.Token())
	s.flash(r.Context(), ws, session.FlashSuccess, msgRegistered)
	redirect(w, r, "/")
}

// (POST /logout).
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)

	if err := s.sessions.Logout(r.Context(), ws.ID, ws.Session); err != nil {
		s.lg.Errorf("logout error: %s", err.Error())
	}

	s.workspaces.Drop(ws.ID)
	redirect(w, r, "/login")
}
