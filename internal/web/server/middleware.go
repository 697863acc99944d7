package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Leopold1975/stackit/internal/web/gateway"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/google/uuid"
)

const sessionCookie = "stackit_sid"

type workspaceKey struct{}

// statusWriter records the status code while passing writes through, so event
// streams can still flush.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.code == 0 {
		sw.code = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.code == 0 {
		sw.code = http.StatusOK
	}

	return sw.ResponseWriter.Write(b) //nolint:wrapcheck
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			defer func() {
				logg.Infof("METHOD %s URI %s %s STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.URL.RequestURI(),
					r.Proto,
					sw.code,
					time.Since(start).String(),
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// withWorkspace attaches the session's workspace, issuing a session cookie on first
// visit and resolving the auth context while it is still uninitialized.
func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""

		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}

		if sid == "" {
			sid = uuid.NewString()

			http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}

		ws := s.workspaces.Get(sid)

		if ws.Session.State() == session.Uninitialized {
			s.resolve(r.Context(), ws)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, ws)))
	})
}

func (s *Server) gate(req session.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := session.Gate(req, workspace(r).Session)

			switch {
			case d.Spinner:
				s.pages.spinner(w)
			case d.Redirect != "":
				redirect(w, r, d.Redirect)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (s *Server) resolve(ctx context.Context, ws *views.Workspace) {
	if err := s.sessions.Resolve(ctx, ws.ID, ws.Session); err != nil {
		s.lg.Errorf("resolve session error: %s", err.Error())
	}

	ws.Bind(ws.Session.Token())
}

// expired handles a token the API no longer accepts: the session is resolved again,
// which drops it, and the browser is sent to the login page.
func (s *Server) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}

	s.resolve(r.Context(), workspace(r))
	redirect(w, r, "/login")

	return true
}

func (s *Server) flash(ctx context.Context, ws *views.Workspace, kind, msg string) {
	if msg == "" {
		return
	}

	if err := s.sessions.Flash(ctx, ws.ID, kind, msg); err != nil {
		s.lg.Warnf("flash error: %s", err.Error())
	}
}

func workspace(r *http.Request) *views.Workspace {
	ws, _ := r.Context().Value(workspaceKey{}).(*views.Workspace)

	return ws
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
