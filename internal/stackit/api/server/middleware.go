package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/Leopold1975/stackit/pkg/logger"
)

type userKey struct{}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				logg.Infof("METHOD %s URI %s %s STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.URL.RequestURI(),
					r.Proto,
					rr.Code,
					time.Since(start).String(),
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= http.StatusInternalServerError && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			if _, err := rr.Body.WriteTo(w); err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}

// requireUser resolves the bearer token to an active user and stores it in the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.handleError(w, services.Fail(services.ErrUnauthorized, "Not authenticated"))

			return
		}

		u, err := s.authService.Auth(r.Context(), token)
		if err != nil {
			s.handleError(w, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

// requireAdmin must run after requireUser.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			s.handleError(w, services.Fail(services.ErrForbidden, "Not enough permissions"))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(userKey{}).(models.User)

	return u
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}
