// Package server renders the forum pages and routes browser actions to the views of
// the session's workspace.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/sanitize"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	heartbeatInterval = 30 * time.Second
	// reconnectDelay is the retry hint sent to EventSource clients.
	reconnectDelay = 500 * time.Millisecond
)

type Server struct {
	serv       *http.Server
	sessions   *session.Manager
	workspaces *views.Registry
	pages      *pages
	lg         logger.Logger

	done     chan struct{}
	doneOnce sync.Once
}

func New(cfg config.Server, sessions *session.Manager, workspaces *views.Registry, lg logger.Logger) (*Server, error) {
	p, err := newPages(sanitize.New())
	if err != nil {
		return nil, fmt.Errorf("parse templates error: %w", err)
	}

	s := &Server{
		sessions:   sessions,
		workspaces: workspaces,
		pages:      p,
		lg:         lg,
		done:       make(chan struct{}),
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// Handler builds the router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(s.lg), s.withWorkspace)

	r.Group(func(r chi.Router) {
		r.Use(s.gate(session.Public))

		r.Get("/", s.Home)
		r.Post("/vote/{id}", s.HomeVote)

		r.Get("/search", s.Search)
		r.Post("/search/live", s.SearchLive)
		r.Get("/search/events", s.SearchEvents)
		r.Post("/search/vote/{id}", s.SearchVote)

		r.Get("/question/{id}", s.Question)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.gate(session.RequireAnonymous))

		r.Get("/login", s.LoginPage)
		r.Post("/login", s.Login)
		r.Get("/register", s.RegisterPage)
		r.Post("/register", s.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.gate(session.RequireUser))

		r.Post("/logout", s.Logout)

		r.Get("/ask", s.AskPage)
		r.Post("/ask", s.Ask)

		r.Post("/question/{id}/vote", s.QuestionVote)
		r.Post("/question/{id}/answers", s.PostAnswer)
		r.Post("/question/{id}/answers/{aid}/vote", s.AnswerVote)
		r.Post("/question/{id}/answers/{aid}/accept", s.AcceptAnswer)
		r.Post("/question/{id}/delete", s.RequestDelete)
		r.Post("/question/{id}/delete/confirm", s.ConfirmDelete)
		r.Post("/question/{id}/delete/cancel", s.CancelDelete)
		r.Get("/question/{id}/edit", s.EditPage)
		r.Post("/question/{id}/edit", s.Edit)

		r.Post("/shell/notifications", s.ToggleNotifications)
		r.Post("/shell/menu", s.ToggleUserMenu)
	})

	r.With(s.gate(session.Public)).Post("/shell/pointer", s.Pointer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

// Shutdown stops the listener and unmounts every workspace, which ends open event
// streams and pending search timers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.doneOnce.Do(func() { close(s.done) })
	s.workspaces.Close()

	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
