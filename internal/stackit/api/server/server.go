package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/services/authservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/notificationservice"
	"github.com/Leopold1975/stackit/internal/stackit/services/questionservice"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	serv                *http.Server
	authService         AuthService
	questionService     QuestionService
	answerService       AnswerService
	notificationService NotificationService
	adminService        AdminService
	validate            *validation.Validator
	lg                  logger.Logger
}

type AuthService interface {
	Register(context.Context, authservice.RegisterRequest) (models.User, error)
	Login(ctx context.Context, username, password string) (authservice.LoginResponse, error)
	Auth(ctx context.Context, token string) (models.User, error)
	UpdateMe(context.Context, models.User, authservice.UpdateRequest) (models.User, error)
}

type QuestionService interface {
	CreateQuestion(context.Context, models.User, models.QuestionInput) (models.Question, error)
	ListQuestions(context.Context, questionservice.ListRequest) ([]models.Question, error)
	GetQuestion(context.Context, string) (models.Question, error)
	UpdateQuestion(context.Context, models.User, string, models.QuestionInput) (models.Question, error)
	DeleteQuestion(context.Context, models.User, string) error
	Vote(context.Context, models.User, string, models.VoteType) (string, error)
	Shutdown(context.Context) error
}

type AnswerService interface {
	CreateAnswer(context.Context, models.User, string, models.AnswerInput) (models.Answer, error)
	ListAnswers(ctx context.Context, questionID string, skip, limit int) ([]models.Answer, error)
	UpdateAnswer(context.Context, models.User, string, models.AnswerInput) (models.Answer, error)
	DeleteAnswer(context.Context, models.User, string) error
	Vote(context.Context, models.User, string, models.VoteType) (string, error)
	Accept(context.Context, models.User, string) error
}

type NotificationService interface {
	List(context.Context, models.User, notificationservice.ListRequest) ([]models.Notification, error)
	UnreadCount(context.Context, models.User) (int, error)
	MarkRead(context.Context, models.User, string) error
	MarkAllRead(context.Context, models.User) (int64, error)
	Delete(context.Context, models.User, string) error
}

type AdminService interface {
	Stats(context.Context) (models.Stats, error)
	Users(ctx context.Context, skip, limit int) ([]models.User, error)
	Ban(context.Context, models.User, string) error
	Unban(context.Context, models.User, string) error
}

// Services groups the dependencies of the HTTP layer.
type Services struct {
	Auth         AuthService
	Questions    QuestionService
	Answers      AnswerService
	Notification NotificationService
	Admin        AdminService
}

func New(cfg config.Server, svc Services, lg logger.Logger) *Server {
	s := &Server{
		authService:         svc.Auth,
		questionService:     svc.Questions,
		answerService:       svc.Answers,
		notificationService: svc.Notification,
		adminService:        svc.Admin,
		validate:            validation.New(),
		lg:                  lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler builds the router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(s.lg))

	r.Get("/health", s.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)

		r.With(s.requireUser).Get("/me", s.GetMe)
		r.With(s.requireUser).Put("/me", s.UpdateMe)
	})

	r.Route("/questions", func(r chi.Router) {
		r.Get("/", s.ListQuestions)
		r.Get("/{id}", s.GetQuestion)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/", s.CreateQuestion)
			r.Put("/{id}", s.UpdateQuestion)
			r.Delete("/{id}", s.DeleteQuestion)
			r.Post("/{id}/vote", s.VoteQuestion)
		})
	})

	r.Route("/answers", func(r chi.Router) {
		r.Get("/question/{id}", s.ListAnswers)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/", s.CreateAnswer)
			r.Put("/{id}", s.UpdateAnswer)
			r.Delete("/{id}", s.DeleteAnswer)
			r.Post("/{id}/vote", s.VoteAnswer)
			r.Post("/{id}/accept", s.AcceptAnswer)
		})
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.ListNotifications)
		r.Get("/unread-count", s.UnreadCount)
		r.Post("/mark-all-read", s.MarkAllRead)
		r.Post("/{id}/read", s.MarkRead)
		r.Delete("/{id}", s.DeleteNotification)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireUser, s.requireAdmin)
		r.Get("/stats", s.AdminStats)
		r.Get("/users", s.AdminUsers)
		r.Post("/users/{id}/ban", s.BanUser)
		r.Post("/users/{id}/unban", s.UnbanUser)
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

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	if err := s.questionService.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown question service error: %w", err)
	}

	return nil
}

// (GET /health).
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		return &validation.Error{Fields: map[string]string{"body": "must be valid JSON"}}
	}

	return s.validate.Validate(dst) //nolint:wrapcheck
}
