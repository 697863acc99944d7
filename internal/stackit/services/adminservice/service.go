package adminservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/Leopold1975/stackit/internal/stackit/repository/userrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/Leopold1975/stackit/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type AdminService struct {
	users     UserRepository
	questions QuestionCounter
	answers   AnswerCounter
	lg        logger.Logger
}

type UserRepository interface {
	GetUserByID(context.Context, string) (models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, error)
	CountUsers(context.Context) (userrepo.Counts, error)
}

type QuestionCounter interface {
	CountQuestions(context.Context) (questionrepo.Counts, error)
}

type AnswerCounter interface {
	CountAnswers(context.Context) (int, error)
}

func New(users UserRepository, questions QuestionCounter, answers AnswerCounter, lg logger.Logger) *AdminService {
	return &AdminService{
		users:     users,
		questions: questions,
		answers:   answers,
		lg:        lg,
	}
}

// Stats gathers the three counters concurrently.
func (as *AdminService) Stats(ctx context.Context) (models.Stats, error) {
	var (
		uc userrepo.Counts
		qc questionrepo.Counts
		ac int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		uc, err = as.users.CountUsers(gctx)

		return err //nolint:wrapcheck
	})

	g.Go(func() error {
		var err error
		qc, err = as.questions.CountQuestions(gctx)

		return err //nolint:wrapcheck
	})

	g.Go(func() error {
		var err error
		ac, err = as.answers.CountAnswers(gctx)

		return err //nolint:wrapcheck
	})

	if err := g.Wait(); err != nil {
		return models.Stats{}, fmt.Errorf("count error: %w", err)
	}

	return models.Stats{
		TotalUsers:          uc.Total,
		ActiveUsers:         uc.Active,
		BannedUsers:         uc.Total - uc.Active,
		TotalQuestions:      qc.Total,
		TotalAnswers:        ac,
		AnsweredQuestions:   qc.Answered,
		UnansweredQuestions: qc.Total - qc.Answered,
	}, nil
}

func (as *AdminService) Users(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		return nil, services.Fail(services.ErrBadRequest, "skip must not be negative")
	}

	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < 0 || limit > maxLimit:
		return nil, services.Fail(services.ErrBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}

	users, err := as.users.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

// Ban deactivates a non-admin user.
func (as *AdminService) Ban(ctx context.Context, admin models.User, id string) error {
	u, err := as.user(ctx, id)
	if err != nil {
		return err
	}

	if u.IsAdmin() {
		return services.Fail(services.ErrForbidden, "Cannot ban admin users")
	}

	if err := as.users.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("set active error: %w", err)
	}

	as.lg.Infof("user %s banned by %s", u.Username, admin.Username)

	return nil
}

func (as *AdminService) Unban(ctx context.Context, admin models.User, id string) error {
	u, err := as.user(ctx, id)
	if err != nil {
		return err
	}

	if err := as.users.SetActive(ctx, id, true); err != nil {
		return fmt.Errorf("set active error: %w", err)
	}

	as.lg.Infof("user %s unbanned by %s", u.Username, admin.Username)

	return nil
}

func (as *AdminService) user(ctx context.Context, id string) (models.User, error) {
	u, err := as.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, services.Fail(services.ErrNotFound, "User not found")
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}
