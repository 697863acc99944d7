package answerservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/answerrepo"
	"github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type AnswerService struct {
	answerRepo   Repository
	questionRepo QuestionRepository
	notifier     Notifier
	sanitizer    Sanitizer
	validator    Validator
	lg           logger.Logger
}

type Repository interface {
	CreateAnswer(context.Context, models.Answer) error
	GetAnswer(context.Context, string) (models.Answer, error)
	ListByQuestion(ctx context.Context, questionID string, offset, limit int) ([]models.Answer, error)
	UpdateAnswer(context.Context, models.Answer) error
	DeleteAnswer(context.Context, string) error
	Vote(ctx context.Context, id, userID string, value int) (bool, error)
	Accept(ctx context.Context, id, questionID string) error
}

type QuestionRepository interface {
	GetQuestion(ctx context.Context, id string, countView bool) (models.Question, error)
}

type Notifier interface {
	Notify(context.Context, models.Notification) error
}

type Sanitizer interface {
	HTML(string) string
}

type Validator interface {
	Validate(any) error
}

func New(answerRepo Repository, questionRepo QuestionRepository, notifier Notifier,
	sanitizer Sanitizer, validator Validator, lg logger.Logger,
) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		notifier:     notifier,
		sanitizer:    sanitizer,
		validator:    validator,
		lg:           lg,
	}
}

// CreateAnswer stores the answer and notifies the question author unless they answered
// their own question. A failed notification does not fail the answer.
func (as *AnswerService) CreateAnswer(ctx context.Context, author models.User, questionID string,
	in models.AnswerInput,
) (models.Answer, error) {
	in, err := as.normalize(in)
	if err != nil {
		return models.Answer{}, err
	}

	q, err := as.question(ctx, questionID)
	if err != nil {
		return models.Answer{}, err
	}

	now := time.Now().UTC()

	a := models.Answer{
		ID:             uuid.NewString(),
		QuestionID:     q.ID,
		Content:        in.Content,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := as.answerRepo.CreateAnswer(ctx, a); err != nil {
		return models.Answer{}, fmt.Errorf("create answer error: %w", err)
	}

	if q.AuthorID != author.ID {
		n := models.Notification{
			RecipientID:       q.AuthorID,
			Type:              models.NotificationAnswer,
			Title:             "New answer to your question",
			Message:           fmt.Sprintf("%s answered your question %q", author.Username, q.Title),
			RelatedQuestionID: q.ID,
			RelatedAnswerID:   a.ID,
			SenderUsername:    author.Username,
		}

		if err := as.notifier.Notify(ctx, n); err != nil {
			as.lg.Errorf("notify question author error: %s", err.Error())
		}
	}

	return a, nil
}

func (as *AnswerService) ListAnswers(ctx context.Context, questionID string, skip, limit int) ([]models.Answer, error) {
	if skip < 0 {
		return nil, services.Fail(services.ErrBadRequest, "skip must not be negative")
	}

	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < 0 || limit > maxLimit:
		return nil, services.Fail(services.ErrBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}

	answers, err := as.answerRepo.ListByQuestion(ctx, questionID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list answers error: %w", err)
	}

	return answers, nil
}

func (as *AnswerService) UpdateAnswer(ctx context.Context, u models.User, id string,
	in models.AnswerInput,
) (models.Answer, error) {
	a, err := as.answer(ctx, id)
	if err != nil {
		return models.Answer{}, err
	}

	if !u.CanModify(a.AuthorID) {
		return models.Answer{}, services.Fail(services.ErrForbidden, "Not authorized to update this answer")
	}

	in, err = as.normalize(in)
	if err != nil {
		return models.Answer{}, err
	}

	a.Content = in.Content
	a.UpdatedAt = time.Now().UTC()

	if err := as.answerRepo.UpdateAnswer(ctx, a); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Answer{}, services.Fail(services.ErrNotFound, "Answer not found")
		}

		return models.Answer{}, fmt.Errorf("update answer error: %w", err)
	}

	return a, nil
}

func (as *AnswerService) DeleteAnswer(ctx context.Context, u models.User, id string) error {
	a, err := as.answer(ctx, id)
	if err != nil {
		return err
	}

	if !u.CanModify(a.AuthorID) {
		return services.Fail(services.ErrForbidden, "Not authorized to delete this answer")
	}

	if err := as.answerRepo.DeleteAnswer(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.Fail(services.ErrNotFound, "Answer not found")
		}

		return fmt.Errorf("delete answer error: %w", err)
	}

	return nil
}

func (as *AnswerService) Vote(ctx context.Context, u models.User, id string, vt models.VoteType) (string, error) {
	if _, err := as.answer(ctx, id); err != nil {
		return "", err
	}

	removed, err := as.answerRepo.Vote(ctx, id, u.ID, vt.Value())
	if err != nil {
		return "", fmt.Errorf("vote answer error: %w", err)
	}

	if removed {
		return "Vote removed", nil
	}

	return fmt.Sprintf("Answer %sd", vt), nil
}

// Accept marks the answer as the accepted one. Only the question author may do it.
func (as *AnswerService) Accept(ctx context.Context, u models.User, id string) error {
	a, err := as.answer(ctx, id)
	if err != nil {
		return err
	}

	q, err := as.question(ctx, a.QuestionID)
	if err != nil {
		return err
	}

	if q.AuthorID != u.ID {
		return services.Fail(services.ErrForbidden, "Only the question author can accept an answer")
	}

	if err := as.answerRepo.Accept(ctx, a.ID, q.ID); err != nil {
		return fmt.Errorf("accept answer error: %w", err)
	}

	return nil
}

func (as *AnswerService) answer(ctx context.Context, id string) (models.Answer, error) {
	a, err := as.answerRepo.GetAnswer(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Answer{}, services.Fail(services.ErrNotFound, "Answer not found")
		}

		return models.Answer{}, fmt.Errorf("get answer error: %w", err)
	}

	return a, nil
}

func (as *AnswerService) question(ctx context.Context, id string) (models.Question, error) {
	q, err := as.questionRepo.GetQuestion(ctx, id, false)
	if err != nil {
		if errors.Is(err, questionrepo.ErrNotFound) {
			return models.Question{}, services.Fail(services.ErrNotFound, "Question not found")
		}

		return models.Question{}, fmt.Errorf("get question error: %w", err)
	}

	return q, nil
}

// normalize sanitizes the content and validates the result.
func (as *AnswerService) normalize(in models.AnswerInput) (models.AnswerInput, error) {
	in.Content = strings.TrimSpace(as.sanitizer.HTML(in.Content))

	if err := as.validator.Validate(in); err != nil {
		return models.AnswerInput{}, err //nolint:wrapcheck
	}

	return in, nil
}
