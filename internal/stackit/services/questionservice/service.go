package questionservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	repo "github.com/Leopold1975/stackit/internal/stackit/repository/questionrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/Leopold1975/stackit/pkg/logger"
	"github.com/google/uuid"
)

type QuestionService struct {
	questionRepo Repository
	sanitizer    Sanitizer
	validator    Validator
	lg           logger.Logger
}

type Repository interface {
	CreateQuestion(context.Context, models.Question) error
	GetQuestion(ctx context.Context, id string, countView bool) (models.Question, error)
	UpdateQuestion(context.Context, models.Question) error
	DeleteQuestion(context.Context, string) error
	ListQuestions(context.Context, repo.ListRequest) ([]models.Question, error)
	Vote(ctx context.Context, id, userID string, value int) (bool, error)
	Shutdown(context.Context) error
}

type Sanitizer interface {
	HTML(string) string
}

type Validator interface {
	Validate(any) error
}

func New(questionRepo Repository, sanitizer Sanitizer, validator Validator, lg logger.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		sanitizer:    sanitizer,
		validator:    validator,
		lg:           lg,
	}
}

func (qs *QuestionService) CreateQuestion(ctx context.Context, author models.User,
	in models.QuestionInput,
) (models.Question, error) {
	in, err := qs.normalize(in)
	if err != nil {
		return models.Question{}, err
	}

	now := time.Now().UTC()

	q := models.Question{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Tags:           in.Tags,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := qs.questionRepo.CreateQuestion(ctx, q); err != nil {
		return models.Question{}, fmt.Errorf("create question error: %w", err)
	}

	return q, nil
}

func (qs *QuestionService) ListQuestions(ctx context.Context, req ListRequest) ([]models.Question, error) {
	repoReq := repo.ListRequest{
		Search: strings.TrimSpace(req.Search),
		Offset: req.Skip,
		Limit:  req.Limit,
		SortBy: req.SortBy,
	}

	if repoReq.SortBy == "" {
		repoReq.SortBy = "created_at"
	}

	if _, ok := repo.SortColumns[repoReq.SortBy]; !ok {
		return nil, services.Fail(services.ErrBadRequest, "Invalid sort_by value")
	}

	switch req.SortOrder {
	case "", "desc":
		repoReq.SortDesc = true
	case "asc":
	default:
		return nil, services.Fail(services.ErrBadRequest, "Invalid sort_order value")
	}

	if repoReq.Offset < 0 {
		return nil, services.Fail(services.ErrBadRequest, "skip must not be negative")
	}

	switch {
	case repoReq.Limit == 0:
		repoReq.Limit = defaultLimit
	case repoReq.Limit < 0 || repoReq.Limit > maxLimit:
		return nil, services.Fail(services.ErrBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}

	if req.Tags != "" {
		repoReq.Tags = NormalizeTags(strings.Split(req.Tags, ","))
	}

	questions, err := qs.questionRepo.ListQuestions(ctx, repoReq)
	if err != nil {
		return nil, fmt.Errorf("list questions error: %w", err)
	}

	return questions, nil
}

// GetQuestion loads a question and counts the view.
func (qs *QuestionService) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	q, err := qs.questionRepo.GetQuestion(ctx, id, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Question{}, services.Fail(services.ErrNotFound, "Question not found")
		}

		return models.Question{}, fmt.Errorf("get question error: %w", err)
	}

	return q, nil
}

func (qs *QuestionService) UpdateQuestion(ctx context.Context, u models.User, id string,
	in models.QuestionInput,
) (models.Question, error) {
	q, err := qs.authorized(ctx, u, id, "Not authorized to update this question")
	if err != nil {
		return models.Question{}, err
	}

	in, err = qs.normalize(in)
	if err != nil {
		return models.Question{}, err
	}

	q.Title = in.Title
	q.Description = in.Description
	q.Tags = in.Tags
	q.UpdatedAt = time.Now().UTC()

	if err := qs.questionRepo.UpdateQuestion(ctx, q); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Question{}, services.Fail(services.ErrNotFound, "Question not found")
		}

		return models.Question{}, fmt.Errorf("update question error: %w", err)
	}

	return q, nil
}

func (qs *QuestionService) DeleteQuestion(ctx context.Context, u models.User, id string) error {
	if _, err := qs.authorized(ctx, u, id, "Not authorized to delete this question"); err != nil {
		return err
	}

	if err := qs.questionRepo.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.Fail(services.ErrNotFound, "Question not found")
		}

		return fmt.Errorf("delete question error: %w", err)
	}

	qs.lg.Infof("question %s deleted by %s", id, u.Username)

	return nil
}

// Vote toggles u's vote and returns the message shown to the voter.
func (qs *QuestionService) Vote(ctx context.Context, u models.User, id string, vt models.VoteType) (string, error) {
	if _, err := qs.get(ctx, id); err != nil {
		return "", err
	}

	removed, err := qs.questionRepo.Vote(ctx, id, u.ID, vt.Value())
	if err != nil {
		return "", fmt.Errorf("vote question error: %w", err)
	}

	if removed {
		return "Vote removed", nil
	}

	return fmt.Sprintf("Question %sd", vt), nil
}

func (qs *QuestionService) Shutdown(ctx context.Context) error {
	if err := qs.questionRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown question repo error: %w", err)
	}

	return nil
}

func (qs *QuestionService) get(ctx context.Context, id string) (models.Question, error) {
	q, err := qs.questionRepo.GetQuestion(ctx, id, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Question{}, services.Fail(services.ErrNotFound, "Question not found")
		}

		return models.Question{}, fmt.Errorf("get question error: %w", err)
	}

	return q, nil
}

func (qs *QuestionService) authorized(ctx context.Context, u models.User, id, detail string) (models.Question, error) {
	q, err := qs.get(ctx, id)
	if err != nil {
		return models.Question{}, err
	}

	if !u.CanModify(q.AuthorID) {
		return models.Question{}, services.Fail(services.ErrForbidden, detail)
	}

	return q, nil
}

// NormalizeTags trims and lower-cases tags, dropping blanks and repeats while keeping order.
// normalize trims the title, sanitizes the description and normalizes the tags, then
// validates what is left so stored questions always satisfy the input rules.
func (qs *QuestionService) normalize(in models.QuestionInput) (models.QuestionInput, error) {
	in = models.QuestionInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(qs.sanitizer.HTML(in.Description)),
		Tags:        NormalizeTags(in.Tags),
	}

	if err := qs.validator.Validate(in); err != nil {
		return models.QuestionInput{}, err //nolint:wrapcheck
	}

	return in, nil
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}

		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
