package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/gateway"
)

// fakeAPI records every call as a short string and answers from its fields.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	questions     []models.Question
	question      models.Question
	answers       []models.Answer
	notifications []models.Notification
	unread        int
	stats         models.Stats

	listErr, getErr, answersErr, voteErr, createErr, updateErr error
	deleteErr, notificationsErr, markErr, unreadErr, statsErr   error

	listParams []gateway.ListParams
	created    []models.QuestionInput
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListQuestions(_ context.Context, p gateway.ListParams) ([]models.Question, error) {
	f.record("GET /questions/?sort_by=%s&sort_order=%s&limit=%d&search=%s", p.SortBy, p.SortOrder, p.Limit, p.Search)

	f.mu.Lock()
	f.listParams = append(f.listParams, p)
	f.mu.Unlock()

	return f.questions, f.listErr
}

func (f *fakeAPI) GetQuestion(_ context.Context, id string) (models.Question, error) {
	f.record("GET /questions/%s", id)

	return f.question, f.getErr
}

func (f *fakeAPI) CreateQuestion(_ context.Context, in models.QuestionInput) (models.Question, error) {
	f.record("POST /questions/")

	f.mu.Lock()
	f.created = append(f.created, in)
	f.mu.Unlock()

	return models.Question{ID: "new", Title: in.Title}, f.createErr
}

func (f *fakeAPI) UpdateQuestion(_ context.Context, id string, in models.QuestionInput) (models.Question, error) {
	f.record("PUT /questions/%s", id)

	return models.Question{ID: id, Title: in.Title}, f.updateErr
}

func (f *fakeAPI) DeleteQuestion(_ context.Context, id string) error {
	f.record("DELETE /questions/%s", id)

	return f.deleteErr
}

func (f *fakeAPI) VoteQuestion(_ context.Context, id string, vt models.VoteType) error {
	f.record("POST /questions/%s/vote?vote_type=%s", id, vt)

	return f.voteErr
}

func (f *fakeAPI) ListAnswers(_ context.Context, id string) ([]models.Answer, error) {
	f.record("GET /answers/question/%s", id)

	return f.answers, f.answersErr
}

func (f *fakeAPI) CreateAnswer(_ context.Context, id string, _ models.AnswerInput) (models.Answer, error) {
	f.record("POST /answers/?question_id=%s", id)

	return models.Answer{ID: "a-new", QuestionID: id}, f.createErr
}

func (f *fakeAPI) DeleteAnswer(_ context.Context, id string) error {
	f.record("DELETE /answers/%s", id)

	return f.deleteErr
}

func (f *fakeAPI) VoteAnswer(_ context.Context, id string, vt models.VoteType) error {
	f.record("POST /answers/%s/vote?vote_type=%s", id, vt)

	return f.voteErr
}

func (f *fakeAPI) AcceptAnswer(_ context.Context, id string) error {
	f.record("POST /answers/%s/accept", id)

	return f.voteErr
}

func (f *fakeAPI) ListNotifications(_ context.Context, limit int) ([]models.Notification, error) {
	f.record("GET /notifications/?limit=%d", limit)

	return f.notifications, f.notificationsErr
}

func (f *fakeAPI) UnreadCount(context.Context) (int, error) {
	f.record("GET /notifications/unread-count")

	return f.unread, f.unreadErr
}

func (f *fakeAPI) MarkAllRead(context.Context) error {
	f.record("POST /notifications/mark-all-read")

	return f.markErr
}

func (f *fakeAPI) AdminStats(context.Context) (models.Stats, error) {
	f.record("GET /admin/stats")

	return f.stats, f.statsErr
}
