// Package views holds the per-session view models of the web shell. Each view fetches
// through the API on mount or parameter change, exposes an immutable snapshot for
// rendering and refetches after its own mutations.
package views

import (
	"context"
	"errors"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/gateway"
)

// PageSize is how many questions list and search views request.
const PageSize = 20

var (
	ErrForbidden       = errors.New("not authorized")
	ErrInvalid         = errors.New("form is invalid")
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrNoPendingDelete = errors.New("nothing to delete")
	ErrLoadFailed      = errors.New("load failed")
	ErrBusy            = errors.New("request in flight")
)

// Toast texts.
const (
	MsgLoadFailed         = "Failed to load question"
	MsgVoteFailed         = "Failed to vote"
	MsgEmptyAnswer        = "Please enter an answer"
	MsgAnswerPosted       = "Answer posted successfully!"
	MsgAnswerFailed       = "Failed to post answer"
	MsgQuestionPosted     = "Question posted successfully!"
	MsgQuestionUpdated    = "Question updated successfully!"
	MsgPostFailed         = "Failed to post question"
	MsgUpdateFailed       = "Failed to update question"
	MsgNotAuthorized      = "Not authorized to edit this question"
	MsgAnswerAccepted     = "Answer accepted"
	MsgAcceptFailed       = "Failed to accept answer"
	MsgStatsFailed        = "Failed to load statistics"
	MsgNotificationsError = "Failed to load notifications"
	MsgNeedTag            = "Please add at least one tag"
	MsgShortDescription   = "Description must be at least 20 characters long"
)

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// API is the slice of the gateway the views call. *gateway.Client implements it.
type API interface {
	ListQuestions(context.Context, gateway.ListParams) ([]models.Question, error)
	GetQuestion(context.Context, string) (models.Question, error)
	CreateQuestion(context.Context, models.QuestionInput) (models.Question, error)
	UpdateQuestion(context.Context, string, models.QuestionInput) (models.Question, error)
	DeleteQuestion(context.Context, string) error
	VoteQuestion(context.Context, string, models.VoteType) error
	ListAnswers(context.Context, string) ([]models.Answer, error)
	CreateAnswer(context.Context, string, models.AnswerInput) (models.Answer, error)
	DeleteAnswer(context.Context, string) error
	VoteAnswer(context.Context, string, models.VoteType) error
	AcceptAnswer(context.Context, string) error
	ListNotifications(context.Context, int) ([]models.Notification, error)
	UnreadCount(context.Context) (int, error)
	MarkAllRead(context.Context) error
	AdminStats(context.Context) (models.Stats, error)
}

var _ API = (*gateway.Client)(nil)

// Failure is the toast for a failed action: the server's detail when it sent one,
// fallback otherwise.
func Failure(err error, fallback string) string {
	if d := gateway.Detail(err); d != "" {
		return d
	}

	return fallback
}
