package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"golang.org/x/sync/errgroup"
)

type DetailData struct {
	Question models.Question
	Answers  []models.Answer
}

// DeleteTarget names what the confirmation modal is about to delete.
type DeleteTarget struct {
	Kind string
	ID   string
	// QuestionID is the question on screen when the modal opened.
	QuestionID string
}

const (
	TargetQuestion = "question"
	TargetAnswer   = "answer"
)

// Outcome tells the caller where to go after a confirmed delete.
type Outcome int

const (
	Stay Outcome = iota
	NavigateHome
)

type Capabilities struct {
	Edit   bool
	Delete bool
	Accept bool
	Vote   bool
	Answer bool
}

type DetailSnapshot struct {
	Status        Status
	Data          DetailData
	Err           error
	Draft         string
	PendingDelete *DeleteTarget
}

// DetailView shows one question with its answers.
type DetailView struct {
	api   API
	query *Query[string, DetailData]

	mu      sync.Mutex
	draft   string
	pending *DeleteTarget
}

func NewDetailView(api API) *DetailView {
	v := &DetailView{api: api}
	v.query = NewQuery(func(ctx context.Context, id string) (DetailData, error) {
		var d DetailData

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			q, err := api.GetQuestion(gctx, id)
			if err != nil {
				return fmt.Errorf("get question error: %w", err)
			}

			d.Question = q

			return nil
		})

		g.Go(func() error {
			a, err := api.ListAnswers(gctx, id)
			if err != nil {
				return fmt.Errorf("list answers error: %w", err)
			}

			d.Answers = a

			return nil
		})

		if err := g.Wait(); err != nil {
			return DetailData{}, err //nolint:wrapcheck
		}

		return d, nil
	})

	return v
}

// Mount fetches question and answers together. Either failing fails the mount with
// ErrLoadFailed and the caller redirects home.
func (v *DetailView) Mount(ctx context.Context, id string) (DetailSnapshot, error) {
	v.mu.Lock()
	if v.query.Snapshot().Key != id {
		v.draft = ""
		v.pending = nil
	}
	v.mu.Unlock()

	s := v.snapshot(v.query.Load(ctx, id))
	if s.Status != Ready {
		return s, fmt.Errorf("%w: %w", ErrLoadFailed, s.Err)
	}

	return s, nil
}

// Ensure mounts id unless its data is already loaded.
func (v *DetailView) Ensure(ctx context.Context, id string) (DetailSnapshot, error) {
	s := v.snapshot(v.query.Ensure(ctx, id))
	if s.Status != Ready {
		return s, fmt.Errorf("%w: %w", ErrLoadFailed, s.Err)
	}

	return s, nil
}

func (v *DetailView) VoteQuestion(ctx context.Context, vt models.VoteType) (DetailSnapshot, error) {
	id := v.query.Snapshot().Key

	if err := v.api.VoteQuestion(ctx, id, vt); err != nil {
		return v.Snapshot(), fmt.Errorf("vote question error: %w", err)
	}

	return v.snapshot(v.query.Refetch(ctx)), nil
}

func (v *DetailView) VoteAnswer(ctx context.Context, answerID string, vt models.VoteType) (DetailSnapshot, error) {
	if err := v.api.VoteAnswer(ctx, answerID, vt); err != nil {
		return v.Snapshot(), fmt.Errorf("vote answer error: %w", err)
	}

	return v.snapshot(v.query.Refetch(ctx)), nil
}

func (v *DetailView) SetDraft(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.draft = text
}

// PostAnswer rejects blank content locally. On success the draft is cleared.
func (v *DetailView) PostAnswer(ctx context.Context, content string) (DetailSnapshot, error) {
	v.SetDraft(content)

	if strings.TrimSpace(content) == "" {
		return v.Snapshot(), ErrEmptyAnswer
	}

	id := v.query.Snapshot().Key

	if _, err := v.api.CreateAnswer(ctx, id, models.AnswerInput{Content: content}); err != nil {
		return v.Snapshot(), fmt.Errorf("create answer error: %w", err)
	}

	v.SetDraft("")

	return v.snapshot(v.query.Refetch(ctx)), nil
}

// RequestDelete opens the confirmation modal. Nothing is sent yet.
func (v *DetailView) RequestDelete(t DeleteTarget) {
	t.QuestionID = v.query.Snapshot().Key

	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending = &t
}

func (v *DetailView) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending = nil
}

func (v *DetailView) PendingDelete() (DeleteTarget, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pending == nil {
		return DeleteTarget{}, false
	}

	return *v.pending, true
}

// ConfirmDelete fires the pending delete opened on questionID. A deleted question
// sends the user home, a deleted answer refetches in place.
func (v *DetailView) ConfirmDelete(ctx context.Context, questionID string) (Outcome, error) {
	t, ok := v.PendingDelete()
	if !ok || t.QuestionID != questionID {
		return Stay, ErrNoPendingDelete
	}

	v.CancelDelete()

	switch t.Kind {
	case TargetQuestion:
		if err := v.api.DeleteQuestion(ctx, t.ID); err != nil {
			return Stay, fmt.Errorf("delete question error: %w", err)
		}

		v.query.Close()

		return NavigateHome, nil
	case TargetAnswer:
		if err := v.api.DeleteAnswer(ctx, t.ID); err != nil {
			return Stay, fmt.Errorf("delete answer error: %w", err)
		}

		v.query.Refetch(ctx)

		return Stay, nil
	default:
		return Stay, fmt.Errorf("%w: unknown target %q", ErrNoPendingDelete, t.Kind)
	}
}

func (v *DetailView) Accept(ctx context.Context, answerID string) (DetailSnapshot, error) {
	if err := v.api.AcceptAnswer(ctx, answerID); err != nil {
		return v.Snapshot(), fmt.Errorf("accept answer error: %w", err)
	}

	return v.snapshot(v.query.Refetch(ctx)), nil
}

// CapabilitiesFor decides which controls c may see for content written by authorID.
// Editing is offered to the author only; deleting to the author or an admin.
func CapabilitiesFor(c *session.Context, authorID string) Capabilities {
	u, ok := c.User()
	if !ok {
		return Capabilities{}
	}

	return Capabilities{
		Edit:   u.ID == authorID,
		Delete: u.CanModify(authorID),
		Accept: u.ID == authorID,
		Vote:   true,
		Answer: true,
	}
}

func (v *DetailView) Snapshot() DetailSnapshot {
	return v.snapshot(v.query.Snapshot())
}

func (v *DetailView) Close() {
	v.query.Close()
}

func (v *DetailView) snapshot(s Snapshot[string, DetailData]) DetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := DetailSnapshot{
		Status: s.Status,
		Data:   s.Data,
		Err:    s.Err,
		Draft:  v.draft,
	}

	if v.pending != nil {
		t := *v.pending
		out.PendingDelete = &t
	}

	return out
}
