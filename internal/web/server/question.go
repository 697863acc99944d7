package server

import (
	"errors"
	"net/http"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/go-chi/chi/v5"
)

type answerItem struct {
	Answer models.Answer
	Caps   views.Capabilities
}

type questionPage struct {
	Detail        views.DetailSnapshot
	Caps          views.Capabilities
	Answers       []answerItem
	Authenticated bool
}

// (GET /question/{id}).
func (s *Server) Question(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	ws.Shell().Start(r.Context())

	snap, err := ws.Detail().Mount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.flash(r.Context(), ws, session.FlashError, views.MsgLoadFailed)
		redirect(w, r, "/")

		return
	}

	q := snap.Data.Question

	page := questionPage{
		Detail:        snap,
		Caps:          views.CapabilitiesFor(ws.Session, q.AuthorID),
		Answers:       make([]answerItem, 0, len(snap.Data.Answers)),
		Authenticated: ws.Session.State() == session.Authenticated,
	}

	for _, a := range snap.Data.Answers {
		caps := views.CapabilitiesFor(ws.Session, a.AuthorID)
		caps.Edit = false
		caps.Accept = page.Caps.Accept && !a.Accepted

		page.Answers = append(page.Answers, answerItem{Answer: a, Caps: caps})
	}

	s.render(w, r, "question", q.Title, page)
}

// (POST /question/{id}/vote) form: vote_type.
func (s *Server) QuestionVote(w http.ResponseWriter, r *http.Request) {
	s.detailAction(w, r, func(d *views.DetailView, vt models.VoteType) error {
		_, err := d.VoteQuestion(r.Context(), vt)

		return err //nolint:wrapcheck
	})
}

// (POST /question/{id}/answers/{aid}/vote) form: vote_type.
func (s *Server) AnswerVote(w http.ResponseWriter, r *http.Request) {
	s.detailAction(w, r, func(d *views.DetailView, vt models.VoteType) error {
		_, err := d.VoteAnswer(r.Context(), chi.URLParam(r, "aid"), vt)

		return err //nolint:wrapcheck
	})
}

// (POST /question/{id}/answers) form: content.
func (s *Server) PostAnswer(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)

	detail, ok := s.mountDetail(w, r)
	if !ok {
		return
	}

	_, err := detail.PostAnswer(r.Context(), r.FormValue("content"))

	switch {
	case err == nil:
		s.flash(r.Context(), ws, session.FlashSuccess, views.MsgAnswerPosted)
	case errors.Is(err, views.ErrEmptyAnswer):
		s.flash(r.Context(), ws, session.FlashError, views.MsgEmptyAnswer)
	case s.expired(w, r, err):
		return
	default:
		s.flash(r.Context(), ws, session.FlashError, views.MsgAnswerFailed)
	}

	redirect(w, r, questionPath(r))
}

// (POST /question/{id}/answers/{aid}/accept).
func (s *Server) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)

	detail, ok := s.mountDetail(w, r)
	if !ok {
		return
	}

	if _, err := detail.Accept(r.Context(), chi.URLParam(r, "aid")); err != nil {
		if s.expired(w, r, err) {
			return
		}

		s.flash(r.Context(), ws, session.FlashError, views.Failure(err, views.MsgAcceptFailed))
	} else {
		s.flash(r.Context(), ws, session.FlashSuccess, views.MsgAnswerAccepted)
	}

	redirect(w, r, questionPath(r))
}

// (POST /question/{id}/delete) form: kind, target. Opens the confirmation modal.
func (s *Server) RequestDelete(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.mountDetail(w, r)
	if !ok {
		return
	}

	t := views.DeleteTarget{Kind: r.FormValue("kind"), ID: r.FormValue("target")}

	switch t.Kind {
	case views.TargetQuestion:
		t.ID = chi.URLParam(r, "id")
		detail.RequestDelete(t)
	case views.TargetAnswer:
		if t.ID != "" {
			detail.RequestDelete(t)
		}
	}

	redirect(w, r, questionPath(r))
}

// (POST /question/{id}/delete/cancel).
func (s *Server) CancelDelete(w http.ResponseWriter, r *http.Request) {
	workspace(r).Detail().CancelDelete()

	redirect(w, r, questionPath(r))
}

// (POST /question/{id}/delete/confirm).
func (s *Server) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	detail := ws.Detail()

	t, ok := detail.PendingDelete()
	if !ok || t.QuestionID != chi.URLParam(r, "id") {
		redirect(w, r, questionPath(r))

		return
	}

	outcome, err := detail.ConfirmDelete(r.Context(), t.QuestionID)
	if err != nil {
		if s.expired(w, r, err) {
			return
		}

		s.flash(r.Context(), ws, session.FlashError, "Failed to delete "+t.Kind)
		redirect(w, r, questionPath(r))

		return
	}

	if outcome == views.NavigateHome {
		s.flash(r.Context(), ws, session.FlashSuccess, "Question deleted successfully!")
		redirect(w, r, "/")

		return
	}

	s.flash(r.Context(), ws, session.FlashSuccess, "Answer deleted successfully!")
	redirect(w, r, questionPath(r))
}

// mountDetail makes sure the question of the route is loaded before an action. On
// failure the browser is sent home with a toast and ok is false.
func (s *Server) mountDetail(w http.ResponseWriter, r *http.Request) (*views.DetailView, bool) {
	ws := workspace(r)
	detail := ws.Detail()

	if _, err := detail.Ensure(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.flash(r.Context(), ws, session.FlashError, views.MsgLoadFailed)
		redirect(w, r, "/")

		return nil, false
	}

	return detail, true
}

func (s *Server) detailAction(w http.ResponseWriter, r *http.Request,
	do func(*views.DetailView, models.VoteType) error,
) {
	detail, ok := s.mountDetail(w, r)
	if !ok {
		return
	}

	vt, err := models.ParseVoteType(r.FormValue("vote_type"))
	if err == nil {
		err = do(detail, vt)
	}

	if err != nil {
		if s.expired(w, r, err) {
			return
		}

		s.flash(r.Context(), workspace(r), session.FlashError, views.MsgVoteFailed)
	}

	redirect(w, r, questionPath(r))
}

func questionPath(r *http.Request) string {
	return "/question/" + chi.URLParam(r, "id")
}
