package server

import (
	"errors"
	"net/http"

	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/go-chi/chi/v5"
)

// Form actions posted by the question form.
const (
	actionTag    = "tag"
	actionRemove = "remove"
	actionSubmit = "submit"
)

type formPage struct {
	Form    views.FormSnapshot
	Errors  views.FieldErrors
	Action  string
	MaxTags int
	// MinDescription mirrors the description length rule for the submit button.
	MinDescription int
}

// (GET /ask).
func (s *Server) AskPage(w http.ResponseWriter, r *http.Request) {
	workspace(r).Shell().Start(r.Context())

	s.renderForm(w, r, workspace(r).AskForm(), nil)
}

// (POST /ask) form: action, title, description, key, tag_input, tag.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	s.handleForm(w, r, workspace(r).AskForm())
}

// (GET /question/{id}/edit). Only the author or an admin gets the form; it is
// filled only after that check.
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	workspace(r).Shell().Start(r.Context())

	form, ok := s.loadEditForm(w, r)
	if !ok {
		return
	}

	s.renderForm(w, r, form, nil)
}

// (POST /question/{id}/edit).
func (s *Server) Edit(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadEditForm(w, r)
	if !ok {
		return
	}

	s.handleForm(w, r, form)
}

func (s *Server) loadEditForm(w http.ResponseWriter, r *http.Request) (*views.QuestionForm, bool) {
	ws := workspace(r)
	id := chi.URLParam(r, "id")
	form := ws.EditForm(id)

	if form.Snapshot().Loaded {
		return form, true
	}

	err := form.LoadEditForm(r.Context(), ws.Session)

	switch {
	case err == nil:
		return form, true
	case errors.Is(err, views.ErrForbidden):
		ws.ResetForm()
		s.flash(r.Context(), ws, session.FlashError, views.MsgNotAuthorized)
		redirect(w, r, "/question/"+id)
	default:
		ws.ResetForm()
		s.flash(r.Context(), ws, session.FlashError, views.MsgLoadFailed)
		redirect(w, r, "/")
	}

	return nil, false
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request, form *views.QuestionForm) {
	ws := workspace(r)

	form.SetTitle(r.FormValue("title"))
	form.SetDescription(r.FormValue("description"))

	switch r.FormValue("action") {
	case actionTag:
		key := r.FormValue("key")
		if key == "" {
			key = views.KeyEnter
		}

		form.KeyTag(key, r.FormValue("tag_input"))
		s.renderForm(w, r, form, nil)

		return
	case actionRemove:
		form.RemoveTag(r.FormValue("tag"))
		s.renderForm(w, r, form, nil)

		return
	}

	res, err := form.Submit(r.Context())

	switch {
	case err == nil:
		ws.ResetForm()
		s.flash(r.Context(), ws, session.FlashSuccess, res.Toast)
		redirect(w, r, res.Redirect)
	case errors.Is(err, views.ErrInvalid):
		s.flash(r.Context(), ws, session.FlashError, res.Toast)
		s.renderForm(w, r, form, form.Validate())
	case errors.Is(err, views.ErrBusy):
		s.renderForm(w, r, form, nil)
	case s.expired(w, r, err):
	default:
		s.flash(r.Context(), ws, session.FlashError, res.Toast)
		s.renderForm(w, r, form, nil)
	}
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, form *views.QuestionForm, errs views.FieldErrors) {
	snap := form.Snapshot()

	title, action := "Ask a Question", "/ask"
	if snap.Mode == views.EditMode {
		title, action = "Edit Question", "/question/"+snap.QuestionID+"/edit"
	}

	s.render(w, r, "form", title, formPage{
		Form:           snap,
		Errors:         errs,
		Action:         action,
		MaxTags:        views.MaxTags,
		MinDescription: views.MinDescription,
	})
}
