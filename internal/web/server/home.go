package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/go-chi/chi/v5"
)

type homePage struct {
	Filters []views.Filter
	List    views.ListSnapshot
	Stats   *models.Stats
}

// (GET /?filter=).
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	ws.Shell().Start(r.Context())

	// The search box on the home page submits here.
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		redirect(w, r, "/search?q="+url.QueryEscape(q))

		return
	}

	page := homePage{
		Filters: views.Filters,
		List:    ws.List().Mount(r.Context(), views.ParseFilter(r.URL.Query().Get("filter"))),
	}

	if ws.Session.IsAdmin() {
		st := ws.Stats().Load(r.Context())
		if st.Status == views.Failed {
			s.flash(r.Context(), ws, session.FlashError, views.MsgStatsFailed)
		} else {
			page.Stats = &st.Data
		}
	}

	s.render(w, r, "home", "All Questions", page)
}

// (POST /vote/{id}) form: vote_type, filter.
func (s *Server) HomeVote(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	back := "/?filter=" + url.QueryEscape(string(views.ParseFilter(r.FormValue("filter"))))

	vt, err := models.ParseVoteType(r.FormValue("vote_type"))
	if err != nil {
		redirect(w, r, back)

		return
	}

	list := ws.List()
	list.Ensure(r.Context(), views.ParseFilter(r.FormValue("filter")))

	if _, err := list.Vote(r.Context(), chi.URLParam(r, "id"), vt); err != nil {
		if s.expired(w, r, err) {
			return
		}

		s.flash(r.Context(), ws, session.FlashError, views.MsgVoteFailed)
	}

	redirect(w, r, back)
}
