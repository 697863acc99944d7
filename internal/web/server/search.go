package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/Leopold1975/stackit/internal/web/views"
	"github.com/go-chi/chi/v5"
)

type searchPage struct {
	Filters []views.Filter
	Search  views.SearchSnapshot
}

type searchEvent struct {
	Status string `json:"status"`
	Query  string `json:"query"`
	HTML   string `json:"html"`
}

// (GET /search?q=&filter=).
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	ws.Shell().Start(r.Context())

	snap := ws.Search().Mount(r.Context(), r.URL.Query().Get("q"),
		views.ParseFilter(r.URL.Query().Get("filter")))

	s.render(w, r, "search", "Search", searchPage{Filters: views.Filters, Search: snap})
}

// (POST /search/live) form: q, seq, filter. One keystroke of the search box; results
// arrive on the event stream once the input settles.
func (s *Server) SearchLive(w http.ResponseWriter, r *http.Request) {
	k := views.Keystroke{Text: r.FormValue("q")}

	if seq, err := strconv.ParseUint(r.FormValue("seq"), 10, 64); err == nil {
		k.Seq = seq
	}

	if f := r.FormValue("filter"); f != "" {
		k.Filter = views.ParseFilter(f)
	}

	workspace(r).Search().Type(k)

	w.WriteHeader(http.StatusNoContent)
}

// (POST /search/vote/{id}) form: vote_type, q, filter.
func (s *Server) SearchVote(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)
	search := ws.Search()
	search.Ensure(r.Context(), r.FormValue("q"), views.ParseFilter(r.FormValue("filter")))

	if vt, err := models.ParseVoteType(r.FormValue("vote_type")); err == nil {
		if _, err := search.Vote(r.Context(), chi.URLParam(r, "id"), vt); err != nil {
			if s.expired(w, r, err) {
				return
			}

			s.flash(r.Context(), ws, session.FlashError, views.MsgVoteFailed)
		}
	}

	snap := search.Snapshot()
	redirect(w, r, "/search?q="+url.QueryEscape(snap.Query)+"&filter="+url.QueryEscape(string(snap.Filter)))
}

// (GET /search/events) streams every debounced search result as server-sent events.
// When the search view is unmounted, for example because another tab of the session
// left the search page, the stream sends "reset" and ends; the browser reconnects to
// the new view and replays its input.
func (s *Server) SearchEvents(w http.ResponseWriter, r *http.Request) {
	if r.Context().Err() != nil {
		return
	}

	search := workspace(r).Search()
	events := make(chan views.SearchSnapshot, 1)

	// Only the latest snapshot matters; an unread one is replaced.
	unsubscribe := search.Subscribe(func(snap views.SearchSnapshot) {
		for {
			select {
			case events <- snap:
				return
			default:
			}

			select {
			case <-events:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", reconnectDelay.Milliseconds()); err != nil {
		return
	}

	if err := rc.Flush(); err != nil {
		s.lg.Errorf("flush headers error: %s", err.Error())

		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case snap := <-events:
			ev, err := s.searchEvent(snap)
			if err != nil {
				s.lg.Errorf("search event error: %s", err.Error())

				continue
			}

			if err := sendEvent(rc, w, "results", ev); err != nil {
				return
			}
		case <-search.Done():
			_ = sendEvent(rc, w, "reset", struct{}{})

			return
		case <-heartbeat.C:
			if err := sendEvent(rc, w, "heartbeat", struct{}{}); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) searchEvent(snap views.SearchSnapshot) (searchEvent, error) {
	var buf strings.Builder

	err := s.pages.byName["search"].ExecuteTemplate(&buf, "results", searchPage{Filters: views.Filters, Search: snap})
	if err != nil {
		return searchEvent{}, fmt.Errorf("execute results error: %w", err)
	}

	return searchEvent{Status: snap.Status.String(), Query: snap.Query, HTML: buf.String()}, nil
}

func sendEvent(rc *http.ResponseController, w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event error: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write event error: %w", err)
	}

	if err := rc.Flush(); err != nil {
		return fmt.Errorf("flush event error: %w", err)
	}

	return nil
}
