package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/web/session"
)

// (POST /shell/notifications) form: back. Toggles the notification panel.
func (s *Server) ToggleNotifications(w http.ResponseWriter, r *http.Request) {
	ws := workspace(r)

	toast, err := ws.Shell().ToggleNotifications(r.Context())
	if err != nil {
		if s.expired(w, r, err) {
			return
		}

		s.lg.Errorf("toggle notifications error: %s", err.Error())
	}

	s.flash(r.Context(), ws, session.FlashError, toast)
	redirect(w, r, back(r))
}

// (POST /shell/menu) form: back.
func (s *Server) ToggleUserMenu(w http.ResponseWriter, r *http.Request) {
	workspace(r).Shell().ToggleUserMenu()

	redirect(w, r, back(r))
}

// (POST /shell/pointer) form: target. Reports a click so overlays outside target close.
func (s *Server) Pointer(w http.ResponseWriter, r *http.Request) {
	workspace(r).Shell().Pointer(r.FormValue("target"))

	w.WriteHeader(http.StatusNoContent)
}

// back is the page a shell action returns to. Only local paths are accepted.
func back(r *http.Request) string {
	b := r.FormValue("back")
	if len(b) == 0 || b[0] != '/' || (len(b) > 1 && (b[1] == '/' || b[1] == '\\')) {
		return "/"
	}

	return b
}
