package server

import "net/http"

// (GET /admin/stats).
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.adminService.Stats(r.Context())
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// (GET /admin/users).
func (s *Server) AdminUsers(w http.ResponseWriter, r *http.Request) {
	page, err := bindPage(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	users, err := s.adminService.Users(r.Context(), deref(page.Skip), deref(page.Limit))
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, users)
}

// (POST /admin/users/{id}/ban).
func (s *Server) BanUser(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.adminService.Ban(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User banned successfully"})
}

// (POST /admin/users/{id}/unban).
func (s *Server) UnbanUser(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.adminService.Unban(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User unbanned successfully"})
}
