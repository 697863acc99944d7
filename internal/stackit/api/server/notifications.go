package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/stackit/services/notificationservice"
)

// (GET /notifications/).
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	params, err := bindListNotifications(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	list, err := s.notificationService.List(r.Context(), currentUser(r), notificationservice.ListRequest{
		Skip:       deref(params.Skip),
		Limit:      deref(params.Limit),
		UnreadOnly: deref(params.UnreadOnly),
	})
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, list)
}

// (GET /notifications/unread-count).
func (s *Server) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.notificationService.UnreadCount(r.Context(), currentUser(r))
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: n})
}

// (POST /notifications/mark-all-read).
func (s *Server) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.notificationService.MarkAllRead(r.Context(), currentUser(r))
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MarkAllReadResponse{Message: "All notifications marked as read", Updated: n})
}

// (POST /notifications/{id}/read).
func (s *Server) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.notificationService.MarkRead(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Notification marked as read"})
}

// (DELETE /notifications/{id}).
func (s *Server) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.notificationService.Delete(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Notification deleted"})
}
