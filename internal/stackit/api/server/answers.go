package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
)

// (GET /answers/question/{id}).
func (s *Server) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	page, err := bindPage(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	answers, err := s.answerService.ListAnswers(r.Context(), id, deref(page.Skip), deref(page.Limit))
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, answers)
}

// (POST /answers/?question_id=).
func (s *Server) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	var params CreateAnswerParams

	if err := bindQuery(r, "question_id", true, &params.QuestionID); err != nil {
		s.handleError(w, err)

		return
	}

	var in models.AnswerInput

	if err := s.decode(r, &in); err != nil {
		s.handleError(w, err)

		return
	}

	a, err := s.answerService.CreateAnswer(r.Context(), currentUser(r), params.QuestionID, in)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, a)
}

// (PUT /answers/{id}).
func (s *Server) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	var in models.AnswerInput

	if err := s.decode(r, &in); err != nil {
		s.handleError(w, err)

		return
	}

	a, err := s.answerService.UpdateAnswer(r.Context(), currentUser(r), id, in)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, a)
}

// (DELETE /answers/{id}).
func (s *Server) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.answerService.DeleteAnswer(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Answer deleted successfully"})
}

// (POST /answers/{id}/vote).
func (s *Server) VoteAnswer(w http.ResponseWriter, r *http.Request) {
	id, vt, err := bindVote(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	msg, err := s.answerService.Vote(r.Context(), currentUser(r), id, vt)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// (POST /answers/{id}/accept).
func (s *Server) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.answerService.Accept(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Answer accepted"})
}
