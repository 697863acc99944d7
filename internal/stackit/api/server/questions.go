package server

import (
	"net/http"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/services/questionservice"
)

// (GET /questions/).
func (s *Server) ListQuestions(w http.ResponseWriter, r *http.Request) {
	params, err := bindListQuestions(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	questions, err := s.questionService.ListQuestions(r.Context(), questionservice.ListRequest{
		Skip:      deref(params.Skip),
		Limit:     deref(params.Limit),
		Search:    deref(params.Search),
		Tags:      deref(params.Tags),
		SortBy:    deref(params.SortBy),
		SortOrder: deref(params.SortOrder),
	})
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// (POST /questions/).
func (s *Server) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in models.QuestionInput

	if err := s.decode(r, &in); err != nil {
		s.handleError(w, err)

		return
	}

	q, err := s.questionService.CreateQuestion(r.Context(), currentUser(r), in)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, q)
}

// (GET /questions/{id}).
func (s *Server) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	q, err := s.questionService.GetQuestion(r.Context(), id)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, q)
}

// (PUT /questions/{id}).
func (s *Server) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	var in models.QuestionInput

	if err := s.decode(r, &in); err != nil {
		s.handleError(w, err)

		return
	}

	q, err := s.questionService.UpdateQuestion(r.Context(), currentUser(r), id, in)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, q)
}

// (DELETE /questions/{id}).
func (s *Server) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r, "id")
	if err != nil {
		s.handleError(w, err)

		return
	}

	if err := s.questionService.DeleteQuestion(r.Context(), currentUser(r), id); err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Question deleted successfully"})
}

// (POST /questions/{id}/vote).
func (s *Server) VoteQuestion(w http.ResponseWriter, r *http.Request) {
	id, vt, err := bindVote(r)
	if err != nil {
		s.handleError(w, err)

		return
	}

	msg, err := s.questionService.Vote(r.Context(), currentUser(r), id, vt)
	if err != nil {
		s.handleError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func bindVote(r *http.Request) (string, models.VoteType, error) {
	id, err := bindPathID(r, "id")
	if err != nil {
		return "", "", err
	}

	var params VoteParams

	if err := bindQuery(r, "vote_type", true, &params.VoteType); err != nil {
		return "", "", err
	}

	vt, err := models.ParseVoteType(params.VoteType)
	if err != nil {
		return "", "", &InvalidParamFormatError{ParamName: "vote_type", Err: err}
	}

	return id, vt, nil
}
