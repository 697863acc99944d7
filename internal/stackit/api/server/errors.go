package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leopold1975/stackit/internal/pkg/validation"
	"github.com/Leopold1975/stackit/internal/stackit/services"
)

type Error struct {
	Detail string `json:"detail"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		return []byte(`{"detail": "marshal error"}`)
	}

	return b
}

// statusOf maps service and validation errors onto HTTP status codes.
func statusOf(err error) int {
	var (
		verr *validation.Error
		perr *InvalidParamFormatError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInactive),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// detailOf hides internal failures behind a generic message.
func detailOf(err error, code int) string {
	var serr *services.Error
	if errors.As(err, &serr) {
		return serr.Detail
	}

	if code == http.StatusInternalServerError {
		return "Internal server error"
	}

	return err.Error()
}

func handleError(w http.ResponseWriter, err error) {
	code := statusOf(err)

	w.Header().Set("Content-Type", "application/json")

	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.WriteHeader(code)

	e := Error{detailOf(err, code)}

	w.Write(e.ToJSON()) //nolint:errcheck
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	if statusOf(err) == http.StatusInternalServerError {
		s.lg.Errorf("request error: %s", err.Error())
	}

	handleError(w, err)
}
