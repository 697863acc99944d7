package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"` //nolint:tagliatelle
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	bts, err := json.Marshal(v)
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bts) //nolint:errcheck
}
