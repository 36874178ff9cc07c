package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Status is the body of every stub answer that carries no resource.
type Status struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WriteJSON encodes v before touching w, so an unencodable value becomes a
// plain 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Debug("write response", "error", err)
	}
}

func WriteOK(w http.ResponseWriter, status int) {
	WriteJSON(w, status, Status{Status: "ok"})
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Status{Status: "error", Error: msg})
}
