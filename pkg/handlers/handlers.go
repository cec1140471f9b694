// Package handlers writes the JSON responses of the saldo API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as the JSON body of a status response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and answers {"error": message}. A 500 reports
// only the status text, since the cause may carry SQL or storage detail;
// client errors and upstream failures such as an exhausted vision oracle
// report err itself. 5xx statuses log at error level, the rest at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request failed", "status", status, "error", err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	RespondJSON(w, status, map[string]string{"error": msg})
}
