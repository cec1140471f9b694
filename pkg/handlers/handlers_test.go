package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/saldo/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]int{"EUR": 33, "DUESS": -2})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s", ct)
	}

	var saldo map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&saldo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saldo["EUR"] != 33 || saldo["DUESS"] != -2 {
		t.Errorf("body = %v", saldo)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		err       error
		wantMsg   string
		wantLevel string
	}{
		{
			"client error reported",
			http.StatusBadRequest,
			errors.New("stage must be classify or an extract_<document type> stage"),
			"stage must be classify or an extract_<document type> stage",
			"WARN",
		},
		{
			"upstream failure reported",
			http.StatusBadGateway,
			errors.New("vision oracle exhausted after 3 attempts"),
			"vision oracle exhausted after 3 attempts",
			"ERROR",
		},
		{
			"internal cause hidden",
			http.StatusInternalServerError,
			fmt.Errorf("insert ledger: %w", errors.New(`pq: duplicate key value violates unique constraint "ledgers_document_id_key"`)),
			"Internal Server Error",
			"ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			rec := httptest.NewRecorder()

			handlers.RespondError(rec, logger, tt.status, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
			if !strings.Contains(logs.String(), "level="+tt.wantLevel) {
				t.Errorf("log %q missing level %s", logs.String(), tt.wantLevel)
			}
			if !strings.Contains(logs.String(), tt.err.Error()[:10]) {
				t.Errorf("log %q missing the cause", logs.String())
			}
		})
	}
}
