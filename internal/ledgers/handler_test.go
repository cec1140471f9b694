package ledgers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/ledgers"
	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/pagination"
)

type mockSystem struct {
	listFn           func(ctx context.Context, page pagination.PageRequest, filters ledgers.Filters) (*pagination.PageResult[ledgers.Ledger], error)
	findFn           func(ctx context.Context, id uuid.UUID) (*ledgers.Ledger, error)
	findByDocumentFn func(ctx context.Context, documentID uuid.UUID) (*ledgers.Ledger, error)
	reconcileFn      func(ctx context.Context, documentID uuid.UUID) (*ledgers.Ledger, error)
	batchFn          func(ctx context.Context, documentIDs []uuid.UUID) *ledgers.BatchResult
	approveFn        func(ctx context.Context, id uuid.UUID, cmd ledgers.ApproveCommand) (*ledgers.Ledger, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler() *ledgers.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters ledgers.Filters) (*pagination.PageResult[ledgers.Ledger], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*ledgers.Ledger, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) FindByDocument(ctx context.Context, documentID uuid.UUID) (*ledgers.Ledger, error) {
	return m.findByDocumentFn(ctx, documentID)
}

func (m *mockSystem) Reconcile(ctx context.Context, documentID uuid.UUID) (*ledgers.Ledger, error) {
	return m.reconcileFn(ctx, documentID)
}

func (m *mockSystem) ReconcileBatch(ctx context.Context, documentIDs []uuid.UUID) *ledgers.BatchResult {
	return m.batchFn(ctx, documentIDs)
}

func (m *mockSystem) Validate(entry reconcile.Entry) reconcile.Result {
	return reconcile.Validate(entry, reconcile.DefaultConfig())
}

func (m *mockSystem) Approve(ctx context.Context, id uuid.UUID, cmd ledgers.ApproveCommand) (*ledgers.Ledger, error) {
	return m.approveFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func newTestHandler(sys ledgers.System) *ledgers.Handler {
	return ledgers.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *ledgers.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleLedger() ledgers.Ledger {
	return ledgers.Ledger{
		ID:         uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		DocumentID: uuid.MustParse("660e8400-e29b-41d4-a716-446655440000"),
		References: reconcile.References{DeliveryNumber: "LS-4711"},
		Consignee:  "Müller GmbH",
		Carrier:    "Spedition Krause",
		StopCount:  2,
		PageCount:  3,
		Warnings:   []string{},
		Errors:     []string{},
		Rows: []reconcile.Row{{
			PalletType:       reconcile.PalletEUR,
			PickupReceived:   33,
			PickupGiven:      33,
			DeliveryGiven:    33,
			DeliveryReceived: 30,
		}},
		ReconciledAt: time.Now().Truncate(time.Second),
	}
}

func TestHandlerList(t *testing.T) {
	l := sampleLedger()

	t.Run("returns paginated list", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, _ ledgers.Filters) (*pagination.PageResult[ledgers.Ledger], error) {
				result := pagination.NewPageResult([]ledgers.Ledger{l}, 1, 1, 20)
				return &result, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/ledgers", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[ledgers.Ledger]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 || len(result.Data) != 1 {
			t.Fatalf("result = %+v, want one ledger", result)
		}
		if got := result.Data[0].Rows; len(got) != 1 || got[0].PalletType != reconcile.PalletEUR {
			t.Errorf("rows = %+v", got)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured ledgers.Filters
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, f ledgers.Filters) (*pagination.PageResult[ledgers.Ledger], error) {
				captured = f
				result := pagination.NewPageResult([]ledgers.Ledger{}, 0, 1, 20)
				return &result, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/ledgers?carrier=Krause&review_required=true", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.Carrier == nil || *captured.Carrier != "Krause" {
			t.Errorf("carrier filter = %v, want Krause", captured.Carrier)
		}
		if captured.ReviewRequired == nil || !*captured.ReviewRequired {
			t.Errorf("review_required filter = %v, want true", captured.ReviewRequired)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	l := sampleLedger()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*ledgers.Ledger, error) {
			if id != l.ID {
				return nil, ledgers.ErrNotFound
			}
			return &l, nil
		},
		findByDocumentFn: func(_ context.Context, id uuid.UUID) (*ledgers.Ledger, error) {
			if id != l.DocumentID {
				return nil, ledgers.ErrNotFound
			}
			return &l, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"by id", "/ledgers/" + l.ID.String(), http.StatusOK},
		{"by document", "/ledgers/document/" + l.DocumentID.String(), http.StatusOK},
		{"invalid uuid", "/ledgers/not-a-uuid", http.StatusBadRequest},
		{"not found", "/ledgers/" + uuid.NewString(), http.StatusNotFound},
		{"document without ledger", "/ledgers/document/" + uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerSearch(t *testing.T) {
	var captured ledgers.Filters
	var page pagination.PageRequest
	sys := &mockSystem{
		listFn: func(_ context.Context, p pagination.PageRequest, f ledgers.Filters) (*pagination.PageResult[ledgers.Ledger], error) {
			page, captured = p, f
			result := pagination.NewPageResult([]ledgers.Ledger{}, 0, p.Page, p.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("decodes filters and normalizes page", func(t *testing.T) {
		body := `{"page": 0, "page_size": 500, "consignee": "Müller"}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ledgers/search", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.Consignee == nil || *captured.Consignee != "Müller" {
			t.Errorf("consignee filter = %v", captured.Consignee)
		}
		if page.Page != 1 || page.PageSize != 100 {
			t.Errorf("page = %d/%d, want 1/100", page.Page, page.PageSize)
		}
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ledgers/search", strings.NewReader("{")))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerReconcile(t *testing.T) {
	l := sampleLedger()

	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"created", "/ledgers/document/" + l.DocumentID.String() + "/reconcile", nil, http.StatusCreated},
		{"invalid uuid", "/ledgers/document/nope/reconcile", nil, http.StatusBadRequest},
		{"document not found", "/ledgers/document/" + l.DocumentID.String() + "/reconcile", ledgers.ErrDocumentNotFound, http.StatusNotFound},
		{"correlation failed", "/ledgers/document/" + l.DocumentID.String() + "/reconcile", ledgers.ErrCorrelationFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				reconcileFn: func(_ context.Context, documentID uuid.UUID) (*ledgers.Ledger, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &l, nil
				},
			}
			mux := setupMux(newTestHandler(sys))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerReconcileBatch(t *testing.T) {
	ok, failed := uuid.New(), uuid.New()
	sys := &mockSystem{
		batchFn: func(_ context.Context, ids []uuid.UUID) *ledgers.BatchResult {
			result := &ledgers.BatchResult{Ledgers: []ledgers.Ledger{}, Failures: []ledgers.Failure{}}
			for _, id := range ids {
				if id == failed {
					result.Failures = append(result.Failures, ledgers.Failure{DocumentID: id, Error: "correlation failed"})
					continue
				}
				l := sampleLedger()
				l.DocumentID = id
				result.Ledgers = append(result.Ledgers, l)
			}
			return result
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("reports ledgers and failures", func(t *testing.T) {
		body, _ := json.Marshal(ledgers.BatchCommand{DocumentIDs: []uuid.UUID{ok, failed}})
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ledgers/reconcile", bytes.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result ledgers.BatchResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(result.Ledgers) != 1 || result.Ledgers[0].DocumentID != ok {
			t.Errorf("ledgers = %+v", result.Ledgers)
		}
		if len(result.Failures) != 1 || result.Failures[0].DocumentID != failed {
			t.Errorf("failures = %+v", result.Failures)
		}
	})

	t.Run("empty batch returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ledgers/reconcile", strings.NewReader(`{"document_ids": []}`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerValidate(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	body := `{
		"pallet_type": "Europalette",
		"pickup": {"received": 30, "given": 33, "date": "12.03.2024", "location": "Lager Nord", "carrier_id": "K-1"},
		"delivery": {"received": 0, "given": 30},
		"saldo": 5,
		"exchanged": true
	}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/ledgers/validate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result reconcile.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Original.PalletType != reconcile.PalletEUR {
		t.Errorf("pallet type = %q, want EUR", result.Original.PalletType)
	}
	if result.Original.Saldo == nil || *result.Original.Saldo != 5 {
		t.Errorf("original saldo = %v, want 5", result.Original.Saldo)
	}
	if result.Adjusted.Saldo == nil || *result.Adjusted.Saldo != 3 {
		t.Errorf("adjusted saldo = %v, want 3", result.Adjusted.Saldo)
	}
	if !result.Corrected || len(result.Issues) != 1 || result.Issues[0].Check != reconcile.CheckSaldoMismatch {
		t.Errorf("issues = %+v", result.Issues)
	}
}

func TestHandlerApprove(t *testing.T) {
	l := sampleLedger()
	path := fmt.Sprintf("/ledgers/%s/approve", l.ID)

	t.Run("records reviewer", func(t *testing.T) {
		var captured ledgers.ApproveCommand
		sys := &mockSystem{
			approveFn: func(_ context.Context, _ uuid.UUID, cmd ledgers.ApproveCommand) (*ledgers.Ledger, error) {
				captured = cmd
				approved := l
				approved.ApprovedBy = &cmd.ApprovedBy
				return &approved, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(`{"approved_by": " dispo "}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.ApprovedBy != "dispo" {
			t.Errorf("approved_by = %q, want dispo", captured.ApprovedBy)
		}
	})

	t.Run("missing reviewer returns 400", func(t *testing.T) {
		mux := setupMux(newTestHandler(&mockSystem{}))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(`{}`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("document not in review returns 409", func(t *testing.T) {
		sys := &mockSystem{
			approveFn: func(context.Context, uuid.UUID, ledgers.ApproveCommand) (*ledgers.Ledger, error) {
				return nil, ledgers.ErrInvalidStatus
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(`{"approved_by": "dispo"}`)))

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	l := sampleLedger()
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != l.ID {
				return ledgers.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("returns 204", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/ledgers/"+l.ID.String(), nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/ledgers/"+uuid.NewString(), nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	group := newTestHandler(&mockSystem{}).Routes()

	if group.Prefix != "/ledgers" {
		t.Errorf("prefix = %q, want /ledgers", group.Prefix)
	}
	if len(group.Routes) != 9 {
		t.Errorf("routes = %d, want 9", len(group.Routes))
	}

	setupMux(newTestHandler(&mockSystem{}))
}
