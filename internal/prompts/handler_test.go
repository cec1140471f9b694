package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/prompts"
	"github.com/JaimeStill/saldo/pkg/pagination"
)

type mockSystem struct {
	listFn       func(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error)
	findFn       func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	createFn     func(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error)
	updateFn     func(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	activateFn   func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	deactivateFn func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	overrides    map[prompts.Stage]string
}

func (m *mockSystem) Handler() *prompts.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Activate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.activateFn(ctx, id)
}

func (m *mockSystem) Deactivate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.deactivateFn(ctx, id)
}

func (m *mockSystem) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	if text, ok := m.overrides[stage]; ok {
		return text, nil
	}
	return prompts.Instructions(stage)
}

func (m *mockSystem) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func (m *mockSystem) Compose(ctx context.Context, stage prompts.Stage, pages []int) (string, error) {
	instructions, err := m.Instructions(ctx, stage)
	if err != nil {
		return "", err
	}
	spec, err := prompts.Spec(stage)
	if err != nil {
		return "", err
	}
	return prompts.Compose(instructions, spec, pages), nil
}

func newTestHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *prompts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

var promptID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           promptID,
		Name:         "receipt-handwriting",
		Stage:        prompts.StageExtractPalletReceipt,
		Instructions: "Handwritten quantities override printed ones.",
		Description:  ptr("Receipts from the Nord depot"),
	}
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestHandlerList(t *testing.T) {
	var captured prompts.Filters
	var capturedPage pagination.PageRequest

	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			captured, capturedPage = f, page
			result := pagination.NewPageResult([]prompts.Prompt{samplePrompt()}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := serve(mux, "GET", "/prompts?stage=extract_pallet_receipt&name=receipt&page_size=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].ID != promptID {
		t.Errorf("data = %+v", result.Data)
	}
	if captured.Stage == nil || *captured.Stage != prompts.StageExtractPalletReceipt {
		t.Errorf("stage filter = %v", captured.Stage)
	}
	if captured.Name == nil || *captured.Name != "receipt" {
		t.Errorf("name filter = %v", captured.Name)
	}
	if capturedPage.PageSize != 5 {
		t.Errorf("page size = %d, want 5", capturedPage.PageSize)
	}
}

func TestHandlerSearch(t *testing.T) {
	var captured pagination.PageRequest
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, _ prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			captured = page
			result := pagination.NewPageResult([]prompts.Prompt{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("normalizes paging", func(t *testing.T) {
		rec := serve(mux, "POST", "/prompts/search", `{"page": 0, "page_size": 500, "active": true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.Page != 1 || captured.PageSize != 100 {
			t.Errorf("page = %d/%d, want 1/100", captured.Page, captured.PageSize)
		}
	})

	t.Run("invalid stage filter", func(t *testing.T) {
		rec := serve(mux, "POST", "/prompts/search", `{"stage": "enhance"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerStages(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	rec := serve(mux, "GET", "/prompts/stages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stages []prompts.StageInfo
	if err := json.NewDecoder(rec.Body).Decode(&stages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stages) != len(prompts.Stages()) {
		t.Fatalf("stages = %v", stages)
	}
	if stages[0].Stage != prompts.StageClassify || stages[0].DocumentType != "" {
		t.Errorf("first stage = %+v, want classify without document type", stages[0])
	}
	for _, s := range stages[1:] {
		if want, ok := prompts.ExtractStage(s.DocumentType); !ok || want != s.Stage {
			t.Errorf("%s reports document type %q", s.Stage, s.DocumentType)
		}
	}
}

func TestHandlerListRejectsUnknownFilters(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	for _, target := range []string{
		"/prompts?stage=enhance",
		"/prompts?document_type=invoice",
	} {
		t.Run(target, func(t *testing.T) {
			if rec := serve(mux, "GET", target, ""); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if rec := serve(mux, "POST", "/prompts/search", `{"document_type": "invoice"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("search status = %d, want 400", rec.Code)
	}
}

func TestHandlerPreview(t *testing.T) {
	sys := &mockSystem{
		overrides: map[prompts.Stage]string{
			prompts.StageExtractPalletReceipt: "Handwritten quantities override printed ones.",
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name     string
		target   string
		wantCode int
		contains []string
		excludes string
	}{
		{
			"single page",
			"/prompts/extract_pallet_receipt/preview",
			http.StatusOK,
			[]string{"Handwritten quantities override printed ones."},
			"The attached images are pages",
		},
		{
			"page group",
			"/prompts/extract_pallet_receipt/preview?pages=2,3",
			http.StatusOK,
			[]string{"Handwritten quantities", "The attached images are pages 2, 3"},
			"",
		},
		{"bad page", "/prompts/classify/preview?pages=1,zwei", http.StatusBadRequest, nil, ""},
		{"zero page", "/prompts/classify/preview?pages=0", http.StatusBadRequest, nil, ""},
		{"unknown stage", "/prompts/enhance/preview", http.StatusBadRequest, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "GET", tt.target, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var content prompts.StageContent
			if err := json.NewDecoder(rec.Body).Decode(&content); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(content.Content, want) {
					t.Errorf("preview missing %q", want)
				}
			}
			if tt.excludes != "" && strings.Contains(content.Content, tt.excludes) {
				t.Errorf("preview should not contain %q", tt.excludes)
			}
		})
	}
}

func TestHandlerFind(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
			if id != p.ID {
				return nil, prompts.ErrNotFound
			}
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/prompts/" + p.ID.String(), http.StatusOK},
		{"missing", "/prompts/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/prompts/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, "GET", tt.path, ""); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerStageContent(t *testing.T) {
	sys := &mockSystem{
		overrides: map[prompts.Stage]string{
			prompts.StageClassify: "Invoices count as unknown.",
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name     string
		path     string
		wantCode int
		contains string
	}{
		{"active override", "/prompts/classify/instructions", http.StatusOK, "Invoices count as unknown."},
		{"catalog default", "/prompts/extract_goods_receipt/instructions", http.StatusOK, "Wareneingangsbestätigung"},
		{"spec", "/prompts/extract_loading_list/spec", http.StatusOK, "loading_location"},
		{"unknown stage", "/prompts/enhance/instructions", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "GET", tt.path, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.contains == "" {
				return
			}

			var content prompts.StageContent
			if err := json.NewDecoder(rec.Body).Decode(&content); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(content.Content, tt.contains) {
				t.Errorf("content %q missing %q", content.Content, tt.contains)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	var captured prompts.CreateCommand
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
			if cmd.Name == "taken" {
				return nil, prompts.ErrDuplicate
			}
			captured = cmd
			p := samplePrompt()
			p.Name = cmd.Name
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", `{"name": "  receipts  ", "stage": "extract_pallet_receipt", "instructions": "Read carefully."}`, http.StatusCreated},
		{"duplicate", `{"name": "taken", "stage": "classify", "instructions": "x"}`, http.StatusConflict},
		{"blank instructions", `{"name": "receipts", "stage": "classify", "instructions": "   "}`, http.StatusBadRequest},
		{"missing stage", `{"name": "receipts", "instructions": "x"}`, http.StatusBadRequest},
		{"unknown stage", `{"name": "receipts", "stage": "enhance", "instructions": "x"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, "POST", "/prompts", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if captured.Name != "receipts" || captured.Instructions != "Read carefully." {
		t.Errorf("command not trimmed: %+v", captured)
	}
}

func TestHandlerUpdate(t *testing.T) {
	sys := &mockSystem{
		updateFn: func(_ context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
			if id != promptID {
				return nil, prompts.ErrNotFound
			}
			p := samplePrompt()
			p.Instructions = cmd.Instructions
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"name": "receipts", "stage": "extract_pallet_receipt", "instructions": "Updated."}`

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"updated", "/prompts/" + promptID.String(), body, http.StatusOK},
		{"missing", "/prompts/" + uuid.NewString(), body, http.StatusNotFound},
		{"malformed id", "/prompts/nope", body, http.StatusBadRequest},
		{"invalid body", "/prompts/" + promptID.String(), `{"name": ""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, "PUT", tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerDelete(t *testing.T) {
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != promptID {
				return prompts.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	if rec := serve(mux, "DELETE", "/prompts/"+promptID.String(), ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := serve(mux, "DELETE", "/prompts/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing delete status = %d, want 404", rec.Code)
	}
}

func TestHandlerActivation(t *testing.T) {
	toggle := func(active bool) func(context.Context, uuid.UUID) (*prompts.Prompt, error) {
		return func(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
			if id != promptID {
				return nil, prompts.ErrNotFound
			}
			p := samplePrompt()
			p.Active = active
			return &p, nil
		}
	}
	sys := &mockSystem{activateFn: toggle(true), deactivateFn: toggle(false)}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		path       string
		wantCode   int
		wantActive bool
	}{
		{"activate", "/prompts/" + promptID.String() + "/activate", http.StatusOK, true},
		{"deactivate", "/prompts/" + promptID.String() + "/deactivate", http.StatusOK, false},
		{"activate missing", "/prompts/" + uuid.NewString() + "/activate", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "POST", tt.path, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var p prompts.Prompt
			if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Active != tt.wantActive {
				t.Errorf("active = %v, want %v", p.Active, tt.wantActive)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	group := newTestHandler(&mockSystem{}).Routes()

	if group.Prefix != "/prompts" {
		t.Errorf("prefix = %q, want /prompts", group.Prefix)
	}
	if len(group.Routes) != 12 {
		t.Errorf("routes = %d, want 12", len(group.Routes))
	}
	for _, r := range group.Routes {
		if r.OpenAPI == nil {
			t.Errorf("%s %s missing operation docs", r.Method, r.Pattern)
		}
	}
}
