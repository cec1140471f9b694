package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/handlers"
	"github.com/JaimeStill/saldo/pkg/pagination"
	"github.com/JaimeStill/saldo/pkg/routes"
)

type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest is the body of POST /prompts/search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageContent carries the text a stage sends to the vision oracle.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

// StageInfo describes a workflow stage. DocumentType is empty for the
// classify stage.
type StageInfo struct {
	Stage        Stage                  `json:"stage"`
	DocumentType reconcile.DocumentType `json:"document_type,omitempty"`
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/prompts",
		Tags:    Docs.Tags,
		Schemas: Docs.Schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Docs.List},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages, OpenAPI: Docs.Stages},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Docs.Find},
			{Method: "GET", Pattern: "/{stage}/instructions", Handler: h.Instructions, OpenAPI: Docs.Instructions},
			{Method: "GET", Pattern: "/{stage}/spec", Handler: h.Spec, OpenAPI: Docs.Spec},
			{Method: "GET", Pattern: "/{stage}/preview", Handler: h.Preview, OpenAPI: Docs.Preview},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: Docs.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: Docs.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Docs.Delete},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: Docs.Search},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate, OpenAPI: Docs.Activate},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate, OpenAPI: Docs.Deactivate},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.list(w, r, pagination.PageRequestFromQuery(r.URL.Query(), h.pagination), filters)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := req.Filters.Validate(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Stages lists every stage with the document type it extracts.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	byStage := make(map[Stage]reconcile.DocumentType, len(extractStages))
	for dt, s := range extractStages {
		byStage[s] = dt
	}

	info := make([]StageInfo, len(stages))
	for i, s := range stages {
		info[i] = StageInfo{Stage: s, DocumentType: byStage[s]}
	}
	handlers.RespondJSON(w, http.StatusOK, info)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Find)
}

// Instructions answers with the active override, or the catalog default
// when none is active.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	h.stageContent(w, r, h.sys.Instructions)
}

func (h *Handler) Spec(w http.ResponseWriter, r *http.Request) {
	h.stageContent(w, r, h.sys.Spec)
}

// Preview answers with the full prompt a stage would send for the pages
// in the comma separated pages parameter, defaulting to page 1.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	pages, err := parsePages(r.URL.Query().Get("pages"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.stageContent(w, r, func(ctx context.Context, stage Stage) (string, error) {
		return h.sys.Compose(ctx, stage, pages)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	prompt, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var cmd UpdateCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	prompt, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate makes the prompt the override for its stage, replacing any
// other active override of that stage.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Activate)
}

// Deactivate returns the prompt's stage to the catalog instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, http.StatusOK, h.sys.Deactivate)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) byID(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	fn func(context.Context, uuid.UUID) (*Prompt, error),
) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	prompt, err := fn(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, prompt)
}

func (h *Handler) stageContent(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, Stage) (string, error),
) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	text, err := fn(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
}

// decode reads a command body and validates it, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, cmd interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return false
	}
	if err := cmd.Validate(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return false
	}
	return true
}

func parsePages(s string) ([]int, error) {
	if s == "" {
		return []int{1}, nil
	}
	var pages []int
	for part := range strings.SplitSeq(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		pages = append(pages, n)
	}
	return pages, nil
}
