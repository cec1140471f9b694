package ledgers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/handlers"
	"github.com/JaimeStill/saldo/pkg/pagination"
	"github.com/JaimeStill/saldo/pkg/routes"
)

// Handler provides HTTP endpoints for ledger operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "ledgers"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for ledger endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/ledgers",
		Tags:    Docs.Tags,
		Schemas: Docs.Schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Docs.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Docs.Find},
			{Method: "GET", Pattern: "/document/{id}", Handler: h.FindByDocument, OpenAPI: Docs.FindByDocument},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: Docs.Search},
			{Method: "POST", Pattern: "/document/{id}/reconcile", Handler: h.Reconcile, OpenAPI: Docs.Reconcile},
			{Method: "POST", Pattern: "/reconcile", Handler: h.ReconcileBatch, OpenAPI: Docs.ReconcileBatch},
			{Method: "POST", Pattern: "/validate", Handler: h.Validate, OpenAPI: Docs.Validate},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve, OpenAPI: Docs.Approve},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Docs.Delete},
		},
	}
}

// List returns a paginated list of ledgers with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single ledger with its rows and issues.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	l, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, l)
}

// FindByDocument returns the ledger reconciled from a document.
func (h *Handler) FindByDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	l, err := h.sys.FindByDocument(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, l)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching ledgers.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Reconcile runs the reconciliation workflow for the document named by the path.
// Returns 201 with the stored ledger on success.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrDocumentNotFound)
		return
	}

	l, err := h.sys.Reconcile(r.Context(), documentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, l)
}

// ReconcileBatch reconciles every document listed in a BatchCommand body.
// Per-document failures are reported in the result rather than failing the request.
func (h *Handler) ReconcileBatch(w http.ResponseWriter, r *http.Request) {
	var cmd BatchCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if len(cmd.DocumentIDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: document_ids is required", ErrInvalidRequest))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.ReconcileBatch(r.Context(), cmd.DocumentIDs))
}

// Validate runs the consistency checks on a single entry without storing anything.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var entry reconcile.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Validate(entry))
}

// Approve records reviewer sign-off on a ledger and completes its document.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd ApproveCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cmd.ApprovedBy = strings.TrimSpace(cmd.ApprovedBy)
	if cmd.ApprovedBy == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: approved_by is required", ErrInvalidRequest))
		return
	}

	l, err := h.sys.Approve(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, l)
}

// Delete removes a ledger by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
