package handler

import (
	"log/slog"
	"net/http"

	wfSvc "docflow/internal/domain/services/workflow"
	"docflow/internal/httputil"
)

// DocumentTypeHandler handles the document type catalog HTTP requests
type DocumentTypeHandler struct {
	typeService wfSvc.DocumentTypeService
	logger      *slog.Logger
}

// NewDocumentTypeHandler creates a new document type handler
func NewDocumentTypeHandler(typeService wfSvc.DocumentTypeService, logger *slog.Logger) *DocumentTypeHandler {
	return &DocumentTypeHandler{
		typeService: typeService,
		logger:      logger,
	}
}

// CreateDocumentType registers a new numbering prefix (admin only)
// POST /api/document-types
func (h *DocumentTypeHandler) CreateDocumentType(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req wfSvc.CreateDocumentTypeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dt, err := h.typeService.CreateDocumentType(r.Context(), actor, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, dt)
}

// ListDocumentTypes returns the tenant's catalog
// GET /api/document-types
func (h *DocumentTypeHandler) ListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	types, err := h.typeService.ListDocumentTypes(r.Context(), actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, types)
}

// SetDocumentTypeActive hides or restores a type in creation flows
// (admin only)
// PATCH /api/document-types/{id}/active
func (h *DocumentTypeHandler) SetDocumentTypeActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dt, err := h.typeService.SetDocumentTypeActive(r.Context(), actor, id, req.Active)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, dt)
}
