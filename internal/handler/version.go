package handler

import (
	"log/slog"
	"net/http"

	wfSvc "docflow/internal/domain/services/workflow"
	"docflow/internal/httputil"
)

// VersionHandler handles version lineage HTTP requests
type VersionHandler struct {
	versionService wfSvc.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versionService wfSvc.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// NewVersion mints the next draft version of a lineage
// POST /api/documents/{id}/versions
func (h *VersionHandler) NewVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.versionService.NewVersion(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// Promote turns a released prototype into a new production lineage
// POST /api/documents/{id}/promote
func (h *VersionHandler) Promote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.versionService.Promote(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}
