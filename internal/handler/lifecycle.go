package handler

import (
	"log/slog"
	"net/http"

	wfSvc "docflow/internal/domain/services/workflow"
	"docflow/internal/httputil"
)

// LifecycleHandler handles status transition HTTP requests
type LifecycleHandler struct {
	lifecycleService wfSvc.LifecycleService
	logger           *slog.Logger
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycleService wfSvc.LifecycleService, logger *slog.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Submit moves a draft into approval (or releases it when the approver
// set is empty)
// POST /api/documents/{id}/submit
func (h *LifecycleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.lifecycleService.Submit(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Withdraw pulls a document in approval back to draft
// POST /api/documents/{id}/withdraw
func (h *LifecycleHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.lifecycleService.Withdraw(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Decide records the caller's approval or rejection
// POST /api/documents/{id}/decision
func (h *LifecycleHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req wfSvc.DecisionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.lifecycleService.Decide(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Override forces a status outside the normal guards (admin only)
// POST /api/documents/{id}/override
func (h *LifecycleHandler) Override(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req wfSvc.OverrideRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.lifecycleService.OverrideStatus(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
