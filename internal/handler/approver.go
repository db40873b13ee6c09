package handler

import (
	"log/slog"
	"net/http"

	wfSvc "docflow/internal/domain/services/workflow"
	"docflow/internal/httputil"
)

// ApproverHandler handles approver set HTTP requests
type ApproverHandler struct {
	approvalService wfSvc.ApprovalService
	logger          *slog.Logger
}

// NewApproverHandler creates a new approver handler
func NewApproverHandler(approvalService wfSvc.ApprovalService, logger *slog.Logger) *ApproverHandler {
	return &ApproverHandler{
		approvalService: approvalService,
		logger:          logger,
	}
}

// AddApprover adds a user to a draft's approver set
// POST /api/documents/{id}/approvers
func (h *ApproverHandler) AddApprover(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req wfSvc.AddApproverRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	approver, err := h.approvalService.AddApprover(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, approver)
}

// RemoveApprover removes a user from a draft's approver set
// DELETE /api/documents/{id}/approvers/{userID}
func (h *ApproverHandler) RemoveApprover(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.approvalService.RemoveApprover(r.Context(), actor, id, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListApprovers returns a document's approver set with decisions
// GET /api/documents/{id}/approvers
func (h *ApproverHandler) ListApprovers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	approvers, err := h.approvalService.ListApprovers(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, approvers)
}
