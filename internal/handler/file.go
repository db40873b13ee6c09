package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	models "docflow/internal/domain/models/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
	"docflow/internal/httputil"
)

// FileHandler handles attachment HTTP requests. File bytes never pass
// through the engine; these endpoints track references into the file
// store and the scanner's verdicts.
type FileHandler struct {
	fileService  wfSvc.FileService
	scannerToken string
	logger       *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService wfSvc.FileService, scannerToken string, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:  fileService,
		scannerToken: scannerToken,
		logger:       logger,
	}
}

// AttachFile records a file store reference on a draft
// POST /api/documents/{id}/files
func (h *FileHandler) AttachFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req wfSvc.AttachFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := h.fileService.AttachFile(r.Context(), actor, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, ref)
}

// DetachFile removes a reference from a draft
// DELETE /api/documents/{id}/files/{fileID}
func (h *FileHandler) DetachFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}

	if err := h.fileService.DetachFile(r.Context(), actor, id, fileID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFiles returns a document's attachments
// GET /api/documents/{id}/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListFiles(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// ScanResult receives the antivirus scanner's verdict. The route is
// outside the JWT middleware; the scanner authenticates with a shared
// token instead.
// POST /api/files/scan-result
func (h *FileHandler) ScanResult(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Scanner-Token")
	if h.scannerToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.scannerToken)) != 1 {
		httputil.RespondError(w, http.StatusUnauthorized, "invalid scanner token")
		return
	}

	var req struct {
		FileID string           `json:"file_id"`
		State  models.ScanState `json:"state"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.fileService.RecordScanOutcome(r.Context(), req.FileID, req.State); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
