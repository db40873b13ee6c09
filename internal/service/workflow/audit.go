package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	models "docflow/internal/domain/models/workflow"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

// auditRecorder implements the AuditRecorder interface over the audit
// repository. Record is fire-and-log: a failed write is logged and
// swallowed so it cannot roll back the primary transition. MustRecord
// propagates the failure and is reserved for the gap-free events
// (document created, document deleted).
type auditRecorder struct {
	auditRepo wfRepo.AuditRepository
	logger    *slog.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(auditRepo wfRepo.AuditRepository, logger *slog.Logger) wfSvc.AuditRecorder {
	return &auditRecorder{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (r *auditRecorder) Record(ctx context.Context, actor models.Actor, tenantID, documentID string, details models.AuditDetails) {
	if err := r.append(ctx, actor, tenantID, documentID, details); err != nil {
		r.logger.Error("audit write failed",
			"action", details.AuditAction(),
			"document_id", documentID,
			"actor", actor.UserID,
			"error", err,
		)
	}
}

func (r *auditRecorder) MustRecord(ctx context.Context, actor models.Actor, tenantID, documentID string, details models.AuditDetails) error {
	return r.append(ctx, actor, tenantID, documentID, details)
}

func (r *auditRecorder) append(ctx context.Context, actor models.Actor, tenantID, documentID string, details models.AuditDetails) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	entry := &models.AuditLogEntry{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		DocumentID:       documentID,
		Action:           details.AuditAction(),
		PerformedBy:      actor.UserID,
		PerformedByEmail: actor.Email,
		Details:          payload,
		CreatedAt:        time.Now().UTC(),
	}

	return r.auditRepo.Append(ctx, entry)
}
