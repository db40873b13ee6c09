package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// AuditRepository defines append-only access to the audit trail.
// There is deliberately no update or delete: tombstones are appended,
// history is never purged.
type AuditRepository interface {
	// Append inserts one audit entry.
	Append(ctx context.Context, e *workflow.AuditLogEntry) error

	// ListByDocument returns a document's trail, oldest first.
	ListByDocument(ctx context.Context, documentID, tenantID string) ([]workflow.AuditLogEntry, error)
}
