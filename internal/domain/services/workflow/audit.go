package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// AuditRecorder appends immutable audit entries for engine mutations.
type AuditRecorder interface {
	// Record appends an entry best-effort: a write failure is logged
	// locally and never rolls back the primary transition.
	Record(ctx context.Context, actor workflow.Actor, tenantID, documentID string, details workflow.AuditDetails)

	// MustRecord appends an entry and propagates failure, rolling back
	// the enclosing transaction. Reserved for the gap-free events:
	// document created and document deleted.
	MustRecord(ctx context.Context, actor workflow.Actor, tenantID, documentID string, details workflow.AuditDetails) error
}
