package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// LifecycleService owns the document status field and the transition
// rules between Draft, InApproval, Released, and Obsolete. Each method
// executes as a single transaction: guard check, state change, approver
// writes, and audit entry commit or roll back as a unit.
type LifecycleService interface {
	// Submit moves a Draft into approval. Creator only. With an empty
	// approver set the document releases immediately (no-approver fast
	// path) and supersedes the prior current version of its lineage.
	Submit(ctx context.Context, actor workflow.Actor, documentID string) (*workflow.Document, error)

	// Withdraw pulls an InApproval document back to Draft before
	// consensus completes. Creator only. Approver decisions already
	// recorded are left untouched.
	Withdraw(ctx context.Context, actor workflow.Actor, documentID string) (*workflow.Document, error)

	// Decide records one approver's vote on an InApproval document.
	// Full approval releases the document and supersedes the prior
	// current version; a single rejection returns it to Draft with the
	// mandatory reason. Approvers whose vote becomes moot are left as-is.
	Decide(ctx context.Context, actor workflow.Actor, documentID string, req *DecisionRequest) (*workflow.Document, error)

	// OverrideStatus forces a status outside the normal guards. Admin
	// only, mandatorily audited with before/after values. It cannot
	// violate identifier uniqueness or mint a second current version for
	// a lineage.
	OverrideStatus(ctx context.Context, actor workflow.Actor, documentID string, req *OverrideRequest) (*workflow.Document, error)
}

// DecisionRequest carries one approver's vote. Reason is mandatory when
// Decision is rejected and propagates to the document as the
// returned-for-revision note.
type DecisionRequest struct {
	Decision workflow.Decision `json:"decision"`
	Comments *string           `json:"comments,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// OverrideRequest is an admin-forced status change.
type OverrideRequest struct {
	Status workflow.Status `json:"status"`
	Reason string          `json:"reason"`
}
