package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// ApproverRepository defines data access for a document's approver set.
type ApproverRepository interface {
	// Add inserts an approver. Fails with ErrAlreadyExists if the user
	// is already in the document's approver set.
	Add(ctx context.Context, a *workflow.Approver) error

	// Remove deletes an approver row.
	Remove(ctx context.Context, documentID, userID string) error

	// GetByUser returns the approver row for a user on a document, or
	// ErrNotFound if the user is not in the set.
	GetByUser(ctx context.Context, documentID, userID string) (*workflow.Approver, error)

	// ListByDocument returns the full approver set, insertion order.
	ListByDocument(ctx context.Context, documentID string) ([]workflow.Approver, error)

	// ListByDocumentForUpdate returns the approver set with row-level
	// locks so consensus is computed from a consistent snapshot while
	// concurrent decisions wait.
	ListByDocumentForUpdate(ctx context.Context, documentID string) ([]workflow.Approver, error)

	// UpdateDecision records a vote on an approver row.
	UpdateDecision(ctx context.Context, a *workflow.Approver) error

	// ResetPending returns every approver on the document to Pending.
	// Used on resubmission after a rejection.
	ResetPending(ctx context.Context, documentID string) error
}
