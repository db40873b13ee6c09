package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// ApprovalService manages a document's approver set. Membership changes
// are permitted only while the document is in Draft and only by its
// creator; the set is discarded conceptually on each new version (each
// version row carries its own set).
type ApprovalService interface {
	// AddApprover adds a user to the approver set. Duplicate members are
	// rejected with ErrAlreadyExists.
	AddApprover(ctx context.Context, actor workflow.Actor, documentID string, req *AddApproverRequest) (*workflow.Approver, error)

	// RemoveApprover removes a user from the approver set.
	RemoveApprover(ctx context.Context, actor workflow.Actor, documentID, userID string) error

	// ListApprovers returns the set, insertion order.
	ListApprovers(ctx context.Context, actor workflow.Actor, documentID string) ([]workflow.Approver, error)
}

// AddApproverRequest names the user joining the approver set. Email is
// denormalized onto the approver row for display and audit.
type AddApproverRequest struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
}
