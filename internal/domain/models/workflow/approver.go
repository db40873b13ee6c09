package workflow

import "time"

// Decision is an approver's recorded vote on one document version.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Approver is one member of a document version's approver set. The set
// is flat and unordered: consensus requires every approver to approve,
// and a single rejection returns the document to Draft. Approvers are
// bound to one document row - a new version starts with an empty set.
type Approver struct {
	ID              string     `json:"id" db:"id"`
	DocumentID      string     `json:"document_id" db:"document_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	UserEmail       string     `json:"user_email" db:"user_email"` // denormalized for display
	Status          Decision   `json:"status" db:"status"`
	Comments        *string    `json:"comments,omitempty" db:"comments"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty" db:"decided_at"`
}
