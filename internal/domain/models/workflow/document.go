package workflow

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a document version.
type Status string

const (
	// StatusDraft is the initial, editable state.
	StatusDraft Status = "draft"
	// StatusInApproval means the document is circulating for decisions.
	StatusInApproval Status = "in_approval"
	// StatusReleased is the terminal-success state; content is frozen.
	StatusReleased Status = "released"
	// StatusObsolete is terminal, reached only by supersession when a
	// newer version of the same lineage is released - never requested
	// directly.
	StatusObsolete Status = "obsolete"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInApproval, StatusReleased, StatusObsolete:
		return true
	}
	return false
}

// Document is one version row of a lineage. Identity is
// (tenant_id, document_number, version); the lineage is all rows sharing
// document_number and is_production. Invariants per lineage: at most one
// row in Draft/InApproval (no two drafts in flight) and at most one row
// Released. The Released predecessor coexists with a newer Draft until
// the successor is Released, at which point supersession flips it to
// Obsolete.
type Document struct {
	ID             string     `json:"id" db:"id"`
	TenantID       string     `json:"tenant_id" db:"tenant_id"`
	DocumentTypeID string     `json:"document_type_id" db:"document_type_id"`
	DocumentNumber string     `json:"document_number" db:"document_number"` // e.g. "FORM-00001"
	Version        string     `json:"version" db:"version"`                 // e.g. "vA" or "v1"
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Status         Status     `json:"status" db:"status"`
	IsProduction   bool       `json:"is_production" db:"is_production"`
	ProjectCode    *string    `json:"project_code,omitempty" db:"project_code"`
	// RejectionReason carries the most recent returned-for-revision note.
	// Set when an approver rejects, cleared on the next submit.
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedBy       string     `json:"created_by" db:"created_by"`
	CreatedByEmail  string     `json:"created_by_email" db:"created_by_email"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	ReleasedBy      *string    `json:"released_by,omitempty" db:"released_by"`
	ReleasedAt      *time.Time `json:"released_at,omitempty" db:"released_at"`
}

// DisplayID is the human-facing identifier, e.g. "FORM-00001vA".
func (d *Document) DisplayID() string {
	return d.DocumentNumber + d.Version
}

// FormatDocumentNumber builds the document number from a type prefix and
// an assigned sequence number, zero-padded to five digits.
func FormatDocumentNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%05d", prefix, seq)
}
