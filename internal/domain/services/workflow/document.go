package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// DocumentService handles document creation and draft-only mutation.
// Every call takes the authenticated Actor explicitly; the engine never
// reads identity or tenant from ambient state.
type DocumentService interface {
	// CreateDocument mints a new prototype lineage: the numbering
	// authority assigns the next sequence for the document type, and the
	// document starts at vA in Draft.
	CreateDocument(ctx context.Context, actor workflow.Actor, req *CreateDocumentRequest) (*workflow.Document, error)

	// GetDocument retrieves one document version.
	GetDocument(ctx context.Context, actor workflow.Actor, documentID string) (*workflow.Document, error)

	// ListDocuments returns the tenant's current documents.
	ListDocuments(ctx context.Context, actor workflow.Actor) ([]workflow.Document, error)

	// ListLineage returns every version of a lineage, oldest first.
	ListLineage(ctx context.Context, actor workflow.Actor, documentNumber string, isProduction bool) ([]workflow.Document, error)

	// UpdateDraft edits title/description/project code. Creator only,
	// Draft only.
	UpdateDraft(ctx context.Context, actor workflow.Actor, documentID string, req *UpdateDraftRequest) (*workflow.Document, error)

	// DeleteDocument is the audited administrative override that removes
	// a document row. Admin only; the tombstone audit entry is written
	// synchronously with the delete.
	DeleteDocument(ctx context.Context, actor workflow.Actor, documentID, reason string) error

	// GetAuditTrail returns a document's full audit history.
	GetAuditTrail(ctx context.Context, actor workflow.Actor, documentID string) ([]workflow.AuditLogEntry, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	DocumentTypeID string  `json:"document_type_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	ProjectCode    *string `json:"project_code,omitempty"`
}

// UpdateDraftRequest represents a draft edit. Nil fields are unchanged.
type UpdateDraftRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ProjectCode *string `json:"project_code,omitempty"`
}
