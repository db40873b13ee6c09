package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// DocumentRepository defines data access for document version rows.
// All reads and writes are tenant-scoped; implementations must enforce
// the one-current-version-per-lineage invariant at write time.
type DocumentRepository interface {
	// Create inserts a new document row. Fails with ErrAlreadyExists if
	// (tenant, document_number, version) is already taken or if the
	// lineage already has an in-flight (Draft/InApproval) version.
	Create(ctx context.Context, doc *workflow.Document) error

	// GetByID retrieves a document by id within a tenant.
	GetByID(ctx context.Context, id, tenantID string) (*workflow.Document, error)

	// GetByIDForUpdate retrieves a document by id and takes a row-level
	// lock for the duration of the enclosing transaction. Used by
	// transitions so concurrent approvals serialize on the document row.
	GetByIDForUpdate(ctx context.Context, id, tenantID string) (*workflow.Document, error)

	// GetCurrent returns the lineage's newest non-Obsolete row (the
	// in-flight version when one exists, otherwise the Released one),
	// or ErrNotFound when every version is Obsolete or none exist.
	GetCurrent(ctx context.Context, tenantID, documentNumber string, isProduction bool) (*workflow.Document, error)

	// ListByLineage returns all versions sharing (document_number,
	// is_production), oldest first.
	ListByLineage(ctx context.Context, tenantID, documentNumber string, isProduction bool) ([]workflow.Document, error)

	// ListByTenant returns current (non-Obsolete) documents for a tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]workflow.Document, error)

	// Update persists mutable fields (title, description, project code,
	// status, rejection reason, release stamps).
	Update(ctx context.Context, doc *workflow.Document) error

	// TransitionStatus moves a document between lifecycle states with an
	// optimistic guard on the expected current status. Returns
	// ErrInvalidState if the row is no longer in expectedFrom.
	TransitionStatus(ctx context.Context, id, tenantID string, expectedFrom, to workflow.Status) error

	// Supersede marks the old row Obsolete. Called exactly when the new
	// version of the same lineage becomes Released, never eagerly.
	Supersede(ctx context.Context, oldID, tenantID string) error

	// Delete removes a document row. Administrative override only; the
	// caller is responsible for the mandatory tombstone audit entry.
	Delete(ctx context.Context, id, tenantID string) error
}
