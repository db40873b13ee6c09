package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// DocumentTypeRepository defines data access for document types and the
// numbering authority.
type DocumentTypeRepository interface {
	// Create inserts a new document type. Fails with ErrAlreadyExists on
	// a duplicate prefix within the tenant.
	Create(ctx context.Context, dt *workflow.DocumentType) error

	// GetByID retrieves a document type within a tenant.
	GetByID(ctx context.Context, id, tenantID string) (*workflow.DocumentType, error)

	// ListByTenant returns all document types for a tenant, including
	// inactive ones (existing documents still reference them).
	ListByTenant(ctx context.Context, tenantID string) ([]workflow.DocumentType, error)

	// SetActive toggles visibility in creation flows. Types are never
	// deleted once documents reference them.
	SetActive(ctx context.Context, id, tenantID string, active bool) error

	// NextNumber assigns the next sequence number for the type's prefix.
	// The increment-and-return is a single atomic statement: two
	// concurrent callers can never observe the same number, and no gap
	// is produced on the non-racing path.
	NextNumber(ctx context.Context, id, tenantID string) (int, error)
}
