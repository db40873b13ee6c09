package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// FileRepository defines data access for file attachments by reference.
type FileRepository interface {
	// Attach inserts a file reference.
	Attach(ctx context.Context, f *workflow.FileRef) error

	// Detach removes a file reference from a document.
	Detach(ctx context.Context, fileID, documentID string) error

	// GetByID returns one file reference.
	GetByID(ctx context.Context, fileID string) (*workflow.FileRef, error)

	// ListByDocument returns a document's attachments.
	ListByDocument(ctx context.Context, documentID string) ([]workflow.FileRef, error)

	// UpdateScanState records the external scanner's outcome. Orthogonal
	// to document status; callable in any lifecycle state.
	UpdateScanState(ctx context.Context, fileID string, state workflow.ScanState) error
}
