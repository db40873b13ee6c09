package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// FileService manages file attachments by reference. The engine never
// touches file bytes; the file store and antivirus scanner are external.
type FileService interface {
	// AttachFile records a reference to an externally stored file.
	// Creator only, Draft only. The reference starts in ScanPending.
	AttachFile(ctx context.Context, actor workflow.Actor, documentID string, req *AttachFileRequest) (*workflow.FileRef, error)

	// DetachFile removes a reference. Creator only, Draft only.
	DetachFile(ctx context.Context, actor workflow.Actor, documentID, fileID string) error

	// ListFiles returns a document's attachments.
	ListFiles(ctx context.Context, actor workflow.Actor, documentID string) ([]workflow.FileRef, error)

	// RecordScanOutcome applies the external scanner's verdict to a file
	// reference. Callable in any document state; scan state never gates
	// a lifecycle transition.
	RecordScanOutcome(ctx context.Context, fileID string, state workflow.ScanState) error
}

// AttachFileRequest carries the file store's metadata for a new
// attachment.
type AttachFileRequest struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}
