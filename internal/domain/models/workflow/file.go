package workflow

import "time"

// ScanState is the antivirus outcome for an attached file. Scanning is
// asynchronous and out of band: the state is orthogonal to document
// status, and release does not block on it. A document can be Released
// while an attachment is still pending - a known gap in the observed
// design, kept deliberately rather than silently fixed.
type ScanState string

const (
	ScanPending  ScanState = "pending"
	ScanScanning ScanState = "scanning"
	ScanSafe     ScanState = "safe"
	ScanBlocked  ScanState = "blocked"
	ScanError    ScanState = "error"
)

// FileRef attaches an externally stored file to a document version by
// reference. The engine never inspects file bytes; it carries only the
// store's id, size, and checksum metadata.
type FileRef struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	Size       int64     `json:"size" db:"size"`
	Checksum   string    `json:"checksum" db:"checksum"`
	ScanState  ScanState `json:"scan_state" db:"scan_state"`
	AttachedBy string    `json:"attached_by" db:"attached_by"`
	AttachedAt time.Time `json:"attached_at" db:"attached_at"`
}
