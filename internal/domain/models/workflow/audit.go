package workflow

import (
	"encoding/json"
	"time"
)

// Action names an audited mutation. One constant per engine operation;
// the corresponding detail type below is the only payload shape ever
// recorded for that action.
type Action string

const (
	ActionCreated         Action = "document.created"
	ActionEdited          Action = "document.edited"
	ActionSubmitted       Action = "document.submitted"
	ActionWithdrawn       Action = "document.withdrawn"
	ActionDecisionRecorded Action = "approval.decision_recorded"
	ActionReleased        Action = "document.released"
	ActionRejected        Action = "document.rejected"
	ActionApproverAdded   Action = "approval.approver_added"
	ActionApproverRemoved Action = "approval.approver_removed"
	ActionNewVersion      Action = "version.created"
	ActionPromoted        Action = "version.promoted"
	ActionFileAttached    Action = "file.attached"
	ActionFileDetached    Action = "file.detached"
	ActionAdminOverride   Action = "admin.status_override"
	ActionDeleted         Action = "document.deleted"
)

// AuditLogEntry is one append-only record of an engine mutation. Entries
// are never updated or deleted; administrative deletes leave a final
// tombstone entry (ActionDeleted) instead of purging history.
type AuditLogEntry struct {
	ID               string          `json:"id" db:"id"`
	TenantID         string          `json:"tenant_id" db:"tenant_id"`
	DocumentID       string          `json:"document_id" db:"document_id"`
	Action           Action          `json:"action" db:"action"`
	PerformedBy      string          `json:"performed_by" db:"performed_by"`
	PerformedByEmail string          `json:"performed_by_email" db:"performed_by_email"`
	Details          json.RawMessage `json:"details" db:"details"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// AuditDetails is the closed set of per-action payloads. Each engine
// mutation records exactly one of the variants below; free-form maps are
// not accepted.
type AuditDetails interface {
	AuditAction() Action
}

// CreatedDetails records the identity minted for a brand-new document.
type CreatedDetails struct {
	DocumentNumber string  `json:"document_number"`
	Version        string  `json:"version"`
	Title          string  `json:"title"`
	IsProduction   bool    `json:"is_production"`
	ProjectCode    *string `json:"project_code,omitempty"`
}

// EditedDetails records which draft fields changed.
type EditedDetails struct {
	ChangedFields []string `json:"changed_fields"`
}

// SubmittedDetails records the approver set size at submission and
// whether the no-approver fast path released the document directly.
type SubmittedDetails struct {
	ApproverCount int  `json:"approver_count"`
	AutoReleased  bool `json:"auto_released"`
}

// WithdrawnDetails records a creator pulling a document out of approval.
type WithdrawnDetails struct {
	PendingApprovers int `json:"pending_approvers"`
}

// DecisionDetails records a single approver's vote.
type DecisionDetails struct {
	ApproverID string   `json:"approver_id"`
	Decision   Decision `json:"decision"`
	Comments   *string  `json:"comments,omitempty"`
}

// ReleasedDetails records a release and, when supersession applied, the
// predecessor version that became Obsolete.
type ReleasedDetails struct {
	Version           string  `json:"version"`
	SupersededVersion *string `json:"superseded_version,omitempty"`
}

// RejectedDetails records the mandatory returned-for-revision note.
type RejectedDetails struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

// ApproverAddedDetails records a new member of the approver set.
type ApproverAddedDetails struct {
	ApproverUserID string `json:"approver_user_id"`
	ApproverEmail  string `json:"approver_email"`
}

// ApproverRemovedDetails records removal from the approver set.
type ApproverRemovedDetails struct {
	ApproverUserID string `json:"approver_user_id"`
}

// NewVersionDetails records the minting of the next version in a lineage.
type NewVersionDetails struct {
	FromVersion string `json:"from_version"`
	NewVersion  string `json:"new_version"`
}

// PromotedDetails records a prototype being promoted into a production
// lineage. SourceDocumentID is the released prototype row.
type PromotedDetails struct {
	SourceDocumentID string `json:"source_document_id"`
	SourceVersion    string `json:"source_version"`
	NewVersion       string `json:"new_version"`
}

// FileAttachedDetails records an attachment by reference.
type FileAttachedDetails struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// FileDetachedDetails records a detachment.
type FileDetachedDetails struct {
	FileID string `json:"file_id"`
}

// OverrideDetails records an admin forcing a status outside the normal
// guards, with before/after values. Mandatory for every override.
type OverrideDetails struct {
	FromStatus Status `json:"from_status"`
	ToStatus   Status `json:"to_status"`
	Reason     string `json:"reason"`
}

// DeletedDetails is the tombstone payload for an administrative delete.
type DeletedDetails struct {
	DocumentNumber string `json:"document_number"`
	Version        string `json:"version"`
	Status         Status `json:"status"`
	Reason         string `json:"reason"`
}

func (CreatedDetails) AuditAction() Action         { return ActionCreated }
func (EditedDetails) AuditAction() Action          { return ActionEdited }
func (SubmittedDetails) AuditAction() Action       { return ActionSubmitted }
func (WithdrawnDetails) AuditAction() Action       { return ActionWithdrawn }
func (DecisionDetails) AuditAction() Action        { return ActionDecisionRecorded }
func (ReleasedDetails) AuditAction() Action        { return ActionReleased }
func (RejectedDetails) AuditAction() Action        { return ActionRejected }
func (ApproverAddedDetails) AuditAction() Action   { return ActionApproverAdded }
func (ApproverRemovedDetails) AuditAction() Action { return ActionApproverRemoved }
func (NewVersionDetails) AuditAction() Action      { return ActionNewVersion }
func (PromotedDetails) AuditAction() Action        { return ActionPromoted }
func (FileAttachedDetails) AuditAction() Action    { return ActionFileAttached }
func (FileDetachedDetails) AuditAction() Action    { return ActionFileDetached }
func (OverrideDetails) AuditAction() Action        { return ActionAdminOverride }
func (DeletedDetails) AuditAction() Action         { return ActionDeleted }
