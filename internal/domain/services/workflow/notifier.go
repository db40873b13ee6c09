package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// EventKind names a logical engine event for downstream consumers
// (email digests, scan triggers). Emission is fire-and-forget: it
// happens after the engine transaction commits, and a delivery failure
// can never affect engine state.
type EventKind string

const (
	EventSubmitted  EventKind = "submitted"
	EventApproved   EventKind = "approved"
	EventRejected   EventKind = "rejected"
	EventReleased   EventKind = "released"
	EventWithdrawn  EventKind = "withdrawn"
	EventPromoted   EventKind = "promoted"
	EventNewVersion EventKind = "new_version"
)

// Event is the payload handed to the notification dispatcher.
type Event struct {
	Kind     EventKind      `json:"kind"`
	TenantID string         `json:"tenant_id"`
	Document string         `json:"document_id"`
	Display  string         `json:"display_id"` // e.g. "FORM-00001vA"
	Actor    workflow.Actor `json:"actor"`
	// Recipients are approver emails or the creator, depending on Kind.
	Recipients []string `json:"recipients,omitempty"`
	Reason     string   `json:"reason,omitempty"` // rejection reason, when applicable
}

// Notifier dispatches logical events to the notification subsystem.
// Implementations must not block the caller for long and must swallow
// delivery errors (logging them locally).
type Notifier interface {
	Notify(ctx context.Context, e Event)
}
