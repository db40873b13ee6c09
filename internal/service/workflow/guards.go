package workflow

import (
	"fmt"
	"log/slog"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
)

// requireCreator enforces the creator-only relationship on an operation.
func requireCreator(doc *models.Document, actor models.Actor, attempted string) error {
	if doc.CreatedBy != actor.UserID {
		return fmt.Errorf("only the creator may %s document %s: %w", attempted, doc.ID, domain.ErrNotAuthorized)
	}
	return nil
}

// requireStatus enforces a lifecycle guard, producing the typed
// InvalidState error with the attempted transition.
func requireStatus(doc *models.Document, want models.Status, attempted string) error {
	if doc.Status != want {
		return &domain.StateError{
			DocumentID: doc.ID,
			Current:    string(doc.Status),
			Attempted:  attempted,
		}
	}
	return nil
}

// requireAdmin enforces the privileged-actor relationship.
func requireAdmin(actor models.Actor, attempted string) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%s requires an administrator: %w", attempted, domain.ErrNotAuthorized)
	}
	return nil
}

// logGuardFailure records a refused operation for the audit trail even
// though nothing was mutated: actor, document, attempted transition.
func logGuardFailure(logger *slog.Logger, actor models.Actor, documentID, attempted string, err error) {
	logger.Warn("guard refused operation",
		"actor", actor.UserID,
		"tenant_id", actor.TenantID,
		"document_id", documentID,
		"attempted", attempted,
		"error", err,
	)
}
