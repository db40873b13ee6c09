package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// VersionService mints successor versions within a lineage and promotes
// prototype lineages into production ones.
type VersionService interface {
	// NewVersion creates the next Draft version of a lineage. Permitted
	// only when the current version is Released. Title, description,
	// project code, and document type carry over; files and approvers
	// start empty. The old version stays Released until the new one is
	// Released, at which point supersession flips it to Obsolete.
	NewVersion(ctx context.Context, actor workflow.Actor, documentID string) (*workflow.Document, error)

	// Promote turns a Released prototype into a brand-new production
	// lineage sharing the document number: v1, Draft, independent
	// approvals and history. Creator only; at most once per document
	// number - a second attempt fails with ErrAlreadyExists. The
	// prototype lineage is unaffected and remains Released.
	Promote(ctx context.Context, actor workflow.Actor, documentID string) (*workflow.Document, error)
}
