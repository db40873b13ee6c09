package workflow

import (
	"context"

	"docflow/internal/domain/models/workflow"
)

// DocumentTypeService handles the administrative document-type catalog.
type DocumentTypeService interface {
	// CreateDocumentType registers a new numbering prefix. Admin only.
	CreateDocumentType(ctx context.Context, actor workflow.Actor, req *CreateDocumentTypeRequest) (*workflow.DocumentType, error)

	// ListDocumentTypes returns the tenant's catalog, active and not.
	ListDocumentTypes(ctx context.Context, actor workflow.Actor) ([]workflow.DocumentType, error)

	// SetDocumentTypeActive hides or restores a type in creation flows.
	// Admin only. Types are never deleted once documents reference them.
	SetDocumentTypeActive(ctx context.Context, actor workflow.Actor, id string, active bool) (*workflow.DocumentType, error)
}

// CreateDocumentTypeRequest registers a numbering prefix.
type CreateDocumentTypeRequest struct {
	Prefix string `json:"prefix"` // uppercase token, e.g. FORM, SOP
	Name   string `json:"name"`
}
