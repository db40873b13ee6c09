package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docflow/internal/config"
	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

const (
	maxTitleLength       = config.MaxTitleLength
	maxDescriptionLength = config.MaxDescriptionLength
	maxProjectCodeLength = config.MaxProjectCodeLength
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   wfRepo.DocumentRepository
	typeRepo  wfRepo.DocumentTypeRepository
	auditRepo wfRepo.AuditRepository
	txManager repositories.TransactionManager
	recorder  wfSvc.AuditRecorder
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo wfRepo.DocumentRepository,
	typeRepo wfRepo.DocumentTypeRepository,
	auditRepo wfRepo.AuditRepository,
	txManager repositories.TransactionManager,
	recorder wfSvc.AuditRecorder,
	logger *slog.Logger,
) wfSvc.DocumentService {
	return &documentService{
		docRepo:   docRepo,
		typeRepo:  typeRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		recorder:  recorder,
		logger:    logger,
	}
}

// CreateDocument mints a new prototype lineage at vA in Draft. The
// numbering authority's increment and the document insert run in one
// transaction, and the "document created" audit entry is synchronous
// with the insert so the trail is gap-free from the first row.
func (s *documentService) CreateDocument(ctx context.Context, actor models.Actor, req *wfSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := validateCreateDocument(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		dt, err := s.typeRepo.GetByID(txCtx, req.DocumentTypeID, actor.TenantID)
		if err != nil {
			return err
		}
		if !dt.IsActive {
			return &domain.StateError{
				DocumentID: dt.ID,
				Current:    "inactive",
				Attempted:  "create document of type " + dt.Prefix,
			}
		}

		seq, err := s.typeRepo.NextNumber(txCtx, dt.ID, actor.TenantID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		doc = &models.Document{
			ID:             uuid.New().String(),
			TenantID:       actor.TenantID,
			DocumentTypeID: dt.ID,
			DocumentNumber: models.FormatDocumentNumber(dt.Prefix, seq),
			Version:        models.FirstPrototypeVersion,
			Title:          req.Title,
			Description:    req.Description,
			Status:         models.StatusDraft,
			IsProduction:   false,
			ProjectCode:    req.ProjectCode,
			CreatedBy:      actor.UserID,
			CreatedByEmail: actor.Email,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}

		return s.recorder.MustRecord(txCtx, actor, actor.TenantID, doc.ID, models.CreatedDetails{
			DocumentNumber: doc.DocumentNumber,
			Version:        doc.Version,
			Title:          doc.Title,
			IsProduction:   false,
			ProjectCode:    doc.ProjectCode,
		})
	})
	if err != nil {
		logGuardFailure(s.logger, actor, req.DocumentTypeID, "create document", err)
		return nil, err
	}

	s.logger.Info("document created",
		"document_id", doc.ID,
		"display_id", doc.DisplayID(),
		"tenant_id", actor.TenantID,
		"created_by", actor.UserID,
	)

	return doc, nil
}

// GetDocument retrieves one document version
func (s *documentService) GetDocument(ctx context.Context, actor models.Actor, documentID string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, documentID, actor.TenantID)
}

// ListDocuments returns the tenant's current documents
func (s *documentService) ListDocuments(ctx context.Context, actor models.Actor) ([]models.Document, error) {
	return s.docRepo.ListByTenant(ctx, actor.TenantID)
}

// ListLineage returns every version of a lineage, oldest first
func (s *documentService) ListLineage(ctx context.Context, actor models.Actor, documentNumber string, isProduction bool) ([]models.Document, error) {
	docs, err := s.docRepo.ListByLineage(ctx, actor.TenantID, documentNumber, isProduction)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("lineage %s: %w", documentNumber, domain.ErrNotFound)
	}
	return docs, nil
}

// UpdateDraft edits title/description/project code. Creator only, Draft only.
func (s *documentService) UpdateDraft(ctx context.Context, actor models.Actor, documentID string, req *wfSvc.UpdateDraftRequest) (*models.Document, error) {
	if err := validateUpdateDraft(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "edit"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "edit"); err != nil {
			return err
		}

		var changed []string
		if req.Title != nil {
			doc.Title = *req.Title
			changed = append(changed, "title")
		}
		if req.Description != nil {
			doc.Description = *req.Description
			changed = append(changed, "description")
		}
		if req.ProjectCode != nil {
			doc.ProjectCode = req.ProjectCode
			changed = append(changed, "project_code")
		}
		if len(changed) == 0 {
			return nil
		}

		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.EditedDetails{
			ChangedFields: changed,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "edit", err)
		return nil, err
	}

	return doc, nil
}

// DeleteDocument is the audited administrative override that removes a
// document row. The tombstone audit entry commits in the same
// transaction as the delete so the trail is gap-free for destructive
// actions.
func (s *documentService) DeleteDocument(ctx context.Context, actor models.Actor, documentID, reason string) error {
	if err := requireAdmin(actor, "delete"); err != nil {
		logGuardFailure(s.logger, actor, documentID, "delete", err)
		return err
	}
	if reason == "" {
		return fmt.Errorf("%w: a delete reason is required", domain.ErrValidation)
	}
	if len(reason) > config.MaxReasonLength {
		return fmt.Errorf("%w: delete reason exceeds %d characters", domain.ErrValidation, config.MaxReasonLength)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}

		if err := s.docRepo.Delete(txCtx, documentID, actor.TenantID); err != nil {
			return err
		}

		return s.recorder.MustRecord(txCtx, actor, actor.TenantID, documentID, models.DeletedDetails{
			DocumentNumber: doc.DocumentNumber,
			Version:        doc.Version,
			Status:         doc.Status,
			Reason:         reason,
		})
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "delete", err)
		return err
	}

	s.logger.Info("document deleted by administrator",
		"document_id", documentID,
		"tenant_id", actor.TenantID,
		"deleted_by", actor.UserID,
	)

	return nil
}

// GetAuditTrail returns a document's full audit history. The trail
// survives document deletion, so no existence check is made against the
// documents table.
func (s *documentService) GetAuditTrail(ctx context.Context, actor models.Actor, documentID string) ([]models.AuditLogEntry, error) {
	entries, err := s.auditRepo.ListByDocument(ctx, documentID, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return entries, nil
}

func validateCreateDocument(req *wfSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentTypeID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, maxTitleLength),
		),
		validation.Field(&req.Description, validation.Length(0, maxDescriptionLength)),
		validation.Field(&req.ProjectCode, validation.Length(0, maxProjectCodeLength)),
	)
}

func validateUpdateDraft(req *wfSvc.UpdateDraftRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(1, maxTitleLength)),
		validation.Field(&req.Description, validation.Length(0, maxDescriptionLength)),
		validation.Field(&req.ProjectCode, validation.Length(0, maxProjectCodeLength)),
	)
}
