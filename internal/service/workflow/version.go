package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

// versionService implements the VersionService interface: successor
// versions within a lineage, and promotion of a prototype lineage into
// an independent production one.
type versionService struct {
	docRepo   wfRepo.DocumentRepository
	txManager repositories.TransactionManager
	recorder  wfSvc.AuditRecorder
	notifier  wfSvc.Notifier
	logger    *slog.Logger
}

// NewVersionService creates a new version service
func NewVersionService(
	docRepo wfRepo.DocumentRepository,
	txManager repositories.TransactionManager,
	recorder wfSvc.AuditRecorder,
	notifier wfSvc.Notifier,
	logger *slog.Logger,
) wfSvc.VersionService {
	return &versionService{
		docRepo:   docRepo,
		txManager: txManager,
		recorder:  recorder,
		notifier:  notifier,
		logger:    logger,
	}
}

// NewVersion creates the next Draft version of a lineage. Permitted only
// when the lineage's current version is Released; the suffix follows the
// lineage's scheme (letters for prototype, numbers for production).
// Files and approvers are deliberately not copied - both start empty.
func (s *versionService) NewVersion(ctx context.Context, actor models.Actor, documentID string) (*models.Document, error) {
	var newDoc *models.Document

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		src, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}

		// The guard is against the lineage's current version, not the row
		// the caller happened to name: versioning from an Obsolete row or
		// while a draft is in flight is refused either way.
		current, err := s.docRepo.GetCurrent(txCtx, actor.TenantID, src.DocumentNumber, src.IsProduction)
		if err != nil {
			return err
		}
		if err := requireStatus(current, models.StatusReleased, "create a new version of"); err != nil {
			return err
		}

		next, err := models.NextVersion(current.Version, current.IsProduction)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}

		now := time.Now().UTC()
		newDoc = &models.Document{
			ID:             uuid.New().String(),
			TenantID:       current.TenantID,
			DocumentTypeID: current.DocumentTypeID,
			DocumentNumber: current.DocumentNumber,
			Version:        next,
			Title:          current.Title,
			Description:    current.Description,
			Status:         models.StatusDraft,
			IsProduction:   current.IsProduction,
			ProjectCode:    current.ProjectCode,
			CreatedBy:      actor.UserID,
			CreatedByEmail: actor.Email,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.docRepo.Create(txCtx, newDoc); err != nil {
			return err
		}

		if err := s.recorder.MustRecord(txCtx, actor, actor.TenantID, newDoc.ID, models.CreatedDetails{
			DocumentNumber: newDoc.DocumentNumber,
			Version:        newDoc.Version,
			Title:          newDoc.Title,
			IsProduction:   newDoc.IsProduction,
			ProjectCode:    newDoc.ProjectCode,
		}); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, newDoc.ID, models.NewVersionDetails{
			FromVersion: current.Version,
			NewVersion:  next,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "new version", err)
		return nil, err
	}

	s.notifier.Notify(ctx, wfSvc.Event{
		Kind:     wfSvc.EventNewVersion,
		TenantID: newDoc.TenantID,
		Document: newDoc.ID,
		Display:  newDoc.DisplayID(),
		Actor:    actor,
	})
	return newDoc, nil
}

// Promote turns a Released prototype into a brand-new production lineage
// sharing the document number: v1, Draft, its own approvals and history.
// At most once per document number; the prototype lineage is unaffected
// and remains Released.
func (s *versionService) Promote(ctx context.Context, actor models.Actor, documentID string) (*models.Document, error) {
	var promoted *models.Document

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		src, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if src.IsProduction {
			return &domain.StateError{
				DocumentID: src.ID,
				Current:    "production",
				Attempted:  "promote",
			}
		}
		if err := requireCreator(src, actor, "promote"); err != nil {
			return err
		}
		if err := requireStatus(src, models.StatusReleased, "promote"); err != nil {
			return err
		}

		// Promotion may happen at most once per document number. The
		// unique (tenant, number, version) constraint backstops this
		// check against a racing promotion: production always starts at
		// v1, so the second insert collides.
		existing, err := s.docRepo.ListByLineage(txCtx, actor.TenantID, src.DocumentNumber, true)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s has already been promoted", src.DocumentNumber),
				ResourceType: "document",
				ResourceID:   existing[0].ID,
			}
		}

		now := time.Now().UTC()
		promoted = &models.Document{
			ID:             uuid.New().String(),
			TenantID:       src.TenantID,
			DocumentTypeID: src.DocumentTypeID,
			DocumentNumber: src.DocumentNumber,
			Version:        models.FirstProductionVersion,
			Title:          src.Title,
			Description:    src.Description,
			Status:         models.StatusDraft,
			IsProduction:   true,
			ProjectCode:    src.ProjectCode,
			CreatedBy:      actor.UserID,
			CreatedByEmail: actor.Email,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.docRepo.Create(txCtx, promoted); err != nil {
			return err
		}

		if err := s.recorder.MustRecord(txCtx, actor, actor.TenantID, promoted.ID, models.CreatedDetails{
			DocumentNumber: promoted.DocumentNumber,
			Version:        promoted.Version,
			Title:          promoted.Title,
			IsProduction:   true,
			ProjectCode:    promoted.ProjectCode,
		}); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, promoted.ID, models.PromotedDetails{
			SourceDocumentID: src.ID,
			SourceVersion:    src.Version,
			NewVersion:       promoted.Version,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "promote", err)
		return nil, err
	}

	s.notifier.Notify(ctx, wfSvc.Event{
		Kind:     wfSvc.EventPromoted,
		TenantID: promoted.TenantID,
		Document: promoted.ID,
		Display:  promoted.DisplayID(),
		Actor:    actor,
	})
	return promoted, nil
}
