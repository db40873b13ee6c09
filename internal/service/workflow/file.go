package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docflow/internal/config"
	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

// fileService implements the FileService interface. Attachments are
// references into an external file store; antivirus scanning is out of
// band and its outcome never gates a lifecycle transition. That means a
// document can be Released while an attachment's scan is still pending -
// kept as observed rather than silently tightened.
type fileService struct {
	docRepo   wfRepo.DocumentRepository
	fileRepo  wfRepo.FileRepository
	txManager repositories.TransactionManager
	recorder  wfSvc.AuditRecorder
	logger    *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	docRepo wfRepo.DocumentRepository,
	fileRepo wfRepo.FileRepository,
	txManager repositories.TransactionManager,
	recorder wfSvc.AuditRecorder,
	logger *slog.Logger,
) wfSvc.FileService {
	return &fileService{
		docRepo:   docRepo,
		fileRepo:  fileRepo,
		txManager: txManager,
		recorder:  recorder,
		logger:    logger,
	}
}

// AttachFile records a reference to an externally stored file. Creator
// only, Draft only.
func (s *fileService) AttachFile(ctx context.Context, actor models.Actor, documentID string, req *wfSvc.AttachFileRequest) (*models.FileRef, error) {
	if err := validateAttachFile(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var ref *models.FileRef
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "attach a file to"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "attach file"); err != nil {
			return err
		}

		ref = &models.FileRef{
			ID:         req.FileID,
			DocumentID: doc.ID,
			FileName:   req.FileName,
			Size:       req.Size,
			Checksum:   req.Checksum,
			ScanState:  models.ScanPending,
			AttachedBy: actor.UserID,
			AttachedAt: time.Now().UTC(),
		}
		if err := s.fileRepo.Attach(txCtx, ref); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.FileAttachedDetails{
			FileID:   ref.ID,
			FileName: ref.FileName,
			Size:     ref.Size,
			Checksum: ref.Checksum,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "attach file", err)
		return nil, err
	}

	return ref, nil
}

// DetachFile removes a reference. Creator only, Draft only.
func (s *fileService) DetachFile(ctx context.Context, actor models.Actor, documentID, fileID string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "detach a file from"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "detach file"); err != nil {
			return err
		}

		if err := s.fileRepo.Detach(txCtx, fileID, doc.ID); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.FileDetachedDetails{
			FileID: fileID,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "detach file", err)
		return err
	}

	return nil
}

// ListFiles returns a document's attachments
func (s *fileService) ListFiles(ctx context.Context, actor models.Actor, documentID string) ([]models.FileRef, error) {
	// Tenant scoping rides on the document lookup
	if _, err := s.docRepo.GetByID(ctx, documentID, actor.TenantID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByDocument(ctx, documentID)
}

// RecordScanOutcome applies the external scanner's verdict. No actor:
// the scanner callback is authenticated at the transport layer and keyed
// by file id alone.
func (s *fileService) RecordScanOutcome(ctx context.Context, fileID string, state models.ScanState) error {
	switch state {
	case models.ScanPending, models.ScanScanning, models.ScanSafe, models.ScanBlocked, models.ScanError:
	default:
		return fmt.Errorf("%w: unknown scan state %q", domain.ErrValidation, state)
	}

	if err := s.fileRepo.UpdateScanState(ctx, fileID, state); err != nil {
		return err
	}

	if state == models.ScanBlocked {
		s.logger.Warn("attachment blocked by scanner", "file_id", fileID)
	}
	return nil
}

func validateAttachFile(req *wfSvc.AttachFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.FileID, validation.Required),
		validation.Field(&req.FileName, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&req.Size, validation.Min(0)),
		validation.Field(&req.Checksum, validation.Required),
	)
}
