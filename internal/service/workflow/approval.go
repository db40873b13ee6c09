package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

// approvalService implements the ApprovalService interface: membership
// of the approver set, guarded to Draft documents and their creator.
// Consensus over recorded decisions lives in consensus.go and is
// consumed by the lifecycle service.
type approvalService struct {
	docRepo      wfRepo.DocumentRepository
	approverRepo wfRepo.ApproverRepository
	txManager    repositories.TransactionManager
	recorder     wfSvc.AuditRecorder
	logger       *slog.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	docRepo wfRepo.DocumentRepository,
	approverRepo wfRepo.ApproverRepository,
	txManager repositories.TransactionManager,
	recorder wfSvc.AuditRecorder,
	logger *slog.Logger,
) wfSvc.ApprovalService {
	return &approvalService{
		docRepo:      docRepo,
		approverRepo: approverRepo,
		txManager:    txManager,
		recorder:     recorder,
		logger:       logger,
	}
}

// AddApprover adds a user to the approver set. Draft only, creator only.
func (s *approvalService) AddApprover(ctx context.Context, actor models.Actor, documentID string, req *wfSvc.AddApproverRequest) (*models.Approver, error) {
	if err := validateAddApprover(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var approver *models.Approver
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "add an approver to"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "add approver"); err != nil {
			return err
		}

		approver = &models.Approver{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			UserID:     req.UserID,
			UserEmail:  req.UserEmail,
			Status:     models.DecisionPending,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.approverRepo.Add(txCtx, approver); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.ApproverAddedDetails{
			ApproverUserID: req.UserID,
			ApproverEmail:  req.UserEmail,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "add approver", err)
		return nil, err
	}

	return approver, nil
}

// RemoveApprover removes a user from the approver set. Draft only,
// creator only.
func (s *approvalService) RemoveApprover(ctx context.Context, actor models.Actor, documentID, userID string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "remove an approver from"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "remove approver"); err != nil {
			return err
		}

		if err := s.approverRepo.Remove(txCtx, doc.ID, userID); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.ApproverRemovedDetails{
			ApproverUserID: userID,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "remove approver", err)
		return err
	}

	return nil
}

// ListApprovers returns the set, insertion order
func (s *approvalService) ListApprovers(ctx context.Context, actor models.Actor, documentID string) ([]models.Approver, error) {
	// Tenant scoping rides on the document lookup
	if _, err := s.docRepo.GetByID(ctx, documentID, actor.TenantID); err != nil {
		return nil, err
	}
	return s.approverRepo.ListByDocument(ctx, documentID)
}

func validateAddApprover(req *wfSvc.AddApproverRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.UserEmail, validation.Required, is.EmailFormat),
	)
}
