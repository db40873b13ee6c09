package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docflow/internal/config"
	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

// lifecycleService implements the LifecycleService interface. It owns
// the status field: Draft -> InApproval -> Released -> Obsolete, with
// the InApproval -> Draft cycle on rejection or withdrawal. Every method
// runs one transaction; the document row lock taken at the top
// serializes concurrent transitions so consensus is always computed
// from a consistent approver snapshot.
type lifecycleService struct {
	docRepo      wfRepo.DocumentRepository
	approverRepo wfRepo.ApproverRepository
	txManager    repositories.TransactionManager
	recorder     wfSvc.AuditRecorder
	notifier     wfSvc.Notifier
	logger       *slog.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	docRepo wfRepo.DocumentRepository,
	approverRepo wfRepo.ApproverRepository,
	txManager repositories.TransactionManager,
	recorder wfSvc.AuditRecorder,
	notifier wfSvc.Notifier,
	logger *slog.Logger,
) wfSvc.LifecycleService {
	return &lifecycleService{
		docRepo:      docRepo,
		approverRepo: approverRepo,
		txManager:    txManager,
		recorder:     recorder,
		notifier:     notifier,
		logger:       logger,
	}
}

// Submit moves a Draft into approval, or straight to Released when the
// approver set is empty (the no-approver fast path).
func (s *lifecycleService) Submit(ctx context.Context, actor models.Actor, documentID string) (*models.Document, error) {
	var doc *models.Document
	var events []wfSvc.Event

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		events = events[:0]
		var err error
		doc, err = s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "submit"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusDraft, "submit"); err != nil {
			return err
		}

		approvers, err := s.approverRepo.ListByDocumentForUpdate(txCtx, doc.ID)
		if err != nil {
			return err
		}

		// A fresh submission clears the previous round's rejection note
		// and returns every approver to Pending.
		doc.RejectionReason = nil

		if len(approvers) == 0 {
			if err := s.release(txCtx, actor, doc); err != nil {
				return err
			}
			s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.SubmittedDetails{
				ApproverCount: 0,
				AutoReleased:  true,
			})
			events = append(events, s.event(wfSvc.EventReleased, actor, doc, nil, ""))
			return nil
		}

		if err := s.approverRepo.ResetPending(txCtx, doc.ID); err != nil {
			return err
		}

		doc.Status = models.StatusInApproval
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.SubmittedDetails{
			ApproverCount: len(approvers),
			AutoReleased:  false,
		})
		events = append(events, s.event(wfSvc.EventSubmitted, actor, doc, approverEmails(approvers), ""))
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "submit", err)
		return nil, err
	}

	s.emit(ctx, events)
	return doc, nil
}

// Withdraw pulls an InApproval document back to Draft. Creator only;
// recorded decisions are left untouched.
func (s *lifecycleService) Withdraw(ctx context.Context, actor models.Actor, documentID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireCreator(doc, actor, "withdraw"); err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusInApproval, "withdraw"); err != nil {
			return err
		}

		approvers, err := s.approverRepo.ListByDocument(txCtx, doc.ID)
		if err != nil {
			return err
		}

		if err := s.docRepo.TransitionStatus(txCtx, doc.ID, actor.TenantID, models.StatusInApproval, models.StatusDraft); err != nil {
			return err
		}
		doc.Status = models.StatusDraft

		pending := 0
		for i := range approvers {
			if approvers[i].Status == models.DecisionPending {
				pending++
			}
		}
		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.WithdrawnDetails{
			PendingApprovers: pending,
		})
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "withdraw", err)
		return nil, err
	}

	s.notifier.Notify(ctx, s.event(wfSvc.EventWithdrawn, actor, doc, nil, ""))
	return doc, nil
}

// Decide records one approver's vote. Full approval releases, a single
// rejection returns the document to Draft with the mandatory reason.
func (s *lifecycleService) Decide(ctx context.Context, actor models.Actor, documentID string, req *wfSvc.DecisionRequest) (*models.Document, error) {
	if err := validateDecision(req); err != nil {
		return nil, err
	}

	var doc *models.Document
	var events []wfSvc.Event

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		events = events[:0]
		var err error
		doc, err = s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}
		if err := requireStatus(doc, models.StatusInApproval, "record a decision on"); err != nil {
			return err
		}

		approver, err := s.approverRepo.GetByUser(txCtx, doc.ID, actor.UserID)
		if err != nil {
			// A decision from outside the approver set is an authorization
			// failure, not a missing resource.
			return fmt.Errorf("user %s is not an approver on document %s: %w", actor.UserID, doc.ID, domain.ErrNotAuthorized)
		}
		if approver.Status != models.DecisionPending {
			return &domain.StateError{
				DocumentID: doc.ID,
				Current:    "decision already " + string(approver.Status),
				Attempted:  "vote again",
			}
		}

		now := time.Now().UTC()
		approver.Status = req.Decision
		approver.Comments = req.Comments
		approver.DecidedAt = &now
		if req.Decision == models.DecisionRejected {
			approver.RejectionReason = &req.Reason
		}
		if err := s.approverRepo.UpdateDecision(txCtx, approver); err != nil {
			return err
		}

		s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.DecisionDetails{
			ApproverID: approver.ID,
			Decision:   req.Decision,
			Comments:   req.Comments,
		})

		if req.Decision == models.DecisionRejected {
			// Short-circuit: the whole document returns to Draft. Other
			// approvers' pending votes become moot and are left as-is.
			doc.Status = models.StatusDraft
			doc.RejectionReason = &req.Reason
			if err := s.docRepo.Update(txCtx, doc); err != nil {
				return err
			}

			s.recorder.Record(txCtx, actor, actor.TenantID, doc.ID, models.RejectedDetails{
				RejectedBy: actor.UserID,
				Reason:     req.Reason,
			})
			events = append(events, s.event(wfSvc.EventRejected, actor, doc, []string{doc.CreatedByEmail}, req.Reason))
			return nil
		}

		// Consensus from the locked snapshot: the document row lock above
		// serializes concurrent approvals, so two racing "last approvals"
		// cannot both see an incomplete set.
		approvers, err := s.approverRepo.ListByDocumentForUpdate(txCtx, doc.ID)
		if err != nil {
			return err
		}
		c := evaluateConsensus(approvers)
		if !c.FullyApproved {
			events = append(events, s.event(wfSvc.EventApproved, actor, doc, []string{doc.CreatedByEmail}, ""))
			return nil
		}

		if err := s.release(txCtx, actor, doc); err != nil {
			return err
		}
		events = append(events, s.event(wfSvc.EventReleased, actor, doc, approverEmails(approvers), ""))
		return nil
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "decide", err)
		return nil, err
	}

	s.emit(ctx, events)
	return doc, nil
}

// OverrideStatus forces a status outside the normal guards. Admin only.
// The lineage invariants still hold: the partial unique indexes reject
// an override that would mint a second Released or in-flight version,
// and identifier uniqueness can never be bypassed.
func (s *lifecycleService) OverrideStatus(ctx context.Context, actor models.Actor, documentID string, req *wfSvc.OverrideRequest) (*models.Document, error) {
	if err := requireAdmin(actor, "status override"); err != nil {
		logGuardFailure(s.logger, actor, documentID, "override", err)
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: an override reason is required", domain.ErrValidation)
	}
	if len(req.Reason) > config.MaxReasonLength {
		return nil, fmt.Errorf("%w: override reason exceeds %d characters", domain.ErrValidation, config.MaxReasonLength)
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetByIDForUpdate(txCtx, documentID, actor.TenantID)
		if err != nil {
			return err
		}

		from := doc.Status
		doc.Status = req.Status
		if req.Status == models.StatusReleased && doc.ReleasedAt == nil {
			now := time.Now().UTC()
			doc.ReleasedBy = &actor.UserID
			doc.ReleasedAt = &now
		}
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		// Overrides are mandatorily audited; a failed audit write rolls
		// the override back.
		return s.recorder.MustRecord(txCtx, actor, actor.TenantID, doc.ID, models.OverrideDetails{
			FromStatus: from,
			ToStatus:   req.Status,
			Reason:     req.Reason,
		})
	})
	if err != nil {
		logGuardFailure(s.logger, actor, documentID, "override", err)
		return nil, err
	}

	s.logger.Warn("admin status override applied",
		"document_id", doc.ID,
		"status", doc.Status,
		"admin", actor.UserID,
	)
	return doc, nil
}

// release stamps the document Released and supersedes the lineage's
// previously Released version, if any. Supersession happens exactly
// here - when the successor becomes Released - never eagerly.
func (s *lifecycleService) release(ctx context.Context, actor models.Actor, doc *models.Document) error {
	now := time.Now().UTC()
	doc.Status = models.StatusReleased
	doc.ReleasedBy = &actor.UserID
	doc.ReleasedAt = &now

	versions, err := s.docRepo.ListByLineage(ctx, doc.TenantID, doc.DocumentNumber, doc.IsProduction)
	if err != nil {
		return err
	}

	var superseded *string
	for i := range versions {
		if versions[i].ID != doc.ID && versions[i].Status == models.StatusReleased {
			if err := s.docRepo.Supersede(ctx, versions[i].ID, doc.TenantID); err != nil {
				return err
			}
			superseded = &versions[i].Version
			break
		}
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, doc.TenantID, doc.ID, models.ReleasedDetails{
		Version:           doc.Version,
		SupersededVersion: superseded,
	})
	return nil
}

// event builds a notification payload for post-commit emission.
func (s *lifecycleService) event(kind wfSvc.EventKind, actor models.Actor, doc *models.Document, recipients []string, reason string) wfSvc.Event {
	return wfSvc.Event{
		Kind:       kind,
		TenantID:   doc.TenantID,
		Document:   doc.ID,
		Display:    doc.DisplayID(),
		Actor:      actor,
		Recipients: recipients,
		Reason:     reason,
	}
}

// emit dispatches events after the transaction committed. Fire and
// forget: the notifier swallows its own failures.
func (s *lifecycleService) emit(ctx context.Context, events []wfSvc.Event) {
	for _, e := range events {
		s.notifier.Notify(ctx, e)
	}
}

func approverEmails(approvers []models.Approver) []string {
	emails := make([]string, 0, len(approvers))
	for i := range approvers {
		emails = append(emails, approvers[i].UserEmail)
	}
	return emails
}

func validateDecision(req *wfSvc.DecisionRequest) error {
	switch req.Decision {
	case models.DecisionApproved:
		return nil
	case models.DecisionRejected:
		if req.Reason == "" {
			return fmt.Errorf("%w: a rejection reason is required", domain.ErrValidation)
		}
		if len(req.Reason) > config.MaxReasonLength {
			return fmt.Errorf("%w: rejection reason exceeds %d characters", domain.ErrValidation, config.MaxReasonLength)
		}
		return nil
	default:
		return fmt.Errorf("%w: decision must be %q or %q", domain.ErrValidation, models.DecisionApproved, models.DecisionRejected)
	}
}
