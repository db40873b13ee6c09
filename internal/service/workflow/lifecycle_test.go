package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docflow/internal/config"
	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

func TestSubmitNoApproversReleasesImmediately(t *testing.T) {
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	released, err := e.lifecycle.Submit(context.Background(), creator, doc.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if released.Status != models.StatusReleased {
		t.Errorf("status = %s, want released", released.Status)
	}
	if released.ReleasedBy == nil || *released.ReleasedBy != creator.UserID {
		t.Errorf("released_by = %v, want %s", released.ReleasedBy, creator.UserID)
	}
	if released.ReleasedAt == nil {
		t.Error("released_at not stamped")
	}

	kinds := e.notifier.kinds()
	if len(kinds) != 1 || kinds[0] != wfSvc.EventReleased {
		t.Errorf("events = %v, want [released]", kinds)
	}
}

func TestSubmitWithApproversEntersApproval(t *testing.T) {
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	e.mustAddApprover(t, doc, alice)
	e.mustAddApprover(t, doc, bob)

	got, err := e.lifecycle.Submit(context.Background(), creator, doc.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Status != models.StatusInApproval {
		t.Errorf("status = %s, want in_approval", got.Status)
	}
	if got.ReleasedAt != nil {
		t.Error("released_at stamped on a document still in approval")
	}
}

func TestSubmitGuards(t *testing.T) {
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	if _, err := e.lifecycle.Submit(context.Background(), alice, doc.ID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("submit by non-creator: err = %v, want ErrNotAuthorized", err)
	}

	if _, err := e.lifecycle.Submit(context.Background(), creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Already Released via the fast path; a second submit violates the guard.
	if _, err := e.lifecycle.Submit(context.Background(), creator, doc.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("second submit: err = %v, want ErrInvalidState", err)
	}

	if _, err := e.lifecycle.Submit(context.Background(), outsider, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant submit: err = %v, want ErrNotFound", err)
	}
}

// TestApprovalRoundTrip walks the full review cycle: two approvers, one
// approval, one rejection with a reason, an edit, a resubmission, and
// consensus release - then a new version that supersedes the first on
// its own release.
func TestApprovalRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")

	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	if doc.DocumentNumber != "FORM-00001" || doc.Version != "vA" {
		t.Fatalf("minted %s %s, want FORM-00001 vA", doc.DocumentNumber, doc.Version)
	}

	e.mustAddApprover(t, doc, alice)
	e.mustAddApprover(t, doc, bob)

	if _, err := e.lifecycle.Submit(ctx, creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// First approval alone is not consensus.
	got, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved})
	if err != nil {
		t.Fatalf("alice approves: %v", err)
	}
	if got.Status != models.StatusInApproval {
		t.Fatalf("status after one approval = %s, want in_approval", got.Status)
	}

	// A single rejection short-circuits the set.
	got, err = e.lifecycle.Decide(ctx, bob, doc.ID, &wfSvc.DecisionRequest{
		Decision: models.DecisionRejected,
		Reason:   "missing signature",
	})
	if err != nil {
		t.Fatalf("bob rejects: %v", err)
	}
	if got.Status != models.StatusDraft {
		t.Fatalf("status after rejection = %s, want draft", got.Status)
	}
	if got.RejectionReason == nil || *got.RejectionReason != "missing signature" {
		t.Fatalf("rejection reason = %v, want %q", got.RejectionReason, "missing signature")
	}

	// Alice's earlier approval was left as-is (moot, not reset).
	a, err := e.approvers.GetByUser(ctx, doc.ID, alice.UserID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if a.Status != models.DecisionApproved {
		t.Errorf("alice's vote after rejection = %s, want approved (left as-is)", a.Status)
	}

	// Creator fixes the draft and resubmits; both approvals release it.
	title := "Intake form (signed)"
	if _, err := e.docSvc.UpdateDraft(ctx, creator, doc.ID, &wfSvc.UpdateDraftRequest{Title: &title}); err != nil {
		t.Fatalf("edit draft: %v", err)
	}
	resubmitted, err := e.lifecycle.Submit(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.RejectionReason != nil {
		t.Error("rejection reason not cleared on resubmission")
	}

	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); err != nil {
		t.Fatalf("alice approves again: %v", err)
	}
	got, err = e.lifecycle.Decide(ctx, bob, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved})
	if err != nil {
		t.Fatalf("bob approves: %v", err)
	}
	if got.Status != models.StatusReleased {
		t.Fatalf("status after consensus = %s, want released", got.Status)
	}

	// A successor draft coexists with the Released vA...
	v2, err := e.versions.NewVersion(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("new version: %v", err)
	}
	if v2.Version != "vB" || v2.Status != models.StatusDraft {
		t.Fatalf("new version = %s %s, want vB draft", v2.Version, v2.Status)
	}
	if e.status(t, doc.ID) != models.StatusReleased {
		t.Fatal("vA obsoleted before vB was released")
	}

	// ...until the successor is released, which supersedes it.
	if _, err := e.lifecycle.Submit(ctx, creator, v2.ID); err != nil {
		t.Fatalf("submit vB: %v", err)
	}
	if e.status(t, doc.ID) != models.StatusObsolete {
		t.Errorf("vA status after vB release = %s, want obsolete", e.status(t, doc.ID))
	}
	if e.status(t, v2.ID) != models.StatusReleased {
		t.Errorf("vB status = %s, want released", e.status(t, v2.ID))
	}
}

func TestDecideGuards(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	e.mustAddApprover(t, doc, alice)

	// Not yet submitted.
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("decide on draft: err = %v, want ErrInvalidState", err)
	}

	if _, err := e.lifecycle.Submit(ctx, creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Non-approver.
	if _, err := e.lifecycle.Decide(ctx, bob, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("decide by non-approver: err = %v, want ErrNotAuthorized", err)
	}

	// Rejection without a reason.
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionRejected}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("reject without reason: err = %v, want ErrValidation", err)
	}

	// Unknown decision value.
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: "maybe"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown decision: err = %v, want ErrValidation", err)
	}

	// Rejection reason over the length cap.
	long := strings.Repeat("x", config.MaxReasonLength+1)
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionRejected, Reason: long}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("overlong rejection reason: err = %v, want ErrValidation", err)
	}

	// Double vote. The first approval releases (single approver), so the
	// second fails the InApproval guard before the re-vote check matters.
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("vote after release: err = %v, want ErrInvalidState", err)
	}
}

func TestWithdrawReturnsToDraft(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	e.mustAddApprover(t, doc, alice)
	e.mustAddApprover(t, doc, bob)

	if _, err := e.lifecycle.Submit(ctx, creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Only the creator may withdraw.
	if _, err := e.lifecycle.Withdraw(ctx, alice, doc.ID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("withdraw by approver: err = %v, want ErrNotAuthorized", err)
	}

	got, err := e.lifecycle.Withdraw(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got.Status != models.StatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}

	// Withdrawal does not reset recorded decisions.
	a, err := e.approvers.GetByUser(ctx, doc.ID, alice.UserID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if a.Status != models.DecisionApproved {
		t.Errorf("alice's vote after withdraw = %s, want approved", a.Status)
	}

	// Withdraw is only valid from InApproval.
	if _, err := e.lifecycle.Withdraw(ctx, creator, doc.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("withdraw a draft: err = %v, want ErrInvalidState", err)
	}
}

func TestOverrideStatus(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	if _, err := e.lifecycle.OverrideStatus(ctx, creator, doc.ID, &wfSvc.OverrideRequest{Status: models.StatusReleased, Reason: "because"}); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("override by non-admin: err = %v, want ErrNotAuthorized", err)
	}
	if _, err := e.lifecycle.OverrideStatus(ctx, admin, doc.ID, &wfSvc.OverrideRequest{Status: "limbo", Reason: "because"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("override to unknown status: err = %v, want ErrValidation", err)
	}
	if _, err := e.lifecycle.OverrideStatus(ctx, admin, doc.ID, &wfSvc.OverrideRequest{Status: models.StatusReleased}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("override without reason: err = %v, want ErrValidation", err)
	}
	long := strings.Repeat("x", config.MaxReasonLength+1)
	if _, err := e.lifecycle.OverrideStatus(ctx, admin, doc.ID, &wfSvc.OverrideRequest{Status: models.StatusReleased, Reason: long}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("overlong override reason: err = %v, want ErrValidation", err)
	}

	got, err := e.lifecycle.OverrideStatus(ctx, admin, doc.ID, &wfSvc.OverrideRequest{Status: models.StatusReleased, Reason: "migration backfill"})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if got.Status != models.StatusReleased {
		t.Errorf("status = %s, want released", got.Status)
	}
	if got.ReleasedBy == nil || *got.ReleasedBy != admin.UserID {
		t.Errorf("released_by = %v, want %s", got.ReleasedBy, admin.UserID)
	}

	actions := e.audit.actions(doc.ID)
	found := false
	for _, a := range actions {
		if a == models.ActionAdminOverride {
			found = true
		}
	}
	if !found {
		t.Errorf("audit trail %v missing admin override entry", actions)
	}
}

// An override cannot mint a second Released version for one lineage.
func TestOverridePreservesLineageInvariant(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	if _, err := e.lifecycle.Submit(ctx, creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v2, err := e.versions.NewVersion(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("new version: %v", err)
	}

	if _, err := e.lifecycle.OverrideStatus(ctx, admin, v2.ID, &wfSvc.OverrideRequest{Status: models.StatusReleased, Reason: "force"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("override minting second released version: err = %v, want ErrAlreadyExists", err)
	}
}

// A failed audit write must not roll back a transition, except for the
// synchronous created/deleted events.
func TestAuditFailureSemantics(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	e.audit.failing = true

	// Create is gap-free: it must fail when the audit write fails.
	if _, err := e.docSvc.CreateDocument(ctx, creator, &wfSvc.CreateDocumentRequest{
		DocumentTypeID: dt.ID,
		Title:          "Another",
	}); err == nil {
		t.Error("create succeeded despite failed audit write")
	}

	// Submit is fire-and-log: the transition goes through.
	got, err := e.lifecycle.Submit(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("submit with failing audit store: %v", err)
	}
	if got.Status != models.StatusReleased {
		t.Errorf("status = %s, want released", got.Status)
	}
}
