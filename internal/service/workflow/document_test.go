package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"docflow/internal/config"
	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

func TestCreateDocumentMintsNumberAndVersion(t *testing.T) {
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")

	first := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	second := e.mustCreateDoc(t, creator, dt.ID, "Release checklist")

	if first.DocumentNumber != "FORM-00001" {
		t.Errorf("first number = %s, want FORM-00001", first.DocumentNumber)
	}
	if second.DocumentNumber != "FORM-00002" {
		t.Errorf("second number = %s, want FORM-00002", second.DocumentNumber)
	}
	if first.Version != "vA" || first.Status != models.StatusDraft || first.IsProduction {
		t.Errorf("new document = %s %s production=%t, want vA draft prototype",
			first.Version, first.Status, first.IsProduction)
	}
	if first.DisplayID() != "FORM-00001vA" {
		t.Errorf("display id = %q, want %q", first.DisplayID(), "FORM-00001vA")
	}

	// Each type numbers independently.
	other := e.mustCreateType(t, "SOP")
	doc := e.mustCreateDoc(t, creator, other.ID, "Procedure")
	if doc.DocumentNumber != "SOP-00001" {
		t.Errorf("cross-type number = %s, want SOP-00001", doc.DocumentNumber)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")

	tests := []struct {
		name string
		req  wfSvc.CreateDocumentRequest
	}{
		{name: "missing type", req: wfSvc.CreateDocumentRequest{Title: "x"}},
		{name: "missing title", req: wfSvc.CreateDocumentRequest{DocumentTypeID: dt.ID}},
		{name: "title too long", req: wfSvc.CreateDocumentRequest{
			DocumentTypeID: dt.ID,
			Title:          strings.Repeat("x", maxTitleLength+1),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.docSvc.CreateDocument(ctx, creator, &tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateDocumentInactiveType(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	if _, err := e.typeSvc.SetDocumentTypeActive(ctx, admin, dt.ID, false); err != nil {
		t.Fatalf("deactivate type: %v", err)
	}

	_, err := e.docSvc.CreateDocument(ctx, creator, &wfSvc.CreateDocumentRequest{
		DocumentTypeID: dt.ID,
		Title:          "Intake form",
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("create against inactive type: err = %v, want ErrInvalidState", err)
	}
}

// Concurrent creations against one numbering authority must mint
// distinct numbers with no gaps or duplicates.
func TestCreateDocumentConcurrentNumbering(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")

	const n = 25
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := e.docSvc.CreateDocument(ctx, creator, &wfSvc.CreateDocumentRequest{
				DocumentTypeID: dt.ID,
				Title:          fmt.Sprintf("Document %d", i),
			})
			if err != nil {
				errs <- err
				return
			}
			numbers <- doc.DocumentNumber
		}(i)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	seen := make(map[string]bool, n)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate document number %s", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Fatalf("minted %d distinct numbers, want %d", len(seen), n)
	}
	if !seen["FORM-00001"] || !seen[fmt.Sprintf("FORM-%05d", n)] {
		t.Errorf("numbering has gaps: %v", seen)
	}
}

func TestUpdateDraftGuards(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	title := "Revised"
	if _, err := e.docSvc.UpdateDraft(ctx, alice, doc.ID, &wfSvc.UpdateDraftRequest{Title: &title}); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("edit by non-creator: err = %v, want ErrNotAuthorized", err)
	}

	e.mustRelease(t, creator, doc.ID)
	if _, err := e.docSvc.UpdateDraft(ctx, creator, doc.ID, &wfSvc.UpdateDraftRequest{Title: &title}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("edit a released document: err = %v, want ErrInvalidState", err)
	}
}

func TestListLineage(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	e.mustRelease(t, creator, doc.ID)
	if _, err := e.versions.NewVersion(ctx, creator, doc.ID); err != nil {
		t.Fatalf("new version: %v", err)
	}

	lineage, err := e.docSvc.ListLineage(ctx, creator, doc.DocumentNumber, false)
	if err != nil {
		t.Fatalf("list lineage: %v", err)
	}
	if len(lineage) != 2 {
		t.Fatalf("lineage has %d versions, want 2", len(lineage))
	}
	if lineage[0].Version != "vA" || lineage[1].Version != "vB" {
		t.Errorf("lineage order = %s, %s, want vA, vB", lineage[0].Version, lineage[1].Version)
	}

	if _, err := e.docSvc.ListLineage(ctx, creator, "FORM-99999", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown lineage: err = %v, want ErrNotFound", err)
	}
	if _, err := e.docSvc.ListLineage(ctx, outsider, doc.DocumentNumber, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant lineage: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")

	if err := e.docSvc.DeleteDocument(ctx, creator, doc.ID, "cleanup"); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("delete by non-admin: err = %v, want ErrNotAuthorized", err)
	}
	if err := e.docSvc.DeleteDocument(ctx, admin, doc.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("delete without reason: err = %v, want ErrValidation", err)
	}
	if err := e.docSvc.DeleteDocument(ctx, admin, doc.ID, strings.Repeat("x", config.MaxReasonLength+1)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("overlong delete reason: err = %v, want ErrValidation", err)
	}

	if err := e.docSvc.DeleteDocument(ctx, admin, doc.ID, "created in error"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.docSvc.GetDocument(ctx, creator, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}

	// The audit trail survives the document: creation entry plus the
	// deletion tombstone.
	trail, err := e.docSvc.GetAuditTrail(ctx, admin, doc.ID)
	if err != nil {
		t.Fatalf("audit trail after delete: %v", err)
	}
	var sawTombstone bool
	for _, entry := range trail {
		if entry.Action == models.ActionDeleted {
			sawTombstone = true
		}
	}
	if !sawTombstone {
		t.Error("no deletion tombstone in the audit trail")
	}
}

func TestAuditTrailOrderAndScoping(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")
	doc := e.mustCreateDoc(t, creator, dt.ID, "Intake form")
	e.mustAddApprover(t, doc, alice)
	if _, err := e.lifecycle.Submit(ctx, creator, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := e.lifecycle.Decide(ctx, alice, doc.ID, &wfSvc.DecisionRequest{Decision: models.DecisionApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	trail, err := e.docSvc.GetAuditTrail(ctx, creator, doc.ID)
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	want := []models.Action{
		models.ActionCreated,
		models.ActionApproverAdded,
		models.ActionSubmitted,
		models.ActionDecisionRecorded,
		models.ActionReleased,
	}
	if len(trail) != len(want) {
		t.Fatalf("trail has %d entries, want %d: %v", len(trail), len(want), trail)
	}
	for i, action := range want {
		if trail[i].Action != action {
			t.Errorf("trail[%d] = %s, want %s", i, trail[i].Action, action)
		}
	}

	if _, err := e.docSvc.GetAuditTrail(ctx, outsider, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant trail: err = %v, want ErrNotFound", err)
	}
}
