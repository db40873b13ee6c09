package workflow

import (
	"context"
	"errors"
	"testing"

	"docflow/internal/domain"
	wfSvc "docflow/internal/domain/services/workflow"
)

func TestCreateDocumentType(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	dt, err := e.typeSvc.CreateDocumentType(ctx, admin, &wfSvc.CreateDocumentTypeRequest{
		Prefix: "FORM",
		Name:   "Forms",
	})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	if dt.NextNumber != 1 || !dt.IsActive {
		t.Errorf("new type next=%d active=%t, want 1 true", dt.NextNumber, dt.IsActive)
	}

	// Admin only.
	if _, err := e.typeSvc.CreateDocumentType(ctx, creator, &wfSvc.CreateDocumentTypeRequest{Prefix: "SOP", Name: "Procedures"}); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("create by non-admin: err = %v, want ErrNotAuthorized", err)
	}

	// One prefix per tenant.
	if _, err := e.typeSvc.CreateDocumentType(ctx, admin, &wfSvc.CreateDocumentTypeRequest{Prefix: "FORM", Name: "More forms"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate prefix: err = %v, want ErrAlreadyExists", err)
	}

	for _, prefix := range []string{"", "form", "F", "9FORM", "WAY-TOO-LONG-PREFIX"} {
		if _, err := e.typeSvc.CreateDocumentType(ctx, admin, &wfSvc.CreateDocumentTypeRequest{Prefix: prefix, Name: "x"}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("prefix %q: err = %v, want ErrValidation", prefix, err)
		}
	}
}

func TestSetDocumentTypeActive(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	dt := e.mustCreateType(t, "FORM")

	if _, err := e.typeSvc.SetDocumentTypeActive(ctx, creator, dt.ID, false); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("deactivate by non-admin: err = %v, want ErrNotAuthorized", err)
	}

	got, err := e.typeSvc.SetDocumentTypeActive(ctx, admin, dt.ID, false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.IsActive {
		t.Error("type still active after deactivation")
	}

	got, err = e.typeSvc.SetDocumentTypeActive(ctx, admin, dt.ID, true)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !got.IsActive {
		t.Error("type inactive after reactivation")
	}
}
