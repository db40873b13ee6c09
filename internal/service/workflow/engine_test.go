package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"

	models "docflow/internal/domain/models/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

var (
	creator  = models.Actor{UserID: "u-creator", Email: "creator@acme.test", TenantID: "t1"}
	alice    = models.Actor{UserID: "u-alice", Email: "alice@acme.test", TenantID: "t1"}
	bob      = models.Actor{UserID: "u-bob", Email: "bob@acme.test", TenantID: "t1"}
	admin    = models.Actor{UserID: "u-admin", Email: "admin@acme.test", TenantID: "t1", IsAdmin: true}
	outsider = models.Actor{UserID: "u-out", Email: "out@other.test", TenantID: "t2"}
)

// engine wires every service over the in-memory fakes, mirroring the
// wiring in cmd/server.
type engine struct {
	docs      *fakeDocRepo
	types     *fakeTypeRepo
	approvers *fakeApproverRepo
	audit     *fakeAuditRepo
	files     *fakeFileRepo
	notifier  *fakeNotifier

	docSvc    wfSvc.DocumentService
	typeSvc   wfSvc.DocumentTypeService
	lifecycle wfSvc.LifecycleService
	versions  wfSvc.VersionService
	approvals wfSvc.ApprovalService
	fileSvc   wfSvc.FileService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	e := &engine{
		docs:      &fakeDocRepo{},
		types:     newFakeTypeRepo(),
		approvers: &fakeApproverRepo{},
		audit:     &fakeAuditRepo{},
		files:     &fakeFileRepo{},
		notifier:  &fakeNotifier{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := fakeTxManager{}
	recorder := NewAuditRecorder(e.audit, logger)

	e.docSvc = NewDocumentService(e.docs, e.types, e.audit, tx, recorder, logger)
	e.typeSvc = NewDocumentTypeService(e.types, logger)
	e.lifecycle = NewLifecycleService(e.docs, e.approvers, tx, recorder, e.notifier, logger)
	e.versions = NewVersionService(e.docs, tx, recorder, e.notifier, logger)
	e.approvals = NewApprovalService(e.docs, e.approvers, tx, recorder, logger)
	e.fileSvc = NewFileService(e.docs, e.files, tx, recorder, logger)

	return e
}

func (e *engine) mustCreateType(t *testing.T, prefix string) *models.DocumentType {
	t.Helper()
	dt, err := e.typeSvc.CreateDocumentType(context.Background(), admin, &wfSvc.CreateDocumentTypeRequest{
		Prefix: prefix,
		Name:   prefix + " documents",
	})
	if err != nil {
		t.Fatalf("create document type %s: %v", prefix, err)
	}
	return dt
}

func (e *engine) mustCreateDoc(t *testing.T, actor models.Actor, typeID, title string) *models.Document {
	t.Helper()
	doc, err := e.docSvc.CreateDocument(context.Background(), actor, &wfSvc.CreateDocumentRequest{
		DocumentTypeID: typeID,
		Title:          title,
	})
	if err != nil {
		t.Fatalf("create document %q: %v", title, err)
	}
	return doc
}

func (e *engine) mustAddApprover(t *testing.T, doc *models.Document, user models.Actor) {
	t.Helper()
	_, err := e.approvals.AddApprover(context.Background(), creator, doc.ID, &wfSvc.AddApproverRequest{
		UserID:    user.UserID,
		UserEmail: user.Email,
	})
	if err != nil {
		t.Fatalf("add approver %s: %v", user.UserID, err)
	}
}

func (e *engine) status(t *testing.T, id string) models.Status {
	t.Helper()
	doc, err := e.docSvc.GetDocument(context.Background(), creator, id)
	if err != nil {
		t.Fatalf("get document %s: %v", id, err)
	}
	return doc.Status
}
