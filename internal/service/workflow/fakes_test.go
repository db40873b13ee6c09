package workflow

import (
	"context"
	"fmt"
	"sync"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfSvc "docflow/internal/domain/services/workflow"
)

// In-memory fakes mirroring the postgres repositories' contracts,
// including the lineage write-time invariants the partial unique
// indexes enforce in production.

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs []*models.Document // insertion order stands in for created_at ordering
}

func (r *fakeDocRepo) find(id, tenantID string) *models.Document {
	for _, d := range r.docs {
		if d.ID == id && d.TenantID == tenantID {
			return d
		}
	}
	return nil
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.TenantID == doc.TenantID && d.DocumentNumber == doc.DocumentNumber && d.Version == doc.Version {
			return &domain.ConflictError{
				Message:      "document already exists",
				ResourceType: "document",
				ResourceID:   d.ID,
			}
		}
		inFlight := d.Status == models.StatusDraft || d.Status == models.StatusInApproval
		if d.TenantID == doc.TenantID && d.DocumentNumber == doc.DocumentNumber &&
			d.IsProduction == doc.IsProduction && inFlight {
			return &domain.ConflictError{
				Message:      "lineage already has an in-flight version",
				ResourceType: "document",
				ResourceID:   d.ID,
			}
		}
	}
	cp := *doc
	r.docs = append(r.docs, &cp)
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id, tenantID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.find(id, tenantID); d != nil {
		cp := *d
		return &cp, nil
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func (r *fakeDocRepo) GetByIDForUpdate(ctx context.Context, id, tenantID string) (*models.Document, error) {
	return r.GetByID(ctx, id, tenantID)
}

func (r *fakeDocRepo) GetCurrent(ctx context.Context, tenantID, number string, isProduction bool) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.docs) - 1; i >= 0; i-- {
		d := r.docs[i]
		if d.TenantID == tenantID && d.DocumentNumber == number &&
			d.IsProduction == isProduction && d.Status != models.StatusObsolete {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("current version of %s: %w", number, domain.ErrNotFound)
}

func (r *fakeDocRepo) ListByLineage(ctx context.Context, tenantID, number string, isProduction bool) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.DocumentNumber == number && d.IsProduction == isProduction {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.Status != models.StatusObsolete {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(doc.ID, doc.TenantID)
	if d == nil {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	// Same write-time invariant the partial unique index enforces.
	if doc.Status == models.StatusReleased && d.Status != models.StatusReleased {
		for _, other := range r.docs {
			if other.ID != d.ID && other.TenantID == d.TenantID &&
				other.DocumentNumber == d.DocumentNumber && other.IsProduction == d.IsProduction &&
				other.Status == models.StatusReleased {
				return &domain.ConflictError{
					Message:      "lineage already has a released version",
					ResourceType: "document",
					ResourceID:   other.ID,
				}
			}
		}
	}
	*d = *doc
	return nil
}

func (r *fakeDocRepo) TransitionStatus(ctx context.Context, id, tenantID string, from, to models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(id, tenantID)
	if d == nil || d.Status != from {
		return &domain.StateError{DocumentID: id, Current: "not " + string(from), Attempted: string(to)}
	}
	d.Status = to
	return nil
}

func (r *fakeDocRepo) Supersede(ctx context.Context, oldID, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(oldID, tenantID)
	if d == nil || d.Status != models.StatusReleased {
		return &domain.StateError{DocumentID: oldID, Current: "not released", Attempted: "supersede"}
	}
	d.Status = models.StatusObsolete
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID == id && d.TenantID == tenantID {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[string]*models.DocumentType
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[string]*models.DocumentType)}
}

func (r *fakeTypeRepo) Create(ctx context.Context, dt *models.DocumentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.types {
		if existing.TenantID == dt.TenantID && existing.Prefix == dt.Prefix {
			return &domain.ConflictError{Message: "prefix exists", ResourceType: "document_type", ResourceID: existing.ID}
		}
	}
	cp := *dt
	r.types[dt.ID] = &cp
	return nil
}

func (r *fakeTypeRepo) GetByID(ctx context.Context, id, tenantID string) (*models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt, ok := r.types[id]
	if !ok || dt.TenantID != tenantID {
		return nil, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}
	cp := *dt
	return &cp, nil
}

func (r *fakeTypeRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DocumentType
	for _, dt := range r.types {
		if dt.TenantID == tenantID {
			out = append(out, *dt)
		}
	}
	return out, nil
}

func (r *fakeTypeRepo) SetActive(ctx context.Context, id, tenantID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt, ok := r.types[id]
	if !ok || dt.TenantID != tenantID {
		return fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}
	dt.IsActive = active
	return nil
}

// NextNumber matches the atomic increment-and-return contract: the lock
// makes observe+increment a single step, as the UPDATE ... RETURNING
// statement does in postgres.
func (r *fakeTypeRepo) NextNumber(ctx context.Context, id, tenantID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt, ok := r.types[id]
	if !ok || dt.TenantID != tenantID {
		return 0, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}
	n := dt.NextNumber
	dt.NextNumber++
	return n, nil
}

type fakeApproverRepo struct {
	mu        sync.Mutex
	approvers []*models.Approver
}

func (r *fakeApproverRepo) Add(ctx context.Context, a *models.Approver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.approvers {
		if existing.DocumentID == a.DocumentID && existing.UserID == a.UserID {
			return &domain.ConflictError{Message: "duplicate approver", ResourceType: "approver", ResourceID: existing.ID}
		}
	}
	cp := *a
	r.approvers = append(r.approvers, &cp)
	return nil
}

func (r *fakeApproverRepo) Remove(ctx context.Context, documentID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.approvers {
		if a.DocumentID == documentID && a.UserID == userID {
			r.approvers = append(r.approvers[:i], r.approvers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("approver %s: %w", userID, domain.ErrNotFound)
}

func (r *fakeApproverRepo) GetByUser(ctx context.Context, documentID, userID string) (*models.Approver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvers {
		if a.DocumentID == documentID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("approver %s: %w", userID, domain.ErrNotFound)
}

func (r *fakeApproverRepo) ListByDocument(ctx context.Context, documentID string) ([]models.Approver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Approver
	for _, a := range r.approvers {
		if a.DocumentID == documentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeApproverRepo) ListByDocumentForUpdate(ctx context.Context, documentID string) ([]models.Approver, error) {
	return r.ListByDocument(ctx, documentID)
}

func (r *fakeApproverRepo) UpdateDecision(ctx context.Context, upd *models.Approver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvers {
		if a.ID == upd.ID {
			a.Status = upd.Status
			a.Comments = upd.Comments
			a.RejectionReason = upd.RejectionReason
			a.DecidedAt = upd.DecidedAt
			return nil
		}
	}
	return fmt.Errorf("approver %s: %w", upd.ID, domain.ErrNotFound)
}

func (r *fakeApproverRepo) ResetPending(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.approvers {
		if a.DocumentID == documentID {
			a.Status = models.DecisionPending
			a.Comments = nil
			a.RejectionReason = nil
			a.DecidedAt = nil
		}
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLogEntry
	failing bool // simulate an unavailable audit store
}

func (r *fakeAuditRepo) Append(ctx context.Context, e *models.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return fmt.Errorf("audit store: %w", domain.ErrUnavailable)
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeAuditRepo) ListByDocument(ctx context.Context, documentID, tenantID string) ([]models.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AuditLogEntry
	for _, e := range r.entries {
		if e.DocumentID == documentID && e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions(documentID string) []models.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Action
	for _, e := range r.entries {
		if e.DocumentID == documentID {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeFileRepo struct {
	mu    sync.Mutex
	files []*models.FileRef
}

func (r *fakeFileRepo) Attach(ctx context.Context, f *models.FileRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.files {
		if existing.ID == f.ID {
			return &domain.ConflictError{Message: "file attached", ResourceType: "file", ResourceID: f.ID}
		}
	}
	cp := *f
	r.files = append(r.files, &cp)
	return nil
}

func (r *fakeFileRepo) Detach(ctx context.Context, fileID, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.files {
		if f.ID == fileID && f.DocumentID == documentID {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
}

func (r *fakeFileRepo) GetByID(ctx context.Context, fileID string) (*models.FileRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.ID == fileID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
}

func (r *fakeFileRepo) ListByDocument(ctx context.Context, documentID string) ([]models.FileRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FileRef
	for _, f := range r.files {
		if f.DocumentID == documentID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) UpdateScanState(ctx context.Context, fileID string, state models.ScanState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.ID == fileID {
			f.ScanState = state
			return nil
		}
	}
	return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []wfSvc.Event
}

func (n *fakeNotifier) Notify(ctx context.Context, e wfSvc.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) kinds() []wfSvc.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []wfSvc.EventKind
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}
