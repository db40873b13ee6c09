package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	wfRepo "docflow/internal/domain/repositories/workflow"
	"docflow/internal/repository/postgres"
)

const documentColumns = `id, tenant_id, document_type_id, document_number, version,
		title, description, status, is_production, project_code, rejection_reason,
		created_by, created_by_email, created_at, updated_at, released_by, released_at`

// PostgresDocumentRepository implements the DocumentRepository interface.
// The lineage invariants are enforced by two partial unique indexes on
// (tenant_id, document_number, is_production): one WHERE status IN
// ('draft','in_approval') and one WHERE status = 'released'. A violating
// insert or update fails at write time no matter which code path
// attempts it.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) wfRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.DocumentTypeID,
		&doc.DocumentNumber,
		&doc.Version,
		&doc.Title,
		&doc.Description,
		&doc.Status,
		&doc.IsProduction,
		&doc.ProjectCode,
		&doc.RejectionReason,
		&doc.CreatedBy,
		&doc.CreatedByEmail,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.ReleasedBy,
		&doc.ReleasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new document row
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, document_type_id, document_number, version,
			title, description, status, is_production, project_code, rejection_reason,
			created_by, created_by_email, created_at, updated_at, released_by, released_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.TenantID,
		doc.DocumentTypeID,
		doc.DocumentNumber,
		doc.Version,
		doc.Title,
		doc.Description,
		doc.Status,
		doc.IsProduction,
		doc.ProjectCode,
		doc.RejectionReason,
		doc.CreatedBy,
		doc.CreatedByEmail,
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.ReleasedBy,
		doc.ReleasedAt,
	)

	if err != nil {
		return translateDocumentWriteError("create", doc, err)
	}

	return nil
}

// translateDocumentWriteError maps SQLSTATE failures on document writes
// to domain error kinds. 23505 covers both the (number, version) key
// and the lineage partial unique indexes, so an UPDATE that would make
// a second current version in a lineage surfaces as the same conflict
// an INSERT would.
func translateDocumentWriteError(op string, doc *models.Document, err error) error {
	if postgres.IsPgDuplicateError(err) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s%s already exists or lineage already has a current version", doc.DocumentNumber, doc.Version),
			ResourceType: "document",
			ResourceID:   doc.DocumentNumber + doc.Version,
		}
	}
	if postgres.IsPgForeignKeyError(err) {
		return fmt.Errorf("document type %s: %w", doc.DocumentTypeID, domain.ErrNotFound)
	}
	if postgres.IsPgConnectionError(err) {
		return fmt.Errorf("document store: %w", domain.ErrUnavailable)
	}
	return fmt.Errorf("%s document: %w", op, err)
}

// GetByID retrieves a document by ID within a tenant
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, tenantID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// GetByIDForUpdate retrieves a document and takes a row lock for the
// enclosing transaction. Concurrent lifecycle transitions on the same
// document serialize here, so consensus is always computed against a
// consistent snapshot.
func (r *PostgresDocumentRepository) GetByIDForUpdate(ctx context.Context, id, tenantID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document for update: %w", err)
	}

	return doc, nil
}

// GetCurrent returns the lineage's newest non-Obsolete row: the
// in-flight version when one exists, otherwise the Released one.
func (r *PostgresDocumentRepository) GetCurrent(ctx context.Context, tenantID, documentNumber string, isProduction bool) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE tenant_id = $1 AND document_number = $2 AND is_production = $3 AND status != $4
		ORDER BY created_at DESC
		LIMIT 1
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, tenantID, documentNumber, isProduction, models.StatusObsolete))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("current version of %s: %w", documentNumber, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get current version: %w", err)
	}

	return doc, nil
}

// ListByLineage returns all versions of a lineage, oldest first
func (r *PostgresDocumentRepository) ListByLineage(ctx context.Context, tenantID, documentNumber string, isProduction bool) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE tenant_id = $1 AND document_number = $2 AND is_production = $3
		ORDER BY created_at
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID, documentNumber, isProduction)
	if err != nil {
		return nil, fmt.Errorf("list lineage: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListByTenant returns current (non-Obsolete) documents for a tenant
func (r *PostgresDocumentRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE tenant_id = $1 AND status != $2
		ORDER BY document_number, is_production
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID, models.StatusObsolete)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Update persists mutable document fields
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, description = $4, project_code = $5, status = $6,
			rejection_reason = $7, released_by = $8, released_at = $9, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.TenantID,
		doc.Title,
		doc.Description,
		doc.ProjectCode,
		doc.Status,
		doc.RejectionReason,
		doc.ReleasedBy,
		doc.ReleasedAt,
	).Scan(&doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
		}
		return translateDocumentWriteError("update", doc, err)
	}

	return nil
}

// TransitionStatus moves a document between lifecycle states with an
// optimistic guard: the UPDATE only matches if the row is still in
// expectedFrom, so a racing transition loses cleanly instead of
// double-applying.
func (r *PostgresDocumentRepository) TransitionStatus(ctx context.Context, id, tenantID string, expectedFrom, to models.Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status = $3
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, tenantID, expectedFrom, to)
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.StateError{
			DocumentID: id,
			Current:    "not " + string(expectedFrom),
			Attempted:  fmt.Sprintf("transition %s -> %s", expectedFrom, to),
		}
	}

	return nil
}

// Supersede marks the old current version Obsolete. Called exactly when
// the succeeding version becomes Released, never eagerly.
func (r *PostgresDocumentRepository) Supersede(ctx context.Context, oldID, tenantID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status = $4
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, oldID, tenantID, models.StatusObsolete, models.StatusReleased)
	if err != nil {
		return fmt.Errorf("supersede document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.StateError{
			DocumentID: oldID,
			Current:    "not released",
			Attempted:  "supersede",
		}
	}

	return nil
}

// Delete removes a document row. Administrative override only.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, tenantID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND tenant_id = $2
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
