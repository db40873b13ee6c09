package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	models "docflow/internal/domain/models/workflow"
	"docflow/internal/domain/repositories"
	wfRepo "docflow/internal/domain/repositories/workflow"
	"docflow/internal/repository/postgres"
)

// PostgresAuditRepository implements the AuditRepository interface.
// The table is append-only: no UPDATE or DELETE statement exists here,
// and document_id carries no foreign key so the trail survives an
// administrative document delete.
type PostgresAuditRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(config *postgres.RepositoryConfig) wfRepo.AuditRepository {
	return &PostgresAuditRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts one audit entry. Inside a transaction the insert runs
// under a savepoint: a failed audit write must not leave the enclosing
// session aborted, or a best-effort caller that swallows the error
// would still lose the whole transaction at commit.
func (r *PostgresAuditRepository) Append(ctx context.Context, e *models.AuditLogEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, document_id, action, performed_by, performed_by_email, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.AuditLog)

	args := []any{
		e.ID,
		e.TenantID,
		e.DocumentID,
		e.Action,
		e.PerformedBy,
		e.PerformedByEmail,
		e.Details,
		e.CreatedAt,
	}

	if tx := repositories.GetTx(ctx); tx != nil {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("audit savepoint: %w", err)
		}
		if _, err := sp.Exec(ctx, query, args...); err != nil {
			_ = sp.Rollback(ctx)
			return fmt.Errorf("append audit entry: %w", err)
		}
		if err := sp.Commit(ctx); err != nil {
			return fmt.Errorf("audit savepoint: %w", err)
		}
		return nil
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// ListByDocument returns a document's trail, oldest first
func (r *PostgresAuditRepository) ListByDocument(ctx context.Context, documentID, tenantID string) ([]models.AuditLogEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, document_id, action, performed_by, performed_by_email, details, created_at
		FROM %s
		WHERE document_id = $1 AND tenant_id = $2
		ORDER BY created_at
	`, r.tables.AuditLog)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.TenantID,
			&e.DocumentID,
			&e.Action,
			&e.PerformedBy,
			&e.PerformedByEmail,
			&e.Details,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
