package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	wfRepo "docflow/internal/domain/repositories/workflow"
	"docflow/internal/repository/postgres"
)

// PostgresDocumentTypeRepository implements the DocumentTypeRepository
// interface, including the numbering authority.
type PostgresDocumentTypeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentTypeRepository creates a new document type repository
func NewDocumentTypeRepository(config *postgres.RepositoryConfig) wfRepo.DocumentTypeRepository {
	return &PostgresDocumentTypeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document type
func (r *PostgresDocumentTypeRepository) Create(ctx context.Context, dt *models.DocumentType) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, prefix, name, next_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		dt.ID,
		dt.TenantID,
		dt.Prefix,
		dt.Name,
		dt.NextNumber,
		dt.IsActive,
		dt.CreatedAt,
	).Scan(&dt.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document type prefix %q already exists", dt.Prefix),
				ResourceType: "document_type",
				ResourceID:   dt.Prefix,
			}
		}
		return fmt.Errorf("create document type: %w", err)
	}

	return nil
}

// GetByID retrieves a document type within a tenant
func (r *PostgresDocumentTypeRepository) GetByID(ctx context.Context, id, tenantID string) (*models.DocumentType, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, prefix, name, next_number, is_active, created_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.DocumentTypes)

	var dt models.DocumentType
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, tenantID).Scan(
		&dt.ID,
		&dt.TenantID,
		&dt.Prefix,
		&dt.Name,
		&dt.NextNumber,
		&dt.IsActive,
		&dt.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document type: %w", err)
	}

	return &dt, nil
}

// ListByTenant returns all document types for a tenant, inactive included
func (r *PostgresDocumentTypeRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.DocumentType, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, prefix, name, next_number, is_active, created_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY prefix
	`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	var types []models.DocumentType
	for rows.Next() {
		var dt models.DocumentType
		if err := rows.Scan(
			&dt.ID,
			&dt.TenantID,
			&dt.Prefix,
			&dt.Name,
			&dt.NextNumber,
			&dt.IsActive,
			&dt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		types = append(types, dt)
	}

	return types, rows.Err()
}

// SetActive toggles a type's visibility in creation flows
func (r *PostgresDocumentTypeRepository) SetActive(ctx context.Context, id, tenantID string, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_active = $3
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, tenantID, active)
	if err != nil {
		return fmt.Errorf("set document type active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// NextNumber assigns the next sequence number for a document type.
// The increment-and-return is a single UPDATE ... RETURNING, so two
// concurrent callers can never observe the same value and no gap is
// produced when the enclosing transaction commits. The returned value is
// the pre-increment counter (the number to mint).
func (r *PostgresDocumentTypeRepository) NextNumber(ctx context.Context, id, tenantID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET next_number = next_number + 1
		WHERE id = $1 AND tenant_id = $2
		RETURNING next_number - 1
	`, r.tables.DocumentTypes)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, tenantID).Scan(&n)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return 0, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
		}
		if postgres.IsPgConnectionError(err) {
			return 0, fmt.Errorf("numbering authority: %w", domain.ErrUnavailable)
		}
		return 0, fmt.Errorf("next number: %w", err)
	}

	return n, nil
}
