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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) wfRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Attach inserts a file reference
func (r *PostgresFileRepository) Attach(ctx context.Context, f *models.FileRef) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, file_name, size, checksum, scan_state, attached_by, attached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		f.ID,
		f.DocumentID,
		f.FileName,
		f.Size,
		f.Checksum,
		f.ScanState,
		f.AttachedBy,
		f.AttachedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("file %s is already attached", f.ID),
				ResourceType: "file",
				ResourceID:   f.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", f.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("attach file: %w", err)
	}

	return nil
}

// Detach removes a file reference from a document
func (r *PostgresFileRepository) Detach(ctx context.Context, fileID, documentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND document_id = $2
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, fileID, documentID)
	if err != nil {
		return fmt.Errorf("detach file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}

	return nil
}

// GetByID returns one file reference
func (r *PostgresFileRepository) GetByID(ctx context.Context, fileID string) (*models.FileRef, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, file_name, size, checksum, scan_state, attached_by, attached_at
		FROM %s
		WHERE id = $1
	`, r.tables.Files)

	var f models.FileRef
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, fileID).Scan(
		&f.ID,
		&f.DocumentID,
		&f.FileName,
		&f.Size,
		&f.Checksum,
		&f.ScanState,
		&f.AttachedBy,
		&f.AttachedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &f, nil
}

// ListByDocument returns a document's attachments
func (r *PostgresFileRepository) ListByDocument(ctx context.Context, documentID string) ([]models.FileRef, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, file_name, size, checksum, scan_state, attached_by, attached_at
		FROM %s
		WHERE document_id = $1
		ORDER BY attached_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.FileRef
	for rows.Next() {
		var f models.FileRef
		if err := rows.Scan(
			&f.ID,
			&f.DocumentID,
			&f.FileName,
			&f.Size,
			&f.Checksum,
			&f.ScanState,
			&f.AttachedBy,
			&f.AttachedAt,
		); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// UpdateScanState records the external scanner's outcome
func (r *PostgresFileRepository) UpdateScanState(ctx context.Context, fileID string, state models.ScanState) error {
	query := fmt.Sprintf(`
		UPDATE %s SET scan_state = $2 WHERE id = $1
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, fileID, state)
	if err != nil {
		return fmt.Errorf("update scan state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}

	return nil
}
