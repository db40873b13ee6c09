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

const approverColumns = `id, document_id, user_id, user_email, status,
		comments, rejection_reason, created_at, decided_at`

// PostgresApproverRepository implements the ApproverRepository interface
type PostgresApproverRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewApproverRepository creates a new approver repository
func NewApproverRepository(config *postgres.RepositoryConfig) wfRepo.ApproverRepository {
	return &PostgresApproverRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanApprover(row pgx.Row) (*models.Approver, error) {
	var a models.Approver
	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.UserID,
		&a.UserEmail,
		&a.Status,
		&a.Comments,
		&a.RejectionReason,
		&a.CreatedAt,
		&a.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Add inserts an approver
func (r *PostgresApproverRepository) Add(ctx context.Context, a *models.Approver) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, user_id, user_email, status, comments, rejection_reason, created_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Approvers)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		a.ID,
		a.DocumentID,
		a.UserID,
		a.UserEmail,
		a.Status,
		a.Comments,
		a.RejectionReason,
		a.CreatedAt,
		a.DecidedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user %s is already an approver on this document", a.UserID),
				ResourceType: "approver",
				ResourceID:   a.UserID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", a.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("add approver: %w", err)
	}

	return nil
}

// Remove deletes an approver row
func (r *PostgresApproverRepository) Remove(ctx context.Context, documentID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE document_id = $1 AND user_id = $2
	`, r.tables.Approvers)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, documentID, userID)
	if err != nil {
		return fmt.Errorf("remove approver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approver %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// GetByUser returns the approver row for a user on a document
func (r *PostgresApproverRepository) GetByUser(ctx context.Context, documentID, userID string) (*models.Approver, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE document_id = $1 AND user_id = $2
	`, approverColumns, r.tables.Approvers)

	executor := postgres.GetExecutor(ctx, r.pool)
	a, err := scanApprover(executor.QueryRow(ctx, query, documentID, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("approver %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get approver: %w", err)
	}

	return a, nil
}

// ListByDocument returns the approver set, insertion order
func (r *PostgresApproverRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Approver, error) {
	return r.list(ctx, documentID, false)
}

// ListByDocumentForUpdate returns the approver set with row locks so a
// concurrent decision waits until this transaction completes.
func (r *PostgresApproverRepository) ListByDocumentForUpdate(ctx context.Context, documentID string) ([]models.Approver, error) {
	return r.list(ctx, documentID, true)
}

func (r *PostgresApproverRepository) list(ctx context.Context, documentID string, forUpdate bool) ([]models.Approver, error) {
	lock := ""
	if forUpdate {
		lock = "FOR UPDATE"
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE document_id = $1
		ORDER BY created_at
		%s
	`, approverColumns, r.tables.Approvers, lock)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}
	defer rows.Close()

	var approvers []models.Approver
	for rows.Next() {
		a, err := scanApprover(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approver: %w", err)
		}
		approvers = append(approvers, *a)
	}

	return approvers, rows.Err()
}

// UpdateDecision records a vote on an approver row
func (r *PostgresApproverRepository) UpdateDecision(ctx context.Context, a *models.Approver) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, comments = $3, rejection_reason = $4, decided_at = $5
		WHERE id = $1
	`, r.tables.Approvers)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, a.ID, a.Status, a.Comments, a.RejectionReason, a.DecidedAt)
	if err != nil {
		return fmt.Errorf("update decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approver %s: %w", a.ID, domain.ErrNotFound)
	}

	return nil
}

// ResetPending returns every approver on the document to Pending
func (r *PostgresApproverRepository) ResetPending(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, comments = NULL, rejection_reason = NULL, decided_at = NULL
		WHERE document_id = $1
	`, r.tables.Approvers)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID, models.DecisionPending); err != nil {
		return fmt.Errorf("reset approvers: %w", err)
	}

	return nil
}
