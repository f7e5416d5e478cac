package opqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, op *models.QueuedOperation) error {
	query := `INSERT INTO op_queue (id, archive_key, kind, payload, enqueued_at, retry_count)
			VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		op.ID, op.ArchiveKey, string(op.Kind), op.Payload, op.EnqueuedAt.UnixMilli(), op.RetryCount)
	if err != nil {
		return fmt.Errorf("failed to append operation: %w", err)
	}
	return nil
}

// ListPending orders by enqueue time, with rowid as a tiebreaker so
// operations enqueued within the same millisecond keep insertion order.
func (r *SQLiteRepository) ListPending(ctx context.Context, archiveKey string) ([]models.QueuedOperation, error) {
	query := `SELECT id, archive_key, kind, payload, enqueued_at, retry_count
			FROM op_queue WHERE archive_key = ? ORDER BY enqueued_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to select operations: %w", err)
	}
	defer rows.Close()

	result := []models.QueuedOperation{}
	for rows.Next() {
		var op models.QueuedOperation
		var kind string
		var enqueuedAt int64
		if err := rows.Scan(&op.ID, &op.ArchiveKey, &kind, &op.Payload, &enqueuedAt, &op.RetryCount); err != nil {
			return nil, err
		}
		op.Kind = models.OperationKind(kind)
		op.EnqueuedAt = time.UnixMilli(enqueuedAt).UTC()
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM op_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove operation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) BumpRetry(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE op_queue SET retry_count = retry_count + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to bump retry count: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, archiveKey string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM op_queue WHERE archive_key = ?`, archiveKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM op_queue`); err != nil {
		return fmt.Errorf("failed to clear operations: %w", err)
	}
	return nil
}
