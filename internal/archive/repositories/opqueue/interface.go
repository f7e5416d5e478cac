package opqueue

import (
	"context"

	"github.com/famvault/famvault/internal/archive/models"
)

// Repository describes storage operations for the durable operation queue.
// Entries are appended in the same transaction as the cache write they
// mirror and removed only after confirmed remote success.
type Repository interface {
	// Append adds an operation to the queue.
	Append(ctx context.Context, op *models.QueuedOperation) error

	// ListPending returns queued operations for an archive ordered by
	// enqueue time ascending (oldest first), so a drain applies them in
	// causal order.
	ListPending(ctx context.Context, archiveKey string) ([]models.QueuedOperation, error)

	// Remove deletes a single queue entry. Removing an absent id is not an
	// error.
	Remove(ctx context.Context, id string) error

	// BumpRetry increments an operation's retry counter in place.
	BumpRetry(ctx context.Context, id string) error

	// Count returns the number of queued operations for an archive.
	Count(ctx context.Context, archiveKey string) (int, error)

	// Clear removes every row across all archives.
	Clear(ctx context.Context) error
}
