package memories

import (
	"context"

	"github.com/famvault/famvault/internal/archive/models"
)

// Repository describes storage operations for cached Memory entities.
// Memories are scoped by archive key and secondarily indexed by person
// membership and by event timestamp for newest-first listing.
type Repository interface {
	// Upsert inserts or replaces a memory by id, maintaining the person
	// membership rows alongside it.
	Upsert(ctx context.Context, m *models.Memory, archiveKey string) error

	// GetAll returns every cached memory for an archive, newest event
	// timestamp first. No data yields an empty slice.
	GetAll(ctx context.Context, archiveKey string) ([]models.Memory, error)

	// GetForPerson returns memories tagged with the given person, newest
	// first.
	GetForPerson(ctx context.Context, archiveKey, personID string) ([]models.Memory, error)

	// Clear removes every row across all archives.
	Clear(ctx context.Context) error
}
