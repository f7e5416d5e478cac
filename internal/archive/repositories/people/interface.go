package people

import (
	"context"

	"github.com/famvault/famvault/internal/archive/models"
)

// Repository describes storage operations for cached Person entities.
// All operations are scoped by archive key; people are never hard-deleted,
// only Clear (a full user-triggered reset) removes rows.
type Repository interface {
	// Upsert inserts a new person or replaces an existing one by id.
	Upsert(ctx context.Context, p *models.Person, archiveKey string) error

	// GetAll returns every cached person for an archive. An archive with no
	// people yields an empty slice, not an error.
	GetAll(ctx context.Context, archiveKey string) ([]models.Person, error)

	// GetByID returns one person or common.ErrNotFound.
	GetByID(ctx context.Context, archiveKey, id string) (*models.Person, error)

	// Clear removes every row across all archives.
	Clear(ctx context.Context) error
}
