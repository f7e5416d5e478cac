package metadata

import (
	"context"
)

// Repository is a small key/value slot store used for family bios and
// lightweight persisted state such as the last sync time.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
