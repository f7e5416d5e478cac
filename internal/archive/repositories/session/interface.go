package session

import (
	"context"
)

// Repository persists opaque UI session state (current view, navigation)
// so it survives restarts. Values are stored as raw bytes; callers own the
// encoding.
type Repository interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Clear(ctx context.Context) error
}
