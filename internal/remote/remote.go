// Package remote defines the remote-store collaborators the sync layer
// talks to: a document store with live subscriptions and a blob store for
// media payloads. Implementations live alongside the interfaces; the sync
// engine never depends on a concrete one.
package remote

import "context"

// Document is the loosely typed form entities travel in over the wire.
type Document = map[string]any

// Store is the remote document database. All paths are slash-separated
// collection/document paths, e.g. "trees/FAM1/people".
type Store interface {
	// Ping reports whether the remote store is reachable.
	Ping(ctx context.Context) error

	// UpsertDocument creates or merges a document.
	UpsertDocument(ctx context.Context, collectionPath, id string, data Document) error

	// GetDocument returns a single document or common.ErrNotFound.
	GetDocument(ctx context.Context, collectionPath, id string) (Document, error)

	// QueryCollection lists a collection, optionally filtered by exact
	// field matches.
	QueryCollection(ctx context.Context, collectionPath string, filter map[string]string) ([]Document, error)

	// Subscribe establishes a live listener on a collection or document
	// path. onSnapshot receives the full current contents whenever the
	// remote reports a change (a single-element slice for document paths).
	// Stream errors go to onError without terminating the subscription.
	// The returned stop function terminates the listener; calling it more
	// than once is a no-op.
	Subscribe(path string, onSnapshot func([]Document), onError func(error)) (func(), error)
}

// Blobs stores binary media payloads and resolves them to URLs.
type Blobs interface {
	// Upload stores content at path, overwriting any previous object.
	Upload(ctx context.Context, path string, content []byte) error

	// URL resolves path to a fetchable URL.
	URL(ctx context.Context, path string) (string, error)
}
