package sync

import (
	"context"
	"log/slog"
	"os"
	stdsync "sync"
	"testing"

	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/logging"
	"github.com/famvault/famvault/internal/remote"
)

func testLogger() logging.Logger {
	return logging.NewDefault(os.Stderr, slog.LevelWarn)
}

type upsertCall struct {
	Path string
	ID   string
	Doc  remote.Document
}

type fakeStream struct {
	onSnapshot func([]remote.Document)
	onError    func(error)
	stopped    bool
}

// fakeRemote is an in-memory remote.Store. Upserts are recorded in call
// order and merged into a path/id-keyed document map; failures and
// blocking are switchable per test.
type fakeRemote struct {
	mu stdsync.Mutex

	pingErr   error
	upsertErr error
	upserts   []upsertCall
	docs      map[string]remote.Document

	// when set, UpsertDocument signals started and waits for release.
	blocking bool
	started  chan struct{}
	release  chan struct{}

	streams map[string]*fakeStream
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		streams: map[string]*fakeStream{},
		docs:    map[string]remote.Document{},
	}
}

func (f *fakeRemote) setUpsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErr = err
}

func (f *fakeRemote) calls() []upsertCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]upsertCall, len(f.upserts))
	copy(out, f.upserts)
	return out
}

func (f *fakeRemote) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = nil
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRemote) UpsertDocument(ctx context.Context, collectionPath, id string, data remote.Document) error {
	f.mu.Lock()
	blocking := f.blocking
	err := f.upsertErr
	f.mu.Unlock()

	if blocking {
		f.started <- struct{}{}
		<-f.release
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, upsertCall{Path: collectionPath, ID: id, Doc: data})

	key := collectionPath + "/" + id
	merged := remote.Document{}
	for k, v := range f.docs[key] {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	f.docs[key] = merged
	return nil
}

// documents returns a deep copy of the stored remote state.
func (f *fakeRemote) documents() map[string]remote.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]remote.Document, len(f.docs))
	for key, d := range f.docs {
		cp := remote.Document{}
		for k, v := range d {
			cp[k] = v
		}
		out[key] = cp
	}
	return out
}

func (f *fakeRemote) GetDocument(ctx context.Context, collectionPath, id string) (remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[collectionPath+"/"+id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return d, nil
}

func (f *fakeRemote) QueryCollection(ctx context.Context, collectionPath string, filter map[string]string) ([]remote.Document, error) {
	return nil, nil
}

func (f *fakeRemote) Subscribe(path string, onSnapshot func([]remote.Document), onError func(error)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &fakeStream{onSnapshot: onSnapshot, onError: onError}
	f.streams[path] = st
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		st.stopped = true
	}, nil
}

func (f *fakeRemote) emit(t *testing.T, path string, docs []remote.Document) {
	t.Helper()
	f.mu.Lock()
	st, ok := f.streams[path]
	f.mu.Unlock()
	if !ok || st.stopped {
		t.Fatalf("no live stream on %s", path)
	}
	st.onSnapshot(docs)
}

func (f *fakeRemote) emitError(t *testing.T, path string, err error) {
	t.Helper()
	f.mu.Lock()
	st, ok := f.streams[path]
	f.mu.Unlock()
	if !ok || st.stopped {
		t.Fatalf("no live stream on %s", path)
	}
	st.onError(err)
}

func (f *fakeRemote) streamStopped(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.streams[path]
	return ok && st.stopped
}

// fakeBlobs records uploads and resolves every path to a stable URL.
type fakeBlobs struct {
	mu      stdsync.Mutex
	uploads map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: map[string][]byte{}}
}

func (f *fakeBlobs) Upload(ctx context.Context, path string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[path] = content
	return nil
}

func (f *fakeBlobs) URL(ctx context.Context, path string) (string, error) {
	return "https://blobs.test/" + path, nil
}
