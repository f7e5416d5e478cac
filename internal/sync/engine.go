package sync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/archive/store"
	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/logging"
	"github.com/famvault/famvault/internal/remote"
)

// MaxRetries is the per-operation failure ceiling. An operation that has
// already failed more than this many times is skipped on later passes so
// a poisoned payload cannot stall the queue.
const MaxRetries = 5

func peoplePath(archiveKey string) string {
	return "trees/" + archiveKey + "/people"
}

func memoriesPath(archiveKey string) string {
	return "trees/" + archiveKey + "/memories"
}

func artifactPath(archiveKey, memoryID string) string {
	return fmt.Sprintf("artifacts/%s/%s", archiveKey, memoryID)
}

// Engine drains the durable operation queue into the remote store. At
// most one drain pass runs at a time; extra triggers are silent no-ops.
type Engine struct {
	store  *store.Store
	remote remote.Store
	blobs  remote.Blobs
	pub    *Publisher
	log    logging.Logger

	online  atomic.Bool
	syncing atomic.Bool

	// newBackoff is a test seam; the default wraps each operation apply
	// in a short exponential retry for transient blips within a pass.
	newBackoff func() backoff.BackOff
}

func NewEngine(st *store.Store, rem remote.Store, blobs remote.Blobs, pub *Publisher, log logging.Logger) *Engine {
	return &Engine{
		store:  st,
		remote: rem,
		blobs:  blobs,
		pub:    pub,
		log:    log,
		newBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return backoff.WithMaxRetries(b, 2)
		},
	}
}

func (e *Engine) Online() bool {
	return e.online.Load()
}

// SetOnline records reachability. Transition handling (status publishing,
// drain triggering) belongs to the Monitor.
func (e *Engine) SetOnline(online bool) {
	e.online.Store(online)
}

// Restore seeds the published status from persisted state after a
// restart: the saved last-sync time and the surviving queue length.
func (e *Engine) Restore(ctx context.Context, archiveKey string) error {
	last, err := e.store.LastSyncTime(ctx)
	if err != nil {
		return err
	}
	pending, err := e.store.PendingCount(ctx, archiveKey)
	if err != nil {
		return err
	}
	e.pub.Update(func(st *models.SyncStatus) {
		st.LastSyncTime = last
		st.PendingOperations = pending
	})
	return nil
}

// NoteLocalWrite refreshes the published pending-operation count. Called
// after every save so consumers see queue growth while offline.
func (e *Engine) NoteLocalWrite(ctx context.Context, archiveKey string) {
	pending, err := e.store.PendingCount(ctx, archiveKey)
	if err != nil {
		e.log.Warn(ctx, "pending count refresh failed", "error", err)
		return
	}
	e.pub.Update(func(st *models.SyncStatus) {
		st.PendingOperations = pending
	})
}

// Drain replays queued operations against the remote store in enqueue
// order. Offline, or with a pass already running, it returns nil without
// touching anything. Each operation is removed only after the remote
// confirms it; a failed operation gets its retry count bumped and the
// pass moves on. Per-operation failures are logged, left queued for the
// next pass and never surfaced to the caller; a completed pass always
// records the sync time and ends IDLE. Only the pass itself breaking
// (listing the queue, or a local remove/bump failing) ends ERROR with a
// non-nil return.
func (e *Engine) Drain(ctx context.Context, archiveKey string) error {
	if !e.online.Load() {
		return nil
	}
	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	e.pub.Update(func(st *models.SyncStatus) {
		st.SyncInProgress = true
		st.State = models.SyncSyncing
	})

	ops, err := e.store.ListPendingOperations(ctx, archiveKey)
	if err != nil {
		e.finish(ctx, archiveKey)
		return err
	}

	failed := 0
	for i := range ops {
		op := &ops[i]

		if op.RetryCount > MaxRetries {
			e.log.Warn(ctx, "skipping operation past retry ceiling",
				"id", op.ID, "kind", string(op.Kind), "retries", op.RetryCount)
			continue
		}

		if err := e.applyWithRetry(ctx, op); err != nil {
			e.log.Error(ctx, "operation failed", "id", op.ID, "kind", string(op.Kind), "error", err)
			if err := e.store.BumpRetry(ctx, op.ID); err != nil {
				e.finish(ctx, archiveKey)
				return fmt.Errorf("%w: bump retry %s: %w", common.ErrPersistence, op.ID, err)
			}
			failed++
			continue
		}

		if err := e.store.RemoveOperation(ctx, op.ID); err != nil {
			e.finish(ctx, archiveKey)
			return fmt.Errorf("%w: remove operation %s: %w", common.ErrPersistence, op.ID, err)
		}
	}

	if failed > 0 {
		e.log.Warn(ctx, "sync pass completed with failures", "failed", failed)
	}

	now := time.Now().UTC()
	if err := e.store.SetLastSyncTime(ctx, now); err != nil {
		e.log.Warn(ctx, "persisting last sync time failed", "error", err)
	}
	pending, err := e.store.PendingCount(ctx, archiveKey)
	if err != nil {
		e.log.Warn(ctx, "pending count refresh failed", "error", err)
	}
	e.pub.Update(func(st *models.SyncStatus) {
		st.SyncInProgress = false
		st.State = models.SyncIdle
		st.LastSyncTime = &now
		st.PendingOperations = pending
	})
	return nil
}

func (e *Engine) finish(ctx context.Context, archiveKey string) {
	pending, err := e.store.PendingCount(ctx, archiveKey)
	if err != nil {
		e.log.Warn(ctx, "pending count refresh failed", "error", err)
	}
	e.pub.Update(func(st *models.SyncStatus) {
		st.SyncInProgress = false
		st.State = models.SyncError
		st.PendingOperations = pending
	})
}

func (e *Engine) applyWithRetry(ctx context.Context, op *models.QueuedOperation) error {
	return backoff.Retry(func() error {
		return e.apply(ctx, op)
	}, backoff.WithContext(e.newBackoff(), ctx))
}

func (e *Engine) apply(ctx context.Context, op *models.QueuedOperation) error {
	switch op.Kind {
	case models.OpSavePerson:
		var p models.Person
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return backoff.Permanent(fmt.Errorf("decode person payload: %w", err))
		}
		return e.pushPerson(ctx, op.ArchiveKey, p)

	case models.OpSaveMemory:
		var m models.Memory
		if err := json.Unmarshal(op.Payload, &m); err != nil {
			return backoff.Permanent(fmt.Errorf("decode memory payload: %w", err))
		}
		return e.pushMemory(ctx, op.ArchiveKey, m)

	case models.OpUpdateBio:
		var p models.BioPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return backoff.Permanent(fmt.Errorf("decode bio payload: %w", err))
		}
		return e.remote.UpsertDocument(ctx, "trees", p.ArchiveKey, remote.Document{
			"familyBio": p.Bio,
		})

	case models.OpSyncAll:
		return e.pushAll(ctx, op.ArchiveKey)

	default:
		return backoff.Permanent(fmt.Errorf("unknown operation kind %q", op.Kind))
	}
}

func (e *Engine) pushPerson(ctx context.Context, archiveKey string, p models.Person) error {
	doc, err := models.PersonToDocument(p)
	if err != nil {
		return backoff.Permanent(err)
	}
	return e.remote.UpsertDocument(ctx, peoplePath(archiveKey), p.ID, doc)
}

// pushMemory promotes an inline data: payload to blob storage before the
// document write, rewriting the content's media part to the blob URL.
func (e *Engine) pushMemory(ctx context.Context, archiveKey string, m models.Memory) error {
	if m.HasInlineAttachment() {
		caption, media := models.SplitContent(m.Content)

		content, err := decodeDataPayload(media)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("decode attachment for memory %s: %w", m.ID, err))
		}

		path := artifactPath(archiveKey, m.ID)
		if err := e.blobs.Upload(ctx, path, content); err != nil {
			return err
		}
		url, err := e.blobs.URL(ctx, path)
		if err != nil {
			return err
		}
		m.Content = models.JoinContent(caption, url)
	}

	doc, err := models.MemoryToDocument(m)
	if err != nil {
		return backoff.Permanent(err)
	}
	return e.remote.UpsertDocument(ctx, memoriesPath(archiveKey), m.ID, doc)
}

// pushAll re-upserts every cached person and memory plus the family bio.
// Remote writes are merging upserts, so replaying already-synced state
// converges instead of duplicating.
func (e *Engine) pushAll(ctx context.Context, archiveKey string) error {
	people, err := e.store.GetPeople(ctx, archiveKey)
	if err != nil {
		return backoff.Permanent(err)
	}
	for _, p := range people {
		if err := e.pushPerson(ctx, archiveKey, p); err != nil {
			return err
		}
	}

	mems, err := e.store.GetMemories(ctx, archiveKey)
	if err != nil {
		return backoff.Permanent(err)
	}
	for _, m := range mems {
		if err := e.pushMemory(ctx, archiveKey, m); err != nil {
			return err
		}
	}

	bio, err := e.store.GetFamilyBio(ctx, archiveKey)
	if err != nil {
		return backoff.Permanent(err)
	}
	if bio != "" {
		if err := e.remote.UpsertDocument(ctx, "trees", archiveKey, remote.Document{
			"familyBio": bio,
		}); err != nil {
			return err
		}
	}
	return nil
}

// decodeDataPayload extracts the bytes of a "data:<mime>[;base64],<data>"
// value. Base64 payloads are decoded; anything else is taken verbatim.
func decodeDataPayload(media string) ([]byte, error) {
	rest, ok := strings.CutPrefix(media, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data payload")
	}
	header, data, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("malformed data payload")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(data)
	}
	return []byte(data), nil
}
