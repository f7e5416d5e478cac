// Package store provides the crash-durable local store backing the
// offline-first archive: cached entities, key/value metadata, session
// state and the write-ahead operation queue, all in one SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/archive/repositories/memories"
	"github.com/famvault/famvault/internal/archive/repositories/metadata"
	"github.com/famvault/famvault/internal/archive/repositories/opqueue"
	"github.com/famvault/famvault/internal/archive/repositories/people"
	"github.com/famvault/famvault/internal/archive/repositories/session"
	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/dbx"
	"github.com/famvault/famvault/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

func familyBioKey(archiveKey string) string {
	return "FAMILY_BIO_" + archiveKey
}

// Store owns the local SQLite database. Saves pair the cache write with a
// queue append inside one transaction: neither effect is visible unless
// both commit.
type Store struct {
	db       *sql.DB
	people   people.Repository
	memories memories.Repository
	queue    opqueue.Repository
	metadata metadata.Repository
	session  session.Repository
	log      logging.Logger
}

// Open opens (or creates) the local database at dsn and applies embedded
// migrations. Failures are wrapped in common.ErrStorageUnavailable: the
// caller cannot offer offline capability and should treat this as fatal.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	log.Debug(ctx, "local database ready", "dsn", dsn)

	return &Store{
		db:       db,
		people:   people.NewSQLiteRepository(db),
		memories: memories.NewSQLiteRepository(db),
		queue:    opqueue.NewSQLiteRepository(db),
		metadata: metadata.NewSQLiteRepository(db),
		session:  session.NewSQLiteRepository(db),
		log:      log,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for test setup.
func (s *Store) DB() *sql.DB {
	return s.db
}

// PutPerson caches the person and queues the mirroring remote save
// atomically. On error the save must be treated as not applied.
func (s *Store) PutPerson(ctx context.Context, p *models.Person, archiveKey string) error {
	p.SavedLocally = time.Now().UTC()

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode person: %w", common.ErrPersistence, err)
	}

	op := &models.QueuedOperation{
		ID:         fmt.Sprintf("person_%s_%s", p.ID, uuid.NewString()),
		Kind:       models.OpSavePerson,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		ArchiveKey: archiveKey,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := people.NewSQLiteRepository(tx).Upsert(ctx, p, archiveKey); err != nil {
			return err
		}
		return opqueue.NewSQLiteRepository(tx).Append(ctx, op)
	})
	if err != nil {
		return fmt.Errorf("%w: save person: %w", common.ErrPersistence, err)
	}
	return nil
}

// PutMemory caches the memory and queues the mirroring remote save
// atomically. The export-grouping invariant is enforced before any write.
func (s *Store) PutMemory(ctx context.Context, m *models.Memory, archiveKey string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.SavedLocally = time.Now().UTC()

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: encode memory: %w", common.ErrPersistence, err)
	}

	op := &models.QueuedOperation{
		ID:         fmt.Sprintf("memory_%s_%s", m.ID, uuid.NewString()),
		Kind:       models.OpSaveMemory,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		ArchiveKey: archiveKey,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := memories.NewSQLiteRepository(tx).Upsert(ctx, m, archiveKey); err != nil {
			return err
		}
		return opqueue.NewSQLiteRepository(tx).Append(ctx, op)
	})
	if err != nil {
		return fmt.Errorf("%w: save memory: %w", common.ErrPersistence, err)
	}
	return nil
}

// PutFamilyBio caches the family bio and queues the mirroring remote
// update atomically.
func (s *Store) PutFamilyBio(ctx context.Context, bio, archiveKey string) error {
	payload, err := json.Marshal(models.BioPayload{ArchiveKey: archiveKey, Bio: bio})
	if err != nil {
		return fmt.Errorf("%w: encode bio: %w", common.ErrPersistence, err)
	}

	op := &models.QueuedOperation{
		ID:         fmt.Sprintf("bio_%s_%s", archiveKey, uuid.NewString()),
		Kind:       models.OpUpdateBio,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		ArchiveKey: archiveKey,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Set(ctx, familyBioKey(archiveKey), []byte(bio)); err != nil {
			return err
		}
		return opqueue.NewSQLiteRepository(tx).Append(ctx, op)
	})
	if err != nil {
		return fmt.Errorf("%w: save family bio: %w", common.ErrPersistence, err)
	}
	return nil
}

// EnqueueFullSync queues a full re-push of the archive's cached state.
func (s *Store) EnqueueFullSync(ctx context.Context, archiveKey string) error {
	op := &models.QueuedOperation{
		ID:         fmt.Sprintf("syncall_%s_%s", archiveKey, uuid.NewString()),
		Kind:       models.OpSyncAll,
		Payload:    []byte(`{}`),
		EnqueuedAt: time.Now().UTC(),
		ArchiveKey: archiveKey,
	}
	if err := s.queue.Append(ctx, op); err != nil {
		return fmt.Errorf("%w: enqueue full sync: %w", common.ErrPersistence, err)
	}
	return nil
}

func (s *Store) GetPeople(ctx context.Context, archiveKey string) ([]models.Person, error) {
	return s.people.GetAll(ctx, archiveKey)
}

func (s *Store) GetMemories(ctx context.Context, archiveKey string) ([]models.Memory, error) {
	return s.memories.GetAll(ctx, archiveKey)
}

func (s *Store) GetMemoriesForPerson(ctx context.Context, archiveKey, personID string) ([]models.Memory, error) {
	return s.memories.GetForPerson(ctx, archiveKey, personID)
}

// GetFamilyBio returns an empty string, not an error, when no bio exists.
func (s *Store) GetFamilyBio(ctx context.Context, archiveKey string) (string, error) {
	v, err := s.metadata.Get(ctx, familyBioKey(archiveKey))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) ListPendingOperations(ctx context.Context, archiveKey string) ([]models.QueuedOperation, error) {
	return s.queue.ListPending(ctx, archiveKey)
}

func (s *Store) RemoveOperation(ctx context.Context, id string) error {
	return s.queue.Remove(ctx, id)
}

func (s *Store) BumpRetry(ctx context.Context, id string) error {
	return s.queue.BumpRetry(ctx, id)
}

func (s *Store) PendingCount(ctx context.Context, archiveKey string) (int, error) {
	return s.queue.Count(ctx, archiveKey)
}

// LastSyncTime returns nil when no sync has completed yet.
func (s *Store) LastSyncTime(ctx context.Context) (*time.Time, error) {
	v, err := s.metadata.Get(ctx, common.LastSyncKey)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return nil, fmt.Errorf("corrupt last sync time: %w", err)
	}
	t = t.UTC()
	return &t, nil
}

func (s *Store) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return s.metadata.Set(ctx, common.LastSyncKey, []byte(t.UTC().Format(time.RFC3339Nano)))
}

func (s *Store) SaveSessionState(ctx context.Context, key string, value []byte) error {
	return s.session.Save(ctx, key, value)
}

func (s *Store) LoadSessionState(ctx context.Context, key string) ([]byte, error) {
	return s.session.Load(ctx, key)
}

// ClearAll wipes every collection, including the queue and the persisted
// last-sync slot. Only invoked by an explicit user-triggered reset.
func (s *Store) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := people.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := memories.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := opqueue.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return session.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: clear all: %w", common.ErrPersistence, err)
	}
	return nil
}
