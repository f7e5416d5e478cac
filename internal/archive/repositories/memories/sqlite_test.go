package memories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famvault/famvault/internal/archive/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE memories (
  id TEXT NOT NULL,
  archive_key TEXT NOT NULL,
  type TEXT NOT NULL,
  content TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  event_ts INTEGER NOT NULL,
  person_ids TEXT NOT NULL DEFAULT '[]',
  is_family INTEGER NOT NULL DEFAULT 0,
  anchored_at INTEGER NOT NULL DEFAULT 0,
  saved_locally INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (id, archive_key)
);

CREATE TABLE memory_people (
  memory_id TEXT NOT NULL,
  archive_key TEXT NOT NULL,
  person_id TEXT NOT NULL,
  PRIMARY KEY (memory_id, archive_key, person_id)
);
`)
	require.NoError(t, err)

	return db
}

func mem(id string, ts time.Time, personIDs ...string) *models.Memory {
	return &models.Memory{
		ID:        id,
		Type:      models.MemoryTypeText,
		Content:   "content of " + id,
		Timestamp: ts,
		Tags:      models.MemoryTags{PersonIDs: personIDs, IsFamilyMemory: len(personIDs) == 0},
	}
}

func TestGetAll_NewestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, mem("m-old", base.Add(-48*time.Hour), "p1"), "FAM1"))
	require.NoError(t, r.Upsert(ctx, mem("m-new", base, "p1"), "FAM1"))
	require.NoError(t, r.Upsert(ctx, mem("m-mid", base.Add(-24*time.Hour), "p2"), "FAM1"))

	got, err := r.GetAll(ctx, "FAM1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "m-new", got[0].ID)
	assert.Equal(t, "m-mid", got[1].ID)
	assert.Equal(t, "m-old", got[2].ID)
}

func TestGetForPerson(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, mem("m1", base, "p1", "p2"), "FAM1"))
	require.NoError(t, r.Upsert(ctx, mem("m2", base.Add(time.Hour), "p2"), "FAM1"))
	require.NoError(t, r.Upsert(ctx, mem("m3", base.Add(2*time.Hour)), "FAM1"))

	got, err := r.GetForPerson(ctx, "FAM1", "p2")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)

	none, err := r.GetForPerson(ctx, "FAM1", "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsert_ReplacesMembership(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, mem("m1", ts, "p1", "p2"), "FAM1"))

	// retag to p3 only
	require.NoError(t, r.Upsert(ctx, mem("m1", ts, "p3"), "FAM1"))

	forOld, err := r.GetForPerson(ctx, "FAM1", "p1")
	require.NoError(t, err)
	assert.Empty(t, forOld)

	forNew, err := r.GetForPerson(ctx, "FAM1", "p3")
	require.NoError(t, err)
	require.Len(t, forNew, 1)
	assert.Equal(t, []string{"p3"}, forNew[0].Tags.PersonIDs)
}

func TestGetAll_ScopedByArchiveKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, mem("m1", ts, "p1"), "FAM1"))
	require.NoError(t, r.Upsert(ctx, mem("m2", ts, "p1"), "FAM2"))

	got, err := r.GetAll(ctx, "FAM1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, mem("m1", ts, "p1"), "FAM1"))
	require.NoError(t, r.Clear(ctx))

	got, err := r.GetAll(ctx, "FAM1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
