package people

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE people (
  id TEXT NOT NULL,
  archive_key TEXT NOT NULL,
  name TEXT NOT NULL,
  birth_date TEXT NOT NULL DEFAULT '',
  birth_year INTEGER NOT NULL DEFAULT 0,
  bio TEXT NOT NULL DEFAULT '',
  family_group TEXT NOT NULL DEFAULT '',
  last_modified INTEGER NOT NULL DEFAULT 0,
  saved_locally INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (id, archive_key)
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := &models.Person{
		ID:           "p1",
		Name:         "Ada Murray",
		BirthYear:    1931,
		SavedLocally: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, r.Upsert(ctx, p, "FAM1"))

	p.Name = "Ada Murray-Klein"
	p.Bio = "matriarch"
	require.NoError(t, r.Upsert(ctx, p, "FAM1"))

	got, err := r.GetByID(ctx, "FAM1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Murray-Klein", got.Name)
	assert.Equal(t, "matriarch", got.Bio)
	assert.Equal(t, 1931, got.BirthYear)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&count))
	assert.Equal(t, 1, count, "upsert must not duplicate rows")
}

func TestGetAll_ScopedByArchiveKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Person{ID: "p1", Name: "Ada"}, "FAM1"))
	require.NoError(t, r.Upsert(ctx, &models.Person{ID: "p2", Name: "Ben"}, "FAM1"))
	require.NoError(t, r.Upsert(ctx, &models.Person{ID: "p3", Name: "Eve"}, "FAM2"))

	got, err := r.GetAll(ctx, "FAM1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	empty, err := r.GetAll(ctx, "NOSUCH")
	require.NoError(t, err)
	assert.Empty(t, empty, "unknown archive must yield empty, not error")
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "FAM1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Person{ID: "p1", Name: "Ada"}, "FAM1"))
	require.NoError(t, r.Clear(ctx))

	got, err := r.GetAll(ctx, "FAM1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
