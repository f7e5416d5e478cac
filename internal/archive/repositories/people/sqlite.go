package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Person, archiveKey string) error {
	query := `INSERT INTO people (id, archive_key, name, birth_date, birth_year, bio, family_group, last_modified, saved_locally)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, archive_key) DO UPDATE SET name = excluded.name,
				birth_date = excluded.birth_date,
				birth_year = excluded.birth_year,
				bio = excluded.bio,
				family_group = excluded.family_group,
				last_modified = excluded.last_modified,
				saved_locally = excluded.saved_locally
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, archiveKey, p.Name, p.BirthDate, p.BirthYear, p.Bio, p.FamilyGroup,
		millis(p.LastModified), millis(p.SavedLocally))
	if err != nil {
		return fmt.Errorf("failed to upsert person: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, archiveKey string) ([]models.Person, error) {
	query := `SELECT id, name, birth_date, birth_year, bio, family_group, last_modified, saved_locally
			FROM people WHERE archive_key = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to select people: %w", err)
	}
	defer rows.Close()

	result := []models.Person{}
	for rows.Next() {
		var p models.Person
		var lastModified, savedLocally int64
		if err := rows.Scan(&p.ID, &p.Name, &p.BirthDate, &p.BirthYear, &p.Bio,
			&p.FamilyGroup, &lastModified, &savedLocally); err != nil {
			return nil, err
		}
		p.LastModified = fromMillis(lastModified)
		p.SavedLocally = fromMillis(savedLocally)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, archiveKey, id string) (*models.Person, error) {
	query := `SELECT id, name, birth_date, birth_year, bio, family_group, last_modified, saved_locally
			FROM people WHERE archive_key = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, archiveKey, id)

	var p models.Person
	var lastModified, savedLocally int64
	err := row.Scan(&p.ID, &p.Name, &p.BirthDate, &p.BirthYear, &p.Bio,
		&p.FamilyGroup, &lastModified, &savedLocally)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	p.LastModified = fromMillis(lastModified)
	p.SavedLocally = fromMillis(savedLocally)
	return &p, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM people`); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}
	return nil
}
