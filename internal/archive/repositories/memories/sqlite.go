package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
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

// Upsert writes the memory row and rebuilds its person membership rows.
// Callers that need atomicity run it inside dbx.WithTx.
func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.Memory, archiveKey string) error {
	personIDs, err := json.Marshal(m.Tags.PersonIDs)
	if err != nil {
		return fmt.Errorf("failed to encode person ids: %w", err)
	}

	query := `INSERT INTO memories (id, archive_key, type, content, location, event_ts, person_ids, is_family, anchored_at, saved_locally)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, archive_key) DO UPDATE SET type = excluded.type,
				content = excluded.content,
				location = excluded.location,
				event_ts = excluded.event_ts,
				person_ids = excluded.person_ids,
				is_family = excluded.is_family,
				anchored_at = excluded.anchored_at,
				saved_locally = excluded.saved_locally
	`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, archiveKey, string(m.Type), m.Content, m.Location, millis(m.Timestamp),
		string(personIDs), m.Tags.IsFamilyMemory, millis(m.AnchoredAt), millis(m.SavedLocally))
	if err != nil {
		return fmt.Errorf("failed to upsert memory: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM memory_people WHERE memory_id = ? AND archive_key = ?`, m.ID, archiveKey); err != nil {
		return fmt.Errorf("failed to reset memory membership: %w", err)
	}
	for _, personID := range m.Tags.PersonIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO memory_people (memory_id, archive_key, person_id) VALUES (?, ?, ?)`,
			m.ID, archiveKey, personID); err != nil {
			return fmt.Errorf("failed to insert memory membership: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, archiveKey string) ([]models.Memory, error) {
	query := `SELECT id, type, content, location, event_ts, person_ids, is_family, anchored_at, saved_locally
			FROM memories WHERE archive_key = ? ORDER BY event_ts DESC`
	return r.query(ctx, query, archiveKey)
}

func (r *SQLiteRepository) GetForPerson(ctx context.Context, archiveKey, personID string) ([]models.Memory, error) {
	query := `SELECT m.id, m.type, m.content, m.location, m.event_ts, m.person_ids, m.is_family, m.anchored_at, m.saved_locally
			FROM memories m
			JOIN memory_people mp ON mp.memory_id = m.id AND mp.archive_key = m.archive_key
			WHERE m.archive_key = ? AND mp.person_id = ?
			ORDER BY m.event_ts DESC`
	return r.query(ctx, query, archiveKey, personID)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Memory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select memories: %w", err)
	}
	defer rows.Close()

	result := []models.Memory{}
	for rows.Next() {
		var m models.Memory
		var typ, personIDs string
		var eventTs, anchoredAt, savedLocally int64
		if err := rows.Scan(&m.ID, &typ, &m.Content, &m.Location, &eventTs,
			&personIDs, &m.Tags.IsFamilyMemory, &anchoredAt, &savedLocally); err != nil {
			return nil, err
		}
		m.Type = models.MemoryType(typ)
		m.Timestamp = fromMillis(eventTs)
		m.AnchoredAt = fromMillis(anchoredAt)
		m.SavedLocally = fromMillis(savedLocally)
		if err := json.Unmarshal([]byte(personIDs), &m.Tags.PersonIDs); err != nil {
			return nil, fmt.Errorf("failed to decode person ids: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM memory_people`); err != nil {
		return fmt.Errorf("failed to clear memory membership: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM memories`); err != nil {
		return fmt.Errorf("failed to clear memories: %w", err)
	}
	return nil
}
