// Package export produces archive backups and checks referential
// integrity of the cached collections.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
)

// Source is the slice of the local store the exporter reads.
type Source interface {
	GetPeople(ctx context.Context, archiveKey string) ([]models.Person, error)
	GetMemories(ctx context.Context, archiveKey string) ([]models.Memory, error)
	GetFamilyBio(ctx context.Context, archiveKey string) (string, error)
}

// Archive is the backup document written by JSON.
type Archive struct {
	Metadata   models.ArchiveMetadata `json:"metadata"`
	People     []models.Person        `json:"people"`
	Memories   []models.Memory        `json:"memories"`
	ExportedAt time.Time              `json:"exportedAt"`
}

// JSON renders the complete cached archive as indented JSON.
func JSON(ctx context.Context, src Source, archiveKey string) ([]byte, error) {
	people, err := src.GetPeople(ctx, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("export: load people: %w", err)
	}
	mems, err := src.GetMemories(ctx, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("export: load memories: %w", err)
	}
	bio, err := src.GetFamilyBio(ctx, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("export: load bio: %w", err)
	}

	a := Archive{
		Metadata:   models.ArchiveMetadata{ArchiveKey: archiveKey, FamilyBio: bio},
		People:     people,
		Memories:   mems,
		ExportedAt: time.Now().UTC(),
	}
	return json.MarshalIndent(a, "", "  ")
}

type IntegrityStatus string

const (
	StatusHealthy  IntegrityStatus = "HEALTHY"
	StatusDegraded IntegrityStatus = "DEGRADED"
	StatusCritical IntegrityStatus = "CRITICAL"
)

// degradedCeiling is the issue count above which the archive is
// considered critical rather than merely degraded.
const degradedCeiling = 5

// IntegrityReport summarizes a referential scan of the cached archive.
type IntegrityReport struct {
	Status        IntegrityStatus `json:"status"`
	PeopleCount   int             `json:"peopleCount"`
	MemoriesCount int             `json:"memoriesCount"`
	Errors        []string        `json:"errors"`
}

// VerifyIntegrity scans cached memories for references to people that
// do not exist. It never fails the archive for content problems; a read
// error is the only error return.
func VerifyIntegrity(ctx context.Context, src Source, archiveKey string) (*IntegrityReport, error) {
	people, err := src.GetPeople(ctx, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("integrity: load people: %w", err)
	}
	mems, err := src.GetMemories(ctx, archiveKey)
	if err != nil {
		return nil, fmt.Errorf("integrity: load memories: %w", err)
	}

	known := make(map[string]struct{}, len(people))
	for _, p := range people {
		known[p.ID] = struct{}{}
	}

	var errs []string
	for _, m := range mems {
		for _, pid := range m.Tags.PersonIDs {
			if _, ok := known[pid]; !ok {
				errs = append(errs,
					fmt.Sprintf("orphaned memory %s: references non-existent person %s", m.ID, pid))
			}
		}
	}

	status := StatusHealthy
	switch {
	case len(errs) > degradedCeiling:
		status = StatusCritical
	case len(errs) > 0:
		status = StatusDegraded
	}

	return &IntegrityReport{
		Status:        status,
		PeopleCount:   len(people),
		MemoriesCount: len(mems),
		Errors:        errs,
	}, nil
}
