package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famvault/famvault/internal/archive/models"
)

type fakeSource struct {
	people   []models.Person
	memories []models.Memory
	bio      string
	err      error
}

func (f *fakeSource) GetPeople(ctx context.Context, archiveKey string) ([]models.Person, error) {
	return f.people, f.err
}

func (f *fakeSource) GetMemories(ctx context.Context, archiveKey string) ([]models.Memory, error) {
	return f.memories, f.err
}

func (f *fakeSource) GetFamilyBio(ctx context.Context, archiveKey string) (string, error) {
	return f.bio, f.err
}

func TestJSON(t *testing.T) {
	src := &fakeSource{
		people: []models.Person{{ID: "p1", Name: "Ada"}},
		memories: []models.Memory{{
			ID: "m1", Type: models.MemoryTypeText, Content: "first steps",
			Timestamp: time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC),
			Tags:      models.MemoryTags{PersonIDs: []string{"p1"}},
		}},
		bio: "The Murrays",
	}

	out, err := JSON(context.Background(), src, "FAM1")
	require.NoError(t, err)

	var a Archive
	require.NoError(t, json.Unmarshal(out, &a))
	assert.Equal(t, "FAM1", a.Metadata.ArchiveKey)
	assert.Equal(t, "The Murrays", a.Metadata.FamilyBio)
	require.Len(t, a.People, 1)
	require.Len(t, a.Memories, 1)
	assert.False(t, a.ExportedAt.IsZero())
}

func TestJSON_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("db closed")}
	_, err := JSON(context.Background(), src, "FAM1")
	require.Error(t, err)
}

func TestVerifyIntegrity_Healthy(t *testing.T) {
	src := &fakeSource{
		people: []models.Person{{ID: "p1"}},
		memories: []models.Memory{
			{ID: "m1", Tags: models.MemoryTags{PersonIDs: []string{"p1"}}},
			{ID: "m2", Tags: models.MemoryTags{IsFamilyMemory: true}},
		},
	}

	rep, err := VerifyIntegrity(context.Background(), src, "FAM1")
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, rep.Status)
	assert.Equal(t, 1, rep.PeopleCount)
	assert.Equal(t, 2, rep.MemoriesCount)
	assert.Empty(t, rep.Errors)
}

func TestVerifyIntegrity_Degraded(t *testing.T) {
	src := &fakeSource{
		people: []models.Person{{ID: "p1"}},
		memories: []models.Memory{
			{ID: "m1", Tags: models.MemoryTags{PersonIDs: []string{"gone"}}},
		},
	}

	rep, err := VerifyIntegrity(context.Background(), src, "FAM1")
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, rep.Status)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "m1")
	assert.Contains(t, rep.Errors[0], "gone")
}

func TestVerifyIntegrity_Critical(t *testing.T) {
	src := &fakeSource{people: []models.Person{{ID: "p1"}}}
	for i := 0; i < 6; i++ {
		src.memories = append(src.memories, models.Memory{
			ID:   fmt.Sprintf("m%d", i),
			Tags: models.MemoryTags{PersonIDs: []string{"gone"}},
		})
	}

	rep, err := VerifyIntegrity(context.Background(), src, "FAM1")
	require.NoError(t, err)
	assert.Equal(t, StatusCritical, rep.Status)
	assert.Len(t, rep.Errors, 6)
}

func TestVerifyIntegrity_ReadError(t *testing.T) {
	src := &fakeSource{err: errors.New("db closed")}
	_, err := VerifyIntegrity(context.Background(), src, "FAM1")
	require.Error(t, err)
}
