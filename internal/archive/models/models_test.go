package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famvault/famvault/internal/common"
)

func TestSplitJoinContent(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		caption, media := SplitContent("just a note")
		assert.Equal(t, "just a note", caption)
		assert.Empty(t, media)
		assert.Equal(t, "just a note", JoinContent(caption, media))
	})

	t.Run("caption with url", func(t *testing.T) {
		content := "summer 1987|DELIM|https://blobs.example/abc"
		caption, media := SplitContent(content)
		assert.Equal(t, "summer 1987", caption)
		assert.Equal(t, "https://blobs.example/abc", media)
		assert.Equal(t, content, JoinContent(caption, media))
	})
}

func TestMemory_HasInlineAttachment(t *testing.T) {
	m := Memory{Content: "pic|DELIM|data:image/png;base64,AAAA"}
	assert.True(t, m.HasInlineAttachment())

	m.Content = "pic|DELIM|https://blobs.example/abc"
	assert.False(t, m.HasInlineAttachment())

	m.Content = "plain text"
	assert.False(t, m.HasInlineAttachment())
}

func TestMemory_Validate(t *testing.T) {
	m := Memory{Tags: MemoryTags{IsFamilyMemory: false}}
	assert.ErrorIs(t, m.Validate(), common.ErrUntaggedMemory)

	m.Tags.IsFamilyMemory = true
	assert.NoError(t, m.Validate())

	m.Tags = MemoryTags{PersonIDs: []string{"p1"}}
	assert.NoError(t, m.Validate())
}

func TestNormalizeTime(t *testing.T) {
	want := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("rfc3339 string", func(t *testing.T) {
		assert.Equal(t, want, NormalizeTime("2026-03-14T15:09:26Z"))
	})

	t.Run("native time", func(t *testing.T) {
		assert.Equal(t, want, NormalizeTime(want))
	})

	t.Run("epoch millis", func(t *testing.T) {
		assert.Equal(t, want, NormalizeTime(float64(want.UnixMilli())))
	})

	t.Run("garbage yields zero", func(t *testing.T) {
		assert.True(t, NormalizeTime("yesterday-ish").IsZero())
		assert.True(t, NormalizeTime(nil).IsZero())
	})
}

func TestPersonDocumentRoundTrip(t *testing.T) {
	p := Person{
		ID:           "p1",
		Name:         "Ada Murray",
		BirthYear:    1931,
		Bio:          "matriarch",
		FamilyGroup:  "murray",
		LastModified: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	doc, err := PersonToDocument(p)
	require.NoError(t, err)

	got := PersonFromDocument(doc)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.BirthYear, got.BirthYear)
	assert.Equal(t, p.LastModified, got.LastModified)
}

func TestMemoryFromDocument_Tags(t *testing.T) {
	doc := map[string]any{
		"id":        "m1",
		"type":      "image",
		"content":   "pic|DELIM|https://blobs.example/m1",
		"timestamp": "2025-12-24T18:00:00Z",
		"tags": map[string]any{
			"personIds":      []any{"p1", "p2"},
			"isFamilyMemory": true,
		},
	}

	m := MemoryFromDocument(doc)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, MemoryTypeImage, m.Type)
	assert.Equal(t, []string{"p1", "p2"}, m.Tags.PersonIDs)
	assert.True(t, m.Tags.IsFamilyMemory)
	assert.Equal(t, time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC), m.Timestamp)
}
