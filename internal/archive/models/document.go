package models

import (
	"encoding/json"
	"time"
)

// Documents travel to and from the remote store as loosely typed maps.
// The helpers below convert between them and the archive types, and
// normalize the remote store's temporal values (native time, RFC3339
// strings, or epoch milliseconds) to time.Time in UTC.

// NormalizeTime converts a remote temporal value to time.Time. Unknown
// shapes yield the zero time.
func NormalizeTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC()
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}

func docString(d map[string]any, key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

func docInt(d map[string]any, key string) int {
	switch n := d[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if v, err := n.Int64(); err == nil {
			return int(v)
		}
	}
	return 0
}

func docBool(d map[string]any, key string) bool {
	b, _ := d[key].(bool)
	return b
}

func docStrings(d map[string]any, key string) []string {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toDocument marshals any archive type to its remote document form.
func toDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d map[string]any
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// PersonToDocument renders a person as a remote document.
func PersonToDocument(p Person) (map[string]any, error) {
	return toDocument(p)
}

// PersonFromDocument rebuilds a person from a remote snapshot.
func PersonFromDocument(d map[string]any) Person {
	return Person{
		ID:           docString(d, "id"),
		Name:         docString(d, "name"),
		BirthDate:    docString(d, "birthDate"),
		BirthYear:    docInt(d, "birthYear"),
		Bio:          docString(d, "bio"),
		FamilyGroup:  docString(d, "familyGroup"),
		LastModified: NormalizeTime(d["lastModified"]),
	}
}

// MemoryToDocument renders a memory as a remote document.
func MemoryToDocument(m Memory) (map[string]any, error) {
	return toDocument(m)
}

// MemoryFromDocument rebuilds a memory from a remote snapshot.
func MemoryFromDocument(d map[string]any) Memory {
	m := Memory{
		ID:         docString(d, "id"),
		Type:       MemoryType(docString(d, "type")),
		Content:    docString(d, "content"),
		Location:   docString(d, "location"),
		Timestamp:  NormalizeTime(d["timestamp"]),
		AnchoredAt: NormalizeTime(d["anchoredAt"]),
	}
	if tags, ok := d["tags"].(map[string]any); ok {
		m.Tags = MemoryTags{
			PersonIDs:      docStrings(tags, "personIds"),
			IsFamilyMemory: docBool(tags, "isFamilyMemory"),
		}
	}
	return m
}

// MetadataFromDocument rebuilds archive metadata from a remote snapshot.
func MetadataFromDocument(d map[string]any) ArchiveMetadata {
	return ArchiveMetadata{
		ArchiveKey:   docString(d, "archiveKey"),
		FamilyName:   docString(d, "familyName"),
		FamilyBio:    docString(d, "familyBio"),
		CreatedAt:    NormalizeTime(d["createdAt"]),
		LastModified: NormalizeTime(d["lastModified"]),
	}
}
