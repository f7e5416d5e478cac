// Package models defines the archive domain types shared by the local
// store, the sync engine and the remote projection.
package models

import (
	"strings"
	"time"

	"github.com/famvault/famvault/internal/common"
)

// MemoryType classifies an archived item.
type MemoryType string

const (
	MemoryTypeText     MemoryType = "text"
	MemoryTypeImage    MemoryType = "image"
	MemoryTypeAudio    MemoryType = "audio"
	MemoryTypeVideo    MemoryType = "video"
	MemoryTypeDocument MemoryType = "document"
	MemoryTypePDF      MemoryType = "pdf"
)

// Person is an identity entity owned by one archive.
type Person struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BirthDate    string    `json:"birthDate,omitempty"`
	BirthYear    int       `json:"birthYear,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	FamilyGroup  string    `json:"familyGroup,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
	SavedLocally time.Time `json:"savedLocally,omitempty"`
}

// MemoryTags associates a memory with people, or marks it as belonging to
// the whole family.
type MemoryTags struct {
	PersonIDs      []string `json:"personIds"`
	IsFamilyMemory bool     `json:"isFamilyMemory"`
}

// Memory is a single archived item. For non-text types Content is a
// composite "caption|DELIM|media" value where media is either a resolved
// URL or an inline data: payload awaiting upload.
type Memory struct {
	ID           string     `json:"id"`
	Type         MemoryType `json:"type"`
	Content      string     `json:"content"`
	Location     string     `json:"location,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
	Tags         MemoryTags `json:"tags"`
	AnchoredAt   time.Time  `json:"anchoredAt,omitempty"`
	SavedLocally time.Time  `json:"savedLocally,omitempty"`
}

// Validate checks the export-grouping invariant: a memory that is not a
// family memory must reference at least one person.
func (m *Memory) Validate() error {
	if !m.Tags.IsFamilyMemory && len(m.Tags.PersonIDs) == 0 {
		return common.ErrUntaggedMemory
	}
	return nil
}

// Caption returns the caption part of the content composite.
func (m *Memory) Caption() string {
	caption, _ := SplitContent(m.Content)
	return caption
}

// HasInlineAttachment reports whether the media part still carries an
// inline data: payload that has to be promoted to blob storage.
func (m *Memory) HasInlineAttachment() bool {
	_, media := SplitContent(m.Content)
	return strings.HasPrefix(media, "data:")
}

// SplitContent splits a composite content value into its caption and media
// parts. Plain text content comes back as (content, "").
func SplitContent(content string) (caption, media string) {
	caption, media, found := strings.Cut(content, common.ContentDelimiter)
	if !found {
		return content, ""
	}
	return caption, media
}

// JoinContent is the inverse of SplitContent.
func JoinContent(caption, media string) string {
	if media == "" {
		return caption
	}
	return caption + common.ContentDelimiter + media
}

// ArchiveMetadata is the per-archive metadata document.
type ArchiveMetadata struct {
	ArchiveKey   string    `json:"archiveKey"`
	FamilyName   string    `json:"familyName"`
	FamilyBio    string    `json:"familyBio,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// MemoryTree is the merged projection of one archive's remote state.
type MemoryTree struct {
	ArchiveKey string   `json:"archiveKey"`
	FamilyName string   `json:"familyName"`
	FamilyBio  string   `json:"familyBio,omitempty"`
	People     []Person `json:"people"`
	Memories   []Memory `json:"memories"`
}

// OperationKind identifies what a queued operation will do against the
// remote store when drained.
type OperationKind string

const (
	OpSavePerson OperationKind = "SAVE_PERSON"
	OpSaveMemory OperationKind = "SAVE_MEMORY"
	OpUpdateBio  OperationKind = "UPDATE_BIO"
	OpSyncAll    OperationKind = "SYNC_ALL"
)

// QueuedOperation is a durable intent to mutate the remote store. It is
// created in the same transaction as the local cache write it mirrors and
// deleted only after confirmed remote success.
type QueuedOperation struct {
	ID         string        `json:"id"`
	Kind       OperationKind `json:"type"`
	Payload    []byte        `json:"data"`
	EnqueuedAt time.Time     `json:"timestamp"`
	RetryCount int           `json:"retryCount"`
	ArchiveKey string        `json:"archiveKey"`
}

// BioPayload is the queued-operation payload for a family bio update.
type BioPayload struct {
	ArchiveKey string `json:"archiveKey"`
	Bio        string `json:"bio"`
}

// SyncState is the aggregated state shown to consumers.
type SyncState string

const (
	SyncIdle    SyncState = "IDLE"
	SyncSyncing SyncState = "SYNCING"
	SyncError   SyncState = "ERROR"
	SyncOffline SyncState = "OFFLINE"
)

// SyncStatus is the derived, non-persistent status record. Only
// LastSyncTime survives restarts (kept in a metadata slot).
type SyncStatus struct {
	IsOnline          bool       `json:"isOnline"`
	LastSyncTime      *time.Time `json:"lastSyncTime"`
	PendingOperations int        `json:"pendingOperations"`
	SyncInProgress    bool       `json:"syncInProgress"`
	State             SyncState  `json:"status"`
}
