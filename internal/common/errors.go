// Package common defines shared constants and sentinel errors used across
// famvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Local persistence errors. ErrStorageUnavailable is fatal at startup:
	// without the local store there is no offline capability to offer.
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrPersistence        = errors.New("local transaction failed")

	// Remote store errors. Retried during drain, never surfaced to callers
	// except through the aggregated sync status.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// Validation errors.
	ErrUntaggedMemory = errors.New("memory is not a family memory and references no people")
)
