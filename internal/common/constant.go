package common

// ContentDelimiter separates a memory's caption from its media part
// (either a resolved URL or an inline data: payload awaiting upload).
const ContentDelimiter = "|DELIM|"

// LastSyncKey is the metadata slot holding the persisted last-sync time.
const LastSyncKey = "LAST_SYNC_TIME"
