// Package config loads runtime configuration for the famvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-r string   base URL of the archive backend
//	-d string   path to the local database file
//	-k string   archive key
//	-g string   gate phrase
//	-i int      online check interval (seconds)
//	-p int      subscription poll interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be
// either strings like "3s" or integer nanoseconds:
//
//	{
//	  "remote_base_url": "http://127.0.0.1:8080",
//	  "database_path": "famvault.db",
//	  "archive_key": "MURRAY_LEGACY_2026",
//	  "online_check_interval": "3s",
//	  "poll_interval": "5s"
//	}
//
// S3 settings (s3_bucket, s3_endpoint, s3_region, s3_access_key,
// s3_secret_key) are JSON-only; when s3_bucket is set, media uploads go
// straight to object storage instead of through the backend presign flow.
//
// Note: This package does not read environment variables directly; use
// the JSON file or flags to configure values.
package config
