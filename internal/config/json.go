package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/famvault/famvault/internal/flagx"
	"github.com/famvault/famvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "3s" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config (which uses time.Duration).
type JsonConfig struct {
	RemoteBaseURL       string         `json:"remote_base_url"`
	DatabasePath        string         `json:"database_path"`
	ArchiveKey          string         `json:"archive_key"`
	GatePhrase          string         `json:"gate_phrase"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	PollInterval        timex.Duration `json:"poll_interval"`

	S3Bucket    string `json:"s3_bucket"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3Region    string `json:"s3_region"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
}

// parseJson overlays Config with values loaded from a JSON file selected
// via the -c or -config flag. Fields absent from the file keep their
// current value. Panics on read or unmarshal errors (caller should
// recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later
// stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RemoteBaseURL != "" {
		cfg.RemoteBaseURL = jc.RemoteBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.ArchiveKey != "" {
		cfg.ArchiveKey = jc.ArchiveKey
	}
	if jc.GatePhrase != "" {
		cfg.GatePhrase = jc.GatePhrase
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}

	cfg.S3Bucket = jc.S3Bucket
	cfg.S3Endpoint = jc.S3Endpoint
	cfg.S3Region = jc.S3Region
	cfg.S3AccessKey = jc.S3AccessKey
	cfg.S3SecretKey = jc.S3SecretKey
}
