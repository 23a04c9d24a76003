// Package config loads store.Options from three layered sources: a
// config.yaml file, a .env file, and process environment variables, in
// that priority order (env > .env > yaml > built-in defaults). This is
// the concrete stand-in for spec.md §1's out-of-scope ".env configuration
// loader" collaborator — the core (store.Open) still takes a plain
// store.Options value and never reaches into the environment itself.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/embeddb/firelocal/internal/compression"
	"github.com/embeddb/firelocal/internal/rules"
	"github.com/embeddb/firelocal/logging"
	"github.com/embeddb/firelocal/store"
)

// fileConfig mirrors store.Options' fields with YAML tags; it is the
// shape both config.yaml and .env/env-var overrides are parsed into.
type fileConfig struct {
	DataDir                     string `yaml:"data_dir"`
	MaxDocumentSize             int    `yaml:"max_document_size"`
	MaxPathLength               int    `yaml:"max_path_length"`
	MemtableFlushThresholdBytes int64  `yaml:"memtable_flush_threshold_bytes"`
	CompactionSSTCountThreshold int    `yaml:"compaction_sst_count_threshold"`
	TransactionRetryBound       int    `yaml:"transaction_retry_bound"`
	RulesMode                   string `yaml:"rules_mode"`
	Compression                string `yaml:"compression"`
	FlushOnClose                *bool  `yaml:"flush_on_close"`
	LogLevel                    string `yaml:"log_level"`
	LogJSON                     *bool  `yaml:"log_json"`
}

// Loaded is the result of Load: a ready store.Options plus the directory
// the caller should pass to store.Open.
type Loaded struct {
	DataDir string
	Options store.Options
}

// Load reads yamlPath (if present), then envPath as a .env file (if
// present) and applies it to the process environment, then layers real
// process environment variables over both, and returns store.Options
// ready for store.Open. Either path may be empty to skip that source.
func Load(yamlPath, envPath string) (Loaded, error) {
	var fc fileConfig

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Loaded{}, err
			}
		} else if !os.IsNotExist(err) {
			return Loaded{}, err
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Loaded{}, err
		}
	}

	applyEnvOverrides(&fc)

	opts := store.DefaultOptions()
	if fc.MaxDocumentSize > 0 {
		opts.MaxDocumentSize = fc.MaxDocumentSize
	}
	if fc.MaxPathLength > 0 {
		opts.MaxPathLength = fc.MaxPathLength
	}
	if fc.MemtableFlushThresholdBytes > 0 {
		opts.MemtableFlushThresholdBytes = fc.MemtableFlushThresholdBytes
	}
	if fc.CompactionSSTCountThreshold > 0 {
		opts.CompactionSSTCountThreshold = fc.CompactionSSTCountThreshold
	}
	if fc.TransactionRetryBound > 0 {
		opts.TransactionRetryBound = fc.TransactionRetryBound
	}
	if fc.RulesMode != "" {
		opts.RulesMode = parseRulesMode(fc.RulesMode)
	}
	if fc.Compression != "" {
		opts.Compression = parseCompression(fc.Compression)
	}
	if fc.FlushOnClose != nil {
		opts.FlushOnClose = *fc.FlushOnClose
	}

	logLevel, logJSON := fc.LogLevel, false
	if fc.LogJSON != nil {
		logJSON = *fc.LogJSON
	}
	format := logging.Console
	if logJSON {
		format = logging.JSON
	}
	opts.Logger = logging.New(logging.Config{Level: parseZerologLevel(logLevel), Format: format})

	dataDir := fc.DataDir
	if dataDir == "" {
		dataDir = "./firelocal-data"
	}

	return Loaded{DataDir: dataDir, Options: opts}, nil
}

// applyEnvOverrides layers FIRELOCAL_-prefixed process environment
// variables over fc, taking priority over both the yaml file and any
// .env-sourced values already in the environment.
func applyEnvOverrides(fc *fileConfig) {
	if v := os.Getenv("FIRELOCAL_DATA_DIR"); v != "" {
		fc.DataDir = v
	}
	if v := os.Getenv("FIRELOCAL_MAX_DOCUMENT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fc.MaxDocumentSize = n
		}
	}
	if v := os.Getenv("FIRELOCAL_MAX_PATH_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fc.MaxPathLength = n
		}
	}
	if v := os.Getenv("FIRELOCAL_MEMTABLE_FLUSH_THRESHOLD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			fc.MemtableFlushThresholdBytes = n
		}
	}
	if v := os.Getenv("FIRELOCAL_COMPACTION_SST_COUNT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fc.CompactionSSTCountThreshold = n
		}
	}
	if v := os.Getenv("FIRELOCAL_TRANSACTION_RETRY_BOUND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fc.TransactionRetryBound = n
		}
	}
	if v := os.Getenv("FIRELOCAL_RULES_MODE"); v != "" {
		fc.RulesMode = v
	}
	if v := os.Getenv("FIRELOCAL_COMPRESSION"); v != "" {
		fc.Compression = v
	}
	if v := os.Getenv("FIRELOCAL_FLUSH_ON_CLOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			fc.FlushOnClose = &b
		}
	}
	if v := os.Getenv("FIRELOCAL_LOG_LEVEL"); v != "" {
		fc.LogLevel = v
	}
	if v := os.Getenv("FIRELOCAL_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			fc.LogJSON = &b
		}
	}
}

func parseRulesMode(s string) rules.DefaultMode {
	if s == "deny-all" {
		return rules.ModeDenyAll
	}
	return rules.ModeAllowAll
}

func parseCompression(s string) compression.Type {
	switch s {
	case "none":
		return compression.None
	case "snappy":
		return compression.Snappy
	case "lz4":
		return compression.LZ4
	default:
		return compression.Zstd
	}
}

func parseZerologLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
