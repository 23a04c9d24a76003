// Package logging provides the structured logger every firelocal subsystem
// shares, following cuemby/warren's pkg/log shape: a package-level
// zerolog.Logger configured once at startup, console output in development
// and JSON in production, with per-subsystem child loggers carrying a
// "component" field.
//
// The core never logs payload bytes (spec.md §7 "No sensitive payload
// bytes are logged by the core") — callers pass paths, sequence numbers,
// and counts only.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so callers depend on this package's surface
// rather than importing zerolog directly throughout the module.
type Logger struct {
	zerolog.Logger
}

// Format selects the log encoding.
type Format int

const (
	// Console renders human-readable, colorized lines — the development
	// default.
	Console Format = iota
	// JSON renders one JSON object per line — the production default.
	JSON
)

// Config configures a Logger.
type Config struct {
	Level  zerolog.Level
	Format Format
	Output io.Writer
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var base zerolog.Logger
	if cfg.Format == JSON {
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	base = base.Level(cfg.Level)
	return &Logger{Logger: base}
}

var defaultLogger = New(Config{Level: zerolog.InfoLevel, Format: Console})

// Default returns the package-wide fallback logger used when an Options
// value omits one.
func Default() *Logger { return defaultLogger }

// Component returns a child logger tagged with the given subsystem name
// (spec.md SPEC_FULL §2.1: "wal", "memtable", "sstable", "engine",
// "compaction", "listener").
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", name).Logger()}
}
