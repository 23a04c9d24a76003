package store

import (
	"github.com/embeddb/firelocal/internal/compression"
	"github.com/embeddb/firelocal/internal/rules"
	"github.com/embeddb/firelocal/logging"
	"github.com/embeddb/firelocal/metrics"
)

// FsyncPolicy selects when a write is durably flushed to disk. spec.md §6
// enumerates a single default ("per-batch"); PerWrite is offered as the
// stronger, slower alternative some deployments want.
type FsyncPolicy int

const (
	// FsyncPerBatch syncs the WAL once per Put/Delete/CommitBatch call —
	// the spec.md §6 default.
	FsyncPerBatch FsyncPolicy = iota
	// FsyncPerWrite is identical today: this store has no write-combining
	// buffer ahead of the WAL, so every batch is already its own fsync.
	// The distinct constant exists for forward compatibility with a
	// future group-commit path.
	FsyncPerWrite
)

// Options configures an Engine at Open (spec.md §6 "Configuration
// options"). Open fills every zero numeric limit, a nil Logger and a nil
// Metrics from DefaultOptions; FlushOnClose, RulesMode, Fsync and
// Compression are used as given, so a zero Options has FlushOnClose off
// and Compression set to None.
type Options struct {
	// MaxDocumentSize caps a Put payload in bytes (default 10 MiB).
	MaxDocumentSize int
	// MaxPathLength caps an encoded document path in bytes (default 1024).
	MaxPathLength int
	// MemtableFlushThresholdBytes triggers a flush once the active
	// memtable's byte charge exceeds this value (default 4 MiB).
	MemtableFlushThresholdBytes int64
	// CompactionSSTCountThreshold triggers compaction once the live SST
	// count exceeds this value (default 10).
	CompactionSSTCountThreshold int
	// TransactionRetryBound caps RunTransaction's internal retry loop
	// (default 3).
	TransactionRetryBound int
	// RulesMode selects the stock evaluator used until LoadRules installs
	// a real rule set.
	RulesMode rules.DefaultMode
	// Fsync selects the durability policy for WAL appends.
	Fsync FsyncPolicy
	// Compression selects the codec used for newly written SSTs.
	Compression compression.Type
	// FlushOnClose, if true, flushes any non-empty active memtable during
	// Close rather than leaving it to be replayed from the WAL on next
	// open (spec.md §4.4 "Close: flush outstanding memtable if
	// configured").
	FlushOnClose bool
	// Logger receives structured events from every subsystem. Defaults to
	// logging.Default() if nil.
	Logger *logging.Logger
	// Metrics receives counters/gauges/histograms from the engine.
	// Defaults to a fresh registry private to this Engine if nil.
	Metrics *metrics.Registry
}

// DefaultOptions returns the spec.md §6 default configuration.
func DefaultOptions() Options {
	return Options{
		MaxDocumentSize:             10 << 20,
		MaxPathLength:               1024,
		MemtableFlushThresholdBytes: 4 << 20,
		CompactionSSTCountThreshold: 10,
		TransactionRetryBound:       3,
		RulesMode:                   rules.ModeAllowAll,
		Fsync:                       FsyncPerBatch,
		Compression:                 compression.Zstd,
		FlushOnClose:                true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxDocumentSize <= 0 {
		o.MaxDocumentSize = d.MaxDocumentSize
	}
	if o.MaxPathLength <= 0 {
		o.MaxPathLength = d.MaxPathLength
	}
	if o.MemtableFlushThresholdBytes <= 0 {
		o.MemtableFlushThresholdBytes = d.MemtableFlushThresholdBytes
	}
	if o.CompactionSSTCountThreshold <= 0 {
		o.CompactionSSTCountThreshold = d.CompactionSSTCountThreshold
	}
	if o.TransactionRetryBound <= 0 {
		o.TransactionRetryBound = d.TransactionRetryBound
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewRegistry()
	}
	return o
}
