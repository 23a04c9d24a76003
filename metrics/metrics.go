// Package metrics exposes the engine's Prometheus counters and
// histograms, the concrete stand-in for spec.md §1's out-of-scope
// "telemetry/audit logging" collaborator — audit logging of payload
// content is explicitly not done (spec.md §7), so this package carries
// operation counts and durations only, never paths or bytes.
//
// Modeled on cuemby/warren's pkg/metrics package (GaugeVec/CounterVec/
// HistogramVec naming and registration style), but scoped to one
// prometheus.Registry per Engine rather than the global default registerer
// — an embedded library may have many Engine instances alive in the same
// process (tests in particular), and a global registerer would collide on
// the second Open.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric firelocal's engine emits, bound to its own
// prometheus.Registry so multiple Engines can coexist in one process.
type Registry struct {
	reg *prometheus.Registry

	Puts             prometheus.Counter
	Deletes          prometheus.Counter
	BatchCommits     prometheus.Counter
	BatchEntries     prometheus.Counter
	Gets             prometheus.Counter
	GetHits          prometheus.Counter
	PermissionDenied prometheus.Counter

	TxnAttempts  prometheus.Counter
	TxnCommits   prometheus.Counter
	TxnConflicts prometheus.Counter
	TxnRetries   prometheus.Counter

	FlushesTotal       prometheus.Counter
	FlushDuration      prometheus.Histogram
	CompactionsTotal   prometheus.Counter
	CompactionDuration prometheus.Histogram
	TombstonesDropped  prometheus.Counter

	MemtableBytes  prometheus.Gauge
	LiveSSTs       prometheus.Gauge
	ListenerQueues prometheus.GaugeVec
}

// NewRegistry builds a fresh, independently-registered Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		reg: reg,
		Puts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_puts_total", Help: "Total number of Put calls.",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_deletes_total", Help: "Total number of Delete calls.",
		}),
		BatchCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_batch_commits_total", Help: "Total number of committed batches.",
		}),
		BatchEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_batch_entries_total", Help: "Total number of entries across committed batches.",
		}),
		Gets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_gets_total", Help: "Total number of Get calls.",
		}),
		GetHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_get_hits_total", Help: "Total number of Get calls that returned a document.",
		}),
		PermissionDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_permission_denied_total", Help: "Total number of operations denied by the rules gate.",
		}),
		TxnAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_txn_attempts_total", Help: "Total number of transaction body attempts, including retries.",
		}),
		TxnCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_txn_commits_total", Help: "Total number of transactions that committed successfully.",
		}),
		TxnConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_txn_conflicts_total", Help: "Total number of transaction commit validation failures.",
		}),
		TxnRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_txn_retries_total", Help: "Total number of transaction retries after a conflict.",
		}),
		FlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_flushes_total", Help: "Total number of memtable flushes.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "firelocal_flush_duration_seconds", Help: "Duration of memtable flush operations.", Buckets: prometheus.DefBuckets,
		}),
		CompactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_compactions_total", Help: "Total number of compaction runs.",
		}),
		CompactionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "firelocal_compaction_duration_seconds", Help: "Duration of compaction runs.", Buckets: prometheus.DefBuckets,
		}),
		TombstonesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firelocal_tombstones_dropped_total", Help: "Total number of tombstones dropped by compaction.",
		}),
		MemtableBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "firelocal_memtable_bytes", Help: "Current byte charge of the active memtable.",
		}),
		LiveSSTs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "firelocal_live_ssts", Help: "Current number of live SST files.",
		}),
		ListenerQueues: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "firelocal_listener_queue_depth", Help: "Pending events per listener subscription.",
		}, []string{"listener_id"}),
	}

	reg.MustRegister(
		m.Puts, m.Deletes, m.BatchCommits, m.BatchEntries, m.Gets, m.GetHits,
		m.PermissionDenied, m.TxnAttempts, m.TxnCommits, m.TxnConflicts, m.TxnRetries,
		m.FlushesTotal, m.FlushDuration, m.CompactionsTotal, m.CompactionDuration,
		m.TombstonesDropped, m.MemtableBytes, m.LiveSSTs, m.ListenerQueues,
	)
	return m
}

// Handler exposes this registry's metrics in the Prometheus exposition
// format, suitable for mounting under e.g. /metrics in a host process.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
