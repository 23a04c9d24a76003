// Package store is the public API the core exposes (spec.md §6): Open,
// Get, Put, Delete, Batch/CommitBatch, RunTransaction, LoadRules, Compact,
// Flush, Listen/Unlisten. It composes internal/wal, internal/memtable,
// internal/sstable, internal/manifest, internal/compaction,
// internal/listener, internal/fieldvalue, and internal/rules into one
// consistent, crash-recoverable view (spec.md §4.4).
package store

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/listener"
	"github.com/embeddb/firelocal/internal/manifest"
	"github.com/embeddb/firelocal/internal/memtable"
	"github.com/embeddb/firelocal/internal/record"
	"github.com/embeddb/firelocal/internal/rules"
	"github.com/embeddb/firelocal/internal/sstable"
	"github.com/embeddb/firelocal/internal/vfs"
	"github.com/embeddb/firelocal/internal/wal"
	"github.com/embeddb/firelocal/logging"
	"github.com/embeddb/firelocal/metrics"
)

const (
	lockFileName = "LOCK"
	walDirName   = "wal"
	sstDirName   = "sst"
)

// Engine is an opened document store directory. Engine is safe for
// concurrent use by many goroutines: reads sample a published view, and
// writes are serialized through a single internal writer mutex (spec.md
// §5 "Single logical writer per process ... plus many readers").
type Engine struct {
	dir    string
	opts   Options
	lock   io.Closer
	log    *logging.Logger
	metric *metrics.Registry

	writeMu sync.Mutex // the single logical writer, spec.md §5

	seq              atomic.Uint64 // highest sequence ever assigned
	walSegmentID     uint64
	nextWALSegmentID uint64
	nextSSTID        uint64
	walWriter        *wal.Writer

	viewPtr atomic.Pointer[view]

	dispatcher *listener.Dispatcher

	rulesMu sync.RWMutex
	rules   rules.Evaluator

	closed atomic.Bool
}

// Open acquires the directory lock, recovers state from the manifest and
// WAL, and returns a ready Engine (spec.md §4.4 "Open / recovery").
func Open(dir string, opts Options) (*Engine, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.New(apperrors.KindIO, "create data directory "+dir, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, walDirName), 0o755); err != nil {
		return nil, apperrors.New(apperrors.KindIO, "create wal directory", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, sstDirName), 0o755); err != nil {
		return nil, apperrors.New(apperrors.KindIO, "create sst directory", err)
	}

	lock, err := vfs.Lock(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		dir:        dir,
		opts:       opts,
		lock:       lock,
		log:        opts.Logger.Component("engine"),
		metric:     opts.Metrics,
		dispatcher: listener.New(),
		rules:      rules.StockEvaluator(opts.RulesMode),
	}

	if err := e.recover(); err != nil {
		_ = lock.Close()
		return nil, err
	}

	e.log.Info().Str("dir", dir).Uint64("sequence", e.seq.Load()).Msg("engine opened")
	return e, nil
}

func (e *Engine) walSegmentPath(id uint64) string {
	return filepath.Join(e.dir, walDirName, strconv.FormatUint(id, 10)+".log")
}

func (e *Engine) sstPath(id uint64) string {
	return filepath.Join(e.dir, sstDirName, strconv.FormatUint(id, 10)+".sst")
}

// recover implements spec.md §4.4 steps 2-4: load the manifest, replay the
// current WAL segment into a fresh memtable advancing the sequence
// counter, and open readers for every live SST.
func (e *Engine) recover() error {
	m, err := manifest.Load(e.dir)
	if err != nil {
		return err
	}

	mem := memtable.New()
	segPath := e.walSegmentPath(m.WALSegmentID)
	goodLength, err := wal.Replay(segPath, wal.VisitorFunc(func(entries []record.Record) error {
		for _, r := range entries {
			mem.Insert(r)
			if r.Sequence > m.SequenceWatermark {
				m.SequenceWatermark = r.Sequence
			}
		}
		return nil
	}))
	if err != nil {
		return err
	}
	// Truncate any torn tail left by a crash mid-append (spec.md §4.1
	// "Torn tail on replay: truncate").
	if err := wal.Truncate(segPath, goodLength); err != nil {
		return err
	}

	writer, err := e.openWALForAppend(segPath)
	if err != nil {
		return err
	}
	e.walWriter = writer
	e.walSegmentID = m.WALSegmentID
	e.nextWALSegmentID = m.NextWALSegmentID
	e.nextSSTID = m.NextSSTID
	e.seq.Store(m.SequenceWatermark)

	ssts := make([]*sstable.Reader, 0, len(m.NewestFirst()))
	for _, id := range m.NewestFirst() {
		r, err := sstable.Open(e.sstPath(id), id)
		if err != nil {
			return err
		}
		ssts = append(ssts, r)
	}

	e.viewPtr.Store(&view{mem: mem, ssts: ssts})
	return nil
}

// openWALForAppend opens the segment for appending further records after
// recovery, without truncating what replay already validated.
func (e *Engine) openWALForAppend(path string) (*wal.Writer, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return wal.Create(path)
		}
		return nil, apperrors.New(apperrors.KindIO, "stat wal segment "+path, err)
	}
	return wal.OpenForAppend(path)
}

func (e *Engine) currentView() *view {
	return e.viewPtr.Load()
}

func (e *Engine) nextSequence() uint64 {
	return e.seq.Add(1)
}

func (e *Engine) publishManifest() error {
	v := e.currentView()
	ids := make([]uint64, len(v.ssts))
	for i, s := range v.ssts {
		ids[len(v.ssts)-1-i] = s.ID() // ssts are stored newest-first; manifest wants oldest-first
	}
	m := manifest.Manifest{
		LiveSSTIDs:        ids,
		NextSSTID:         e.nextSSTID,
		WALSegmentID:      e.walSegmentID,
		NextWALSegmentID:  e.nextWALSegmentID,
		SequenceWatermark: e.seq.Load(),
	}
	return manifest.Save(e.dir, m)
}

// Get retrieves the payload for path, or reports absence for a missing or
// tombstoned document (spec.md §6 "get(path)").
func (e *Engine) Get(path string) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := validatePath(path, e.opts); err != nil {
		return nil, err
	}
	e.metric.Gets.Inc()

	if err := rules.Check(e.currentRules(), rules.OpRead, path, nil, nil); err != nil {
		e.metric.PermissionDenied.Inc()
		return nil, err
	}

	r, ok := e.currentView().get(path)
	if !ok {
		return nil, nil
	}
	e.metric.GetHits.Inc()
	return r.Payload, nil
}

func (e *Engine) currentRules() rules.Evaluator {
	e.rulesMu.RLock()
	defer e.rulesMu.RUnlock()
	return e.rules
}

// LoadRules installs text as the active rule set after validating its
// size (spec.md §4.9, §6 "load_rules(text)"). The rules language itself is
// an external collaborator (spec.md §1); this only wires the gate.
func (e *Engine) LoadRules(text []byte, eval rules.Evaluator) error {
	if err := rules.ValidateRulesText(text); err != nil {
		return err
	}
	if eval == nil {
		return apperrors.New(apperrors.KindInvalidRules, "no evaluator supplied for rules text", nil)
	}
	e.rulesMu.Lock()
	e.rules = eval
	e.rulesMu.Unlock()
	return nil
}

// Listen registers a subscription, returning an id usable with Unlisten
// (spec.md §6 "listen(query, cb) → id", §4.10).
func (e *Engine) Listen(query listener.Query, cb listener.Callback) string {
	return e.dispatcher.Listen(query, cb)
}

// Unlisten removes a subscription (spec.md §6 "unlisten(id)").
func (e *Engine) Unlisten(id string) {
	e.dispatcher.Unlisten(id)
}

// Close flushes the outstanding memtable if configured, stops the
// listener dispatcher, and releases the directory lock (spec.md §4.4
// "Close").
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.writeMu.Lock()
	if e.opts.FlushOnClose && e.currentView().mem.Len() > 0 {
		if err := e.flushLocked(); err != nil {
			e.writeMu.Unlock()
			return err
		}
	}
	walErr := e.walWriter.Close()
	e.writeMu.Unlock()

	e.dispatcher.Close()

	for _, s := range e.currentView().ssts {
		_ = s.Close()
	}

	lockErr := e.lock.Close()
	e.log.Info().Msg("engine closed")

	if walErr != nil {
		return apperrors.New(apperrors.KindIO, "close wal segment", walErr)
	}
	if lockErr != nil {
		return apperrors.New(apperrors.KindIO, "release directory lock", lockErr)
	}
	return nil
}

// Dir returns the directory this Engine was opened against.
func (e *Engine) Dir() string { return e.dir }
