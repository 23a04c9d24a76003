package store

import (
	"github.com/embeddb/firelocal/internal/rules"
)

// readEntry caches one path's observed payload and version for the
// lifetime of a single transaction attempt, so repeat reads of the same
// path within that attempt stay self-consistent (spec.md §4.7 "Begin:
// record current sequence watermark S0" / "Read(path): records the
// observed document's version").
type readEntry struct {
	payload []byte
	version uint64
}

// Tx is the handle a transaction body runs against. It is valid only for
// the duration of a single RunTransaction attempt; do not retain it
// beyond the body function's return (spec.md §4.7).
type Tx struct {
	engine *Engine
	view   *view

	reads  map[string]readEntry
	staged []batchOp
}

// Get reads path, preferring the transaction's own staged writes so a
// body that writes then reads the same path within one attempt observes
// its own write (spec.md §4.7 does not require this, but nothing forbids
// it and it matches what a Firestore-style transaction body expects).
// Every path read from the view (not answered from a staged write) is
// recorded for commit-time validation.
func (t *Tx) Get(path string) ([]byte, error) {
	if err := validatePath(path, t.engine.opts); err != nil {
		return nil, err
	}
	if err := rules.Check(t.engine.currentRules(), rules.OpRead, path, nil, nil); err != nil {
		return nil, err
	}

	for i := len(t.staged) - 1; i >= 0; i-- {
		op := t.staged[i]
		if op.path != path {
			continue
		}
		if op.kind == opDelete {
			return nil, nil
		}
		return op.payload, nil
	}

	if entry, ok := t.reads[path]; ok {
		return entry.payload, nil
	}

	r, found := t.view.get(path)
	entry := readEntry{version: 0}
	if found {
		entry = readEntry{payload: r.Payload, version: r.Sequence}
	}
	t.reads[path] = entry
	return entry.payload, nil
}

// Set stages a full document replace, committed only if the whole
// transaction validates (spec.md §4.7 "Write(path, value)").
func (t *Tx) Set(path string, value []byte) {
	t.staged = append(t.staged, batchOp{kind: opSet, path: path, payload: value})
}

// Update stages a partial merge, committed only if the whole transaction
// validates.
func (t *Tx) Update(path string, partial []byte) {
	t.staged = append(t.staged, batchOp{kind: opUpdate, path: path, payload: partial})
}

// Delete stages a tombstone, committed only if the whole transaction
// validates.
func (t *Tx) Delete(path string) {
	t.staged = append(t.staged, batchOp{kind: opDelete, path: path})
}

// RunTransaction runs body against the engine's current view, retrying on
// a validation conflict up to Options.TransactionRetryBound times (spec.md
// §4.7). Reads within an attempt are not pinned to one sequence number:
// the first read of each path sees the memtable and SSTs as they are at
// that moment, and later reads of the same path in the attempt return that
// cached value. body's own (non-conflict) error abandons the transaction
// immediately without retrying or committing — ErrTxnConflict is
// returned only once every retry is exhausted (spec.md §8 property 6:
// "two concurrent transactions that read overlapping paths — only one
// commits").
//
// Validation happens under the same writer mutex used for the commit
// itself, so there is no window between "read set still matches" and
// "apply the writes" for another writer to slip into.
func (e *Engine) RunTransaction(body func(*Tx) error) error {
	if e.closed.Load() {
		return ErrClosed
	}

	bound := e.opts.TransactionRetryBound
	var lastErr error
	for attempt := 0; attempt <= bound; attempt++ {
		e.metric.TxnAttempts.Inc()
		if attempt > 0 {
			e.metric.TxnRetries.Inc()
		}

		tx := &Tx{
			engine: e,
			view:   e.currentView(),
			reads:  make(map[string]readEntry),
		}

		if err := body(tx); err != nil {
			return err
		}

		committed, err := e.tryCommitTx(tx)
		if err != nil {
			return err
		}
		if committed {
			e.metric.TxnCommits.Inc()
			return nil
		}

		e.metric.TxnConflicts.Inc()
		lastErr = ErrTxnConflict
	}

	if lastErr == nil {
		lastErr = ErrTxnConflict
	}
	return lastErr
}

// tryCommitTx validates tx's read set against the live view and, if it
// still matches, commits its staged writes — all under writeMu so
// validation and commit are one atomic step. It returns committed=false
// (no error) on a plain version conflict, so RunTransaction can retry.
func (e *Engine) tryCommitTx(tx *Tx) (bool, error) {
	if len(tx.staged) == 0 {
		return true, nil
	}
	if err := e.validateStagedOps(tx.staged); err != nil {
		return false, err
	}
	if err := e.checkRules(tx.staged); err != nil {
		return false, err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	v := e.currentView()
	for path, entry := range tx.reads {
		if v.version(path) != entry.version {
			return false, nil
		}
	}

	if _, err := e.commitOpsLocked(tx.staged); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) validateStagedOps(ops []batchOp) error {
	for _, op := range ops {
		if err := validatePath(op.path, e.opts); err != nil {
			return err
		}
		if op.kind != opDelete {
			if err := validatePayloadSize(op.payload, e.opts); err != nil {
				return err
			}
		}
	}
	return nil
}
