package store

import (
	"time"

	"github.com/embeddb/firelocal/internal/fieldvalue"
	"github.com/embeddb/firelocal/internal/listener"
	"github.com/embeddb/firelocal/internal/record"
	"github.com/embeddb/firelocal/internal/rules"
)

// Put writes a full document replace at path, resolving any field-value
// sentinels in value against the document's current state (spec.md §4.4
// "Put(path, value)"). It is equivalent to CommitBatch on a single-entry
// Batch.
func (e *Engine) Put(path string, value []byte) error {
	return e.CommitBatch(e.NewBatch().Set(path, value))
}

// Delete removes path (spec.md §4.4 "Delete(path)").
func (e *Engine) Delete(path string) error {
	return e.CommitBatch(e.NewBatch().Delete(path))
}

// checkRules runs the rules gate over every operation in ops before any
// WAL bytes are written (spec.md §4.5 "Validation failure on any entry
// aborts the whole batch before any WAL bytes are written" — the same
// holds for a permission denial).
func (e *Engine) checkRules(ops []batchOp) error {
	for _, op := range ops {
		ruleOp := rules.OpWrite
		if op.kind == opDelete {
			ruleOp = rules.OpDelete
		}
		if err := rules.Check(e.currentRules(), ruleOp, op.path, op.payload, nil); err != nil {
			e.metric.PermissionDenied.Inc()
			return err
		}
	}
	return nil
}

// CommitBatch validates, rules-checks, and durably journals every
// operation in b as one atomic unit, then applies it to the memtable and
// notifies matching listeners (spec.md §4.5, §4.4 steps 1-7). Either every
// entry becomes visible or none does: a crash between the WAL's
// BatchBegin and BatchCommit frames leaves the database as if the batch
// never happened (spec.md §4.1, §8 property 2).
func (e *Engine) CommitBatch(b *Batch) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := b.validate(e.opts); err != nil {
		return err
	}
	if err := e.checkRules(b.ops); err != nil {
		return err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	_, err := e.commitOpsLocked(b.ops)
	return err
}

// commitOpsLocked performs the durable write itself: sequence allocation,
// field-value resolution, WAL append+sync, memtable apply, metrics, and
// listener dispatch. The caller must hold writeMu. It returns the commit
// marker's sequence, the one listeners key visibility ordering off of
// (spec.md §4.1).
func (e *Engine) commitOpsLocked(ops []batchOp) (uint64, error) {
	now := time.Now().UnixMilli()
	v := e.currentView()

	records := make([]record.Record, len(ops))
	startSeq := e.seq.Load() + 1
	for i, op := range ops {
		seq := startSeq + uint64(i)
		switch op.kind {
		case opDelete:
			records[i] = record.Record{Path: op.path, Sequence: seq, Kind: record.KindTombstone}

		case opSet:
			payload := op.payload
			if fieldvalue.Needed(payload) {
				existing, _ := v.get(op.path)
				rewritten, err := fieldvalue.Rewrite(existing.Payload, payload, now)
				if err != nil {
					return 0, err
				}
				payload = rewritten
			}
			if err := validatePayloadSize(payload, e.opts); err != nil {
				return 0, err
			}
			records[i] = record.Record{Path: op.path, Sequence: seq, Kind: record.KindPut, Payload: payload}

		case opUpdate:
			existing, _ := v.get(op.path)
			merged, err := fieldvalue.MergePartial(existing.Payload, op.payload, now)
			if err != nil {
				return 0, err
			}
			if err := validatePayloadSize(merged, e.opts); err != nil {
				return 0, err
			}
			records[i] = record.Record{Path: op.path, Sequence: seq, Kind: record.KindPut, Payload: merged}
		}
	}
	e.seq.Add(uint64(len(records)))

	commitSeq, err := e.walWriter.AppendBatch(startSeq, records)
	if err != nil {
		// I/O failure mid-append: roll the sequence counter back so the
		// next attempt doesn't leave a gap, and leave the memtable
		// untouched (spec.md §4.1 "the memtable is not updated").
		e.seq.Store(startSeq - 1)
		return 0, err
	}
	if err := e.walWriter.Sync(); err != nil {
		e.seq.Store(startSeq - 1)
		return 0, err
	}

	for _, r := range records {
		v.mem.Insert(r)
	}

	changes := make([]listener.Change, len(records))
	for i, r := range records {
		changes[i] = listener.Change{
			Path:    r.Path,
			Deleted: r.Kind == record.KindTombstone,
			Payload: r.Payload,
		}
	}

	if len(records) == 1 {
		if records[0].Kind == record.KindTombstone {
			e.metric.Deletes.Inc()
		} else {
			e.metric.Puts.Inc()
		}
	} else {
		e.metric.BatchCommits.Inc()
		e.metric.BatchEntries.Add(float64(len(records)))
	}
	e.metric.MemtableBytes.Set(float64(v.mem.ByteCharge()))

	if v.mem.ByteCharge() > e.opts.MemtableFlushThresholdBytes {
		if err := e.flushLocked(); err != nil {
			e.log.Error().Err(err).Msg("flush after write threshold failed")
		}
	}

	e.dispatcher.Publish(listener.CommitEvent{Sequence: commitSeq, Changes: changes})
	return commitSeq, nil
}
