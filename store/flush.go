package store

import (
	"os"
	"sort"
	"time"

	"github.com/embeddb/firelocal/internal/compaction"
	"github.com/embeddb/firelocal/internal/memtable"
	"github.com/embeddb/firelocal/internal/sstable"
	"github.com/embeddb/firelocal/internal/wal"
)

// Flush forces the active memtable to seal and materialize into a new SST,
// even if it has not yet crossed the flush threshold (spec.md §6
// "flush()"). Callers normally never need this; writes trigger it
// automatically.
func (e *Engine) Flush() error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if e.currentView().mem.Len() == 0 {
		return nil
	}
	return e.flushLocked()
}

// flushLocked implements spec.md §4.4 "Flush": seal the memtable, write a
// new SST in path order, publish the manifest, then rotate the WAL and
// delete the retired segment. Every publish step is atomic with respect to
// crash (manifest.Save already does temp+fsync+rename).
func (e *Engine) flushLocked() error {
	start := time.Now()
	v := e.currentView()
	v.mem.Seal()

	records := v.mem.IterSorted()
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	newSSTs := v.ssts
	if len(records) > 0 {
		sstID := e.nextSSTID
		e.nextSSTID++

		if err := sstable.Write(e.sstPath(sstID), records, e.opts.Compression); err != nil {
			e.nextSSTID--
			return err
		}
		newReader, err := sstable.Open(e.sstPath(sstID), sstID)
		if err != nil {
			return err
		}
		newSSTs = append([]*sstable.Reader{newReader}, v.ssts...)
	}

	oldWALPath := e.walSegmentPath(e.walSegmentID)
	newSegmentID := e.nextWALSegmentID
	e.nextWALSegmentID++
	newWriter, err := wal.Create(e.walSegmentPath(newSegmentID))
	if err != nil {
		return err
	}

	nextView := &view{mem: memtable.New(), sealed: nil, ssts: newSSTs}
	e.viewPtr.Store(nextView)

	if err := e.walWriter.Close(); err != nil {
		return err
	}
	e.walWriter = newWriter
	e.walSegmentID = newSegmentID

	if err := e.publishManifest(); err != nil {
		return err
	}
	_ = removeFile(oldWALPath)

	e.metric.FlushesTotal.Inc()
	e.metric.FlushDuration.Observe(time.Since(start).Seconds())
	e.metric.LiveSSTs.Set(float64(len(newSSTs)))
	e.metric.MemtableBytes.Set(0)
	e.log.Info().Int("entries", len(records)).Int("live_ssts", len(newSSTs)).Msg("flushed memtable")
	return nil
}

// Compact merges the live SST set into one, dropping shadowed records and
// every tombstone (dominance is trivial when the whole set is merged at
// once, spec.md §4.4). It reports stats or an I/O error, and leaves the
// prior view intact on failure (spec.md §7 "I/O errors during compaction
// leave the prior view intact").
func (e *Engine) Compact() (compaction.Stats, error) {
	if e.closed.Load() {
		return compaction.Stats{}, ErrClosed
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	v := e.currentView()
	if len(v.ssts) == 0 {
		return compaction.Stats{}, nil
	}

	sources := make([]compaction.Source, len(v.ssts))
	for i, s := range v.ssts {
		sources[i] = s
	}

	merged, stats, err := compaction.Merge(sources)
	if err != nil {
		return compaction.Stats{}, err
	}

	newID := e.nextSSTID
	e.nextSSTID++

	var newSSTs []*sstable.Reader
	if len(merged) > 0 {
		if err := sstable.Write(e.sstPath(newID), merged, e.opts.Compression); err != nil {
			e.nextSSTID--
			return compaction.Stats{}, err
		}
		reader, err := sstable.Open(e.sstPath(newID), newID)
		if err != nil {
			return compaction.Stats{}, err
		}
		newSSTs = []*sstable.Reader{reader}
	}

	oldSSTs := v.ssts
	nextView := &view{mem: v.mem, sealed: v.sealed, ssts: newSSTs}
	e.viewPtr.Store(nextView)

	if err := e.publishManifest(); err != nil {
		e.viewPtr.Store(v)
		return compaction.Stats{}, err
	}
	for _, old := range oldSSTs {
		path := old.Path()
		_ = old.Close()
		_ = removeFile(path)
	}

	e.metric.CompactionsTotal.Inc()
	e.metric.CompactionDuration.Observe(time.Since(start).Seconds())
	e.metric.TombstonesDropped.Add(float64(stats.TombstonesRemoved))
	e.metric.LiveSSTs.Set(float64(len(newSSTs)))
	e.log.Info().
		Int("files_before", stats.FilesBefore).
		Int("files_after", len(newSSTs)).
		Int("tombstones_removed", stats.TombstonesRemoved).
		Msg("compaction complete")

	stats.FilesAfter = len(newSSTs)
	return stats, nil
}

// MaybeCompact runs Compact if the live SST count exceeds the configured
// threshold, and is a no-op otherwise (spec.md §4.4 "merge when the SST
// count exceeds a threshold"). CommitBatch does not call this
// automatically, keeping every write's latency independent of the live
// SST count; threshold compaction happens only when a caller invokes
// MaybeCompact.
func (e *Engine) MaybeCompact() (compaction.Stats, error) {
	if !compaction.ShouldCompact(e.currentView().liveSSTCount(), e.opts.CompactionSSTCountThreshold) {
		return compaction.Stats{}, nil
	}
	return e.Compact()
}

func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
