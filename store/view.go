package store

import (
	"github.com/embeddb/firelocal/internal/memtable"
	"github.com/embeddb/firelocal/internal/record"
	"github.com/embeddb/firelocal/internal/sstable"
)

// view is the immutable snapshot a reader samples once per operation:
// the active memtable, any sealed-pending-flush memtables (newest first),
// and the live SSTs (newest first) — spec.md §5 "View publication". It is
// replaced wholesale under the writer mutex after each flush/compaction;
// readers never see a partially updated view (spec.md §5 "The view is
// replaced wholesale ... readers sample it once per operation").
type view struct {
	mem    *memtable.Memtable
	sealed []*memtable.Memtable
	ssts   []*sstable.Reader
}

// get implements spec.md §4.4 "Get(path)": memtable, then sealed
// memtables newest first, then SSTs newest first; a tombstone encountered
// anywhere terminates the search with "absent".
func (v *view) get(path string) (record.Record, bool) {
	if r, ok := v.mem.Get(path); ok {
		return r, r.Kind != record.KindTombstone
	}
	for _, sealed := range v.sealed {
		if r, ok := sealed.Get(path); ok {
			return r, r.Kind != record.KindTombstone
		}
	}
	for _, sst := range v.ssts {
		r, ok, err := sst.Get(path)
		if err != nil {
			continue // corrupt SST read: treat as a miss in this table, keep searching
		}
		if ok {
			return r, r.Kind != record.KindTombstone
		}
	}
	return record.Record{}, false
}

// version returns the latest sequence number recorded anywhere for path,
// or 0 if the path has never been written — spec.md §3 "Document
// version": "equals the sequence number of its latest mutation (0 if
// never written). Deleted documents retain the version of their
// tombstone."
func (v *view) version(path string) uint64 {
	if r, ok := v.mem.Get(path); ok {
		return r.Sequence
	}
	for _, sealed := range v.sealed {
		if r, ok := sealed.Get(path); ok {
			return r.Sequence
		}
	}
	for _, sst := range v.ssts {
		if r, ok, err := sst.Get(path); err == nil && ok {
			return r.Sequence
		}
	}
	return 0
}

// liveSSTCount reports how many SSTs back this view, used for the
// compaction count-threshold trigger (spec.md §4.4).
func (v *view) liveSSTCount() int { return len(v.ssts) }
