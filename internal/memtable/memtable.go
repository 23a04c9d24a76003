package memtable

import (
	"sync"
	"sync/atomic"

	"github.com/embeddb/firelocal/internal/record"
)

// storedRecord is the value held at each skip list node.
type storedRecord struct {
	rec    record.Record
	charge int
}

func chargeOf(r record.Record) int {
	// Path + payload bytes plus a fixed per-entry overhead for the
	// sequence/kind/pointer bookkeeping, so an all-tombstone memtable
	// still accumulates charge and eventually flushes.
	const overhead = 48
	return len(r.Path) + len(r.Payload) + overhead
}

// Memtable is the in-memory ordered map of the newest mutation per path
// (spec.md §4.2). Inserts must already arrive in non-decreasing sequence
// order (as produced by the WAL); for a given path, the newest insert wins.
type Memtable struct {
	mu     sync.RWMutex
	list   *skipList
	charge atomic.Int64
	sealed atomic.Bool
}

// New creates an empty, writable Memtable.
func New() *Memtable {
	return &Memtable{list: newSkipList()}
}

// Insert applies r, replacing any existing entry for r.Path. The caller
// (the engine, under its write mutex) guarantees r.Sequence is newer than
// whatever is currently stored.
func (m *Memtable) Insert(r record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.list.Upsert(r.Path)
	prev := node.value.Load()
	if prev != nil {
		m.charge.Add(int64(-prev.charge))
	}
	next := &storedRecord{rec: r, charge: chargeOf(r)}
	node.value.Store(next)
	m.charge.Add(int64(next.charge))
}

// Get returns the newest record for path, if any.
func (m *Memtable) Get(path string) (record.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node := m.list.Get(path)
	if node == nil {
		return record.Record{}, false
	}
	sr := node.value.Load()
	if sr == nil {
		return record.Record{}, false
	}
	return sr.rec, true
}

// ByteCharge returns the total estimated byte cost of the memtable's
// contents, used to trigger a flush (spec.md §4.2, §4.4).
func (m *Memtable) ByteCharge() int64 {
	return m.charge.Load()
}

// Seal freezes the memtable: subsequent callers must not Insert into it.
// Reads remain valid (spec.md §4.2 "sealed memtable is read-only").
func (m *Memtable) Seal() {
	m.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (m *Memtable) Sealed() bool {
	return m.sealed.Load()
}

// IterSorted returns every stored record in ascending path order.
func (m *Memtable) IterSorted() []record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []record.Record
	it := m.list.Iterator()
	for n := it.Next(); n != nil; n = it.Next() {
		if sr := n.value.Load(); sr != nil {
			out = append(out, sr.rec)
		}
	}
	return out
}

// Len returns the number of distinct paths currently stored.
func (m *Memtable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.count
}
