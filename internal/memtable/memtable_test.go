package memtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddb/firelocal/internal/record"
)

func TestInsertAndGet(t *testing.T) {
	m := New()
	m.Insert(record.Record{Path: "users/alice", Sequence: 1, Kind: record.KindPut, Payload: []byte("v1")})

	r, ok := m.Get("users/alice")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), r.Payload)

	_, ok = m.Get("users/bob")
	assert.False(t, ok)
}

func TestInsertNewestWins(t *testing.T) {
	m := New()
	m.Insert(record.Record{Path: "x", Sequence: 1, Kind: record.KindPut, Payload: []byte("old")})
	m.Insert(record.Record{Path: "x", Sequence: 2, Kind: record.KindPut, Payload: []byte("new")})

	r, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), r.Payload)
	assert.Equal(t, 1, m.Len())
}

func TestByteChargeAccumulatesAndReplaces(t *testing.T) {
	m := New()
	m.Insert(record.Record{Path: "x", Sequence: 1, Kind: record.KindPut, Payload: []byte("abc")})
	first := m.ByteCharge()
	assert.Positive(t, first)

	m.Insert(record.Record{Path: "x", Sequence: 2, Kind: record.KindPut, Payload: []byte("a")})
	second := m.ByteCharge()
	assert.Less(t, second, first)
}

func TestSeal(t *testing.T) {
	m := New()
	m.Insert(record.Record{Path: "x", Sequence: 1, Kind: record.KindPut})
	assert.False(t, m.Sealed())
	m.Seal()
	assert.True(t, m.Sealed())

	// Reads remain valid after Seal.
	r, ok := m.Get("x")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), r.Sequence)
}

func TestIterSortedOrdering(t *testing.T) {
	m := New()
	for i, p := range []string{"c", "a", "b"} {
		m.Insert(record.Record{Path: p, Sequence: uint64(i + 1), Kind: record.KindPut})
	}
	out := m.IterSorted()
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].Path, out[1].Path, out[2].Path})
}

func TestTombstoneOverwritesPut(t *testing.T) {
	m := New()
	m.Insert(record.Record{Path: "x", Sequence: 1, Kind: record.KindPut, Payload: []byte("v")})
	m.Insert(record.Record{Path: "x", Sequence: 2, Kind: record.KindTombstone})

	r, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, record.KindTombstone, r.Kind)
}
