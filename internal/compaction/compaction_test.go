package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddb/firelocal/internal/record"
)

type fakeSource struct {
	id   uint64
	recs []record.Record
}

func (f fakeSource) ID() uint64 { return f.id }

func (f fakeSource) Iter() ([]record.Record, error) { return f.recs, nil }

func TestMergeNewestWinsAcrossSources(t *testing.T) {
	older := fakeSource{id: 1, recs: []record.Record{
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("old")},
	}}
	newer := fakeSource{id: 2, recs: []record.Record{
		{Path: "a", Sequence: 2, Kind: record.KindPut, Payload: []byte("new")},
	}}

	out, stats, err := Merge([]Source{newer, older})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []byte("new"), out[0].Payload)
	assert.Equal(t, 2, stats.FilesBefore)
	assert.Equal(t, 2, stats.EntriesBefore)
	assert.Equal(t, 1, stats.EntriesAfter)
	assert.Equal(t, 1, stats.FilesAfter)
}

func TestMergeDropsTombstones(t *testing.T) {
	src := fakeSource{id: 1, recs: []record.Record{
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("v")},
		{Path: "b", Sequence: 2, Kind: record.KindTombstone},
	}}

	out, stats, err := Merge([]Source{src})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Path)
	assert.Equal(t, 1, stats.TombstonesRemoved)
}

func TestMergeTombstoneShadowsOlderPut(t *testing.T) {
	older := fakeSource{id: 1, recs: []record.Record{
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("v")},
	}}
	newer := fakeSource{id: 2, recs: []record.Record{
		{Path: "a", Sequence: 2, Kind: record.KindTombstone},
	}}

	out, stats, err := Merge([]Source{newer, older})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 1, stats.TombstonesRemoved)
	assert.Equal(t, 0, stats.FilesAfter)
}

func TestMergeOutputIsPathSorted(t *testing.T) {
	src := fakeSource{id: 1, recs: []record.Record{
		{Path: "c", Sequence: 1, Kind: record.KindPut, Payload: []byte("1")},
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("2")},
		{Path: "b", Sequence: 1, Kind: record.KindPut, Payload: []byte("3")},
	}}

	out, _, err := Merge([]Source{src})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].Path, out[1].Path, out[2].Path})
}

func TestMergeEmptySources(t *testing.T) {
	out, stats, err := Merge(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, stats.FilesBefore)
	assert.Equal(t, 0, stats.FilesAfter)
}

func TestShouldCompact(t *testing.T) {
	assert.False(t, ShouldCompact(4, 4))
	assert.True(t, ShouldCompact(5, 4))
	assert.False(t, ShouldCompact(0, 0))
}
