package wal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddb/firelocal/internal/record"
)

func segPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "000001.log")
}

func TestAppendRecordAndReplay(t *testing.T) {
	path := segPath(t)
	w, err := Create(path)
	require.NoError(t, err)

	r1 := record.Record{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("v1")}
	r2 := record.Record{Path: "b", Sequence: 2, Kind: record.KindTombstone}
	require.NoError(t, w.AppendRecord(r1))
	require.NoError(t, w.AppendRecord(r2))
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	var got []record.Record
	goodLength, err := Replay(path, VisitorFunc(func(entries []record.Record) error {
		got = append(got, entries...)
		return nil
	}))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Path)
	assert.Equal(t, "b", got[1].Path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), goodLength)
}

func TestAppendBatchIsOneAtomicGroup(t *testing.T) {
	path := segPath(t)
	w, err := Create(path)
	require.NoError(t, err)

	entries := []record.Record{
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("1")},
		{Path: "b", Sequence: 2, Kind: record.KindPut, Payload: []byte("2")},
		{Path: "c", Sequence: 3, Kind: record.KindTombstone},
	}
	commitSeq, err := w.AppendBatch(1, entries)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), commitSeq)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	var groups [][]record.Record
	_, err = Replay(path, VisitorFunc(func(group []record.Record) error {
		groups = append(groups, group)
		return nil
	}))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 3)
}

func TestReplayDiscardsTornBatch(t *testing.T) {
	path := segPath(t)
	w, err := Create(path)
	require.NoError(t, err)

	entries := []record.Record{
		{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("1")},
		{Path: "b", Sequence: 2, Kind: record.KindPut, Payload: []byte("2")},
	}
	_, err = w.AppendBatch(1, entries)
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	// Truncate off the final commit frame to simulate a crash mid-batch.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.Truncate(path, info.Size()-4))

	var got []record.Record
	goodLength, err := Replay(path, VisitorFunc(func(group []record.Record) error {
		got = append(got, group...)
		return nil
	}))
	require.NoError(t, err)
	assert.Empty(t, got, "torn batch must never be delivered")
	require.NoError(t, Truncate(path, goodLength))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, goodLength, stat.Size())
}

func TestOpenForAppendContinuesSameFile(t *testing.T) {
	path := segPath(t)
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.AppendRecord(record.Record{Path: "a", Sequence: 1, Kind: record.KindPut, Payload: []byte("1")}))
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	w2, err := OpenForAppend(path)
	require.NoError(t, err)
	require.NoError(t, w2.AppendRecord(record.Record{Path: "b", Sequence: 2, Kind: record.KindPut, Payload: []byte("2")}))
	require.NoError(t, w2.Sync())
	require.NoError(t, w2.Close())

	var got []record.Record
	_, err = Replay(path, VisitorFunc(func(group []record.Record) error {
		got = append(got, group...)
		return nil
	}))
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestReplayMissingSegmentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")
	goodLength, err := Replay(path, VisitorFunc(func([]record.Record) error { return nil }))
	require.NoError(t, err)
	assert.Zero(t, goodLength)
}
