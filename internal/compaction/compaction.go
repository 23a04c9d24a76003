// Package compaction implements background merging of SSTs, dropping
// shadowed records and tombstones whose dominance is guaranteed (spec.md
// §4.4).
//
// Policy (an explicit implementer choice; spec.md §9 leaves it open and
// §8's properties do not depend on which one is picked): this store always
// compacts its entire live SST set in one pass rather than RocksDB's
// leveled/universal/FIFO per-level pickers (adapted down from the
// teacher's internal/compaction package). Compacting the whole set at once
// means every tombstone's dominance is trivially guaranteed — there is
// never an "older SST outside the merge set" left behind — so the merge
// step can simply drop every tombstone it sees.
package compaction

import (
	"sort"

	"github.com/embeddb/firelocal/internal/record"
)

// Source is anything compaction can read records from, newest-first within
// itself not required — Merge only needs every record, and resolves
// newest-wins by visiting sources in the given (newest-first) order.
type Source interface {
	ID() uint64
	Iter() ([]record.Record, error)
}

// Stats reports the effect of a compaction (spec.md §4.4 "Report stats").
type Stats struct {
	FilesBefore      int
	FilesAfter       int
	EntriesBefore    int
	EntriesAfter     int
	TombstonesRemoved int
	BytesBefore      int64
	BytesAfter       int64
}

// ShouldCompact applies the count-threshold trigger policy: compact once
// the number of live SSTs exceeds threshold.
func ShouldCompact(liveCount, threshold int) bool {
	return liveCount > threshold
}

// Merge reads every record from sources (given newest-first, i.e.
// sources[0] is the most recently published SST) and returns the
// path-sorted survivors: for each path, only the newest record, and no
// tombstones (since compacting the whole live set makes every tombstone's
// dominance trivial).
func Merge(sources []Source) ([]record.Record, Stats, error) {
	var stats Stats
	stats.FilesBefore = len(sources)

	newest := make(map[string]record.Record)
	for _, src := range sources {
		recs, err := src.Iter()
		if err != nil {
			return nil, Stats{}, err
		}
		stats.EntriesBefore += len(recs)
		for _, r := range recs {
			stats.BytesBefore += int64(len(r.Path) + len(r.Payload))
			if existing, ok := newest[r.Path]; !ok || r.Sequence > existing.Sequence {
				newest[r.Path] = r
			}
		}
	}

	out := make([]record.Record, 0, len(newest))
	for _, r := range newest {
		if r.Kind == record.KindTombstone {
			stats.TombstonesRemoved++
			continue
		}
		out = append(out, r)
		stats.BytesAfter += int64(len(r.Path) + len(r.Payload))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	stats.EntriesAfter = len(out)
	stats.FilesAfter = 0
	if len(out) > 0 {
		stats.FilesAfter = 1
	}
	return out, stats, nil
}
