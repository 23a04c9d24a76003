// Package manifest implements the small durable record identifying the
// engine's currently-live SSTs, WAL segment, and sequence watermark
// (spec.md §4.4, §6 directory layout).
//
// Adapted from the teacher's internal/manifest/version_edit.go idea of an
// edit log describing additions/removals, collapsed to spec.md's "simple
// list of live SST ids" — there is no leveled version set here, since
// compaction in this store is single-tier (see DESIGN.md).
package manifest

import (
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/embeddb/firelocal/internal/apperrors"
)

// Manifest is the durable description of the engine's current view.
type Manifest struct {
	// LiveSSTIDs lists the ids of every SST currently referenced, ordered
	// oldest first (so NewestFirst() below is a simple reverse).
	LiveSSTIDs []uint64 `json:"live_sst_ids"`
	// NextSSTID is the id to assign to the next flush/compaction output.
	NextSSTID uint64 `json:"next_sst_id"`
	// WALSegmentID names the current WAL segment (wal/<id>.log).
	WALSegmentID uint64 `json:"wal_segment_id"`
	// NextWALSegmentID is the id to assign on the next rotate().
	NextWALSegmentID uint64 `json:"next_wal_segment_id"`
	// SequenceWatermark is the highest sequence number ever assigned.
	SequenceWatermark uint64 `json:"sequence_watermark"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const fileName = "MANIFEST"
const tmpFileName = "MANIFEST.tmp"

// Empty returns the manifest for a freshly initialized, empty directory
// (spec.md §8 "Opening an empty directory produces an empty engine with
// sequence 0").
func Empty() Manifest {
	return Manifest{WALSegmentID: 1, NextWALSegmentID: 2, NextSSTID: 1}
}

// Load reads the manifest from dir, returning Empty() if none exists yet
// (spec.md §4.4 "If absent, treat the directory as empty").
func Load(dir string) (Manifest, error) {
	path := dir + string(os.PathSeparator) + fileName
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Manifest{}, apperrors.New(apperrors.KindIO, "manifest: read "+path, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, apperrors.New(apperrors.KindCorruptManifest, "manifest: parse "+path, err)
	}
	return m, nil
}

// Save publishes m atomically: write MANIFEST.tmp, fsync, rename over
// MANIFEST (spec.md §4.4 "write new manifest to a temp name, fsync,
// rename").
func Save(dir string, m Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return apperrors.New(apperrors.KindIO, "manifest: encode", err)
	}

	tmpPath := dir + string(os.PathSeparator) + tmpFileName
	finalPath := dir + string(os.PathSeparator) + fileName

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return apperrors.New(apperrors.KindIO, "manifest: create "+tmpPath, err)
	}
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return apperrors.New(apperrors.KindIO, "manifest: write "+tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return apperrors.New(apperrors.KindIO, "manifest: fsync "+tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.New(apperrors.KindIO, "manifest: close "+tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return apperrors.New(apperrors.KindIO, "manifest: publish "+finalPath, err)
	}
	return nil
}

// NewestFirst returns LiveSSTIDs in newest-first order, the traversal order
// spec.md §4.3/§4.4 requires for point lookups.
func (m Manifest) NewestFirst() []uint64 {
	out := make([]uint64, len(m.LiveSSTIDs))
	for i, id := range m.LiveSSTIDs {
		out[len(out)-1-i] = id
	}
	return out
}
