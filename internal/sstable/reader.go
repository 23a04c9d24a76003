package sstable

import (
	"os"
	"sort"
	"sync"

	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/checksum"
	"github.com/embeddb/firelocal/internal/compression"
	"github.com/embeddb/firelocal/internal/encoding"
	"github.com/embeddb/firelocal/internal/record"
)

// indexEntry is one (path, offset) pair from the dense index, kept sorted
// in memory for binary search (spec.md §4.3: "point lookups must be
// sub-linear").
type indexEntry struct {
	path   string
	offset uint64
}

// Reader is an open, validated SST file. Its index and Bloom filter are
// loaded into memory at Open time, after the footer is validated; the
// (decompressed) data region is loaded lazily on first Get or Iter.
type Reader struct {
	path        string
	id          uint64
	compression compression.Type
	index       []indexEntry
	bloom       bloomFilter

	rawHeaderLen       int
	compressedDataSpan [2]int // [start,end) within the file body
	dataOriginalSize   int

	// dataLoad guards the lazy decompression below: Reader is shared across
	// the published view and read concurrently by many goroutines with no
	// external lock (spec.md §5 "many readers"), so the load itself must be
	// synchronized rather than left to race on a plain flag and slice.
	dataLoad sync.Once
	data     []byte // decompressed data region, loaded lazily
	dataErr  error
}

// Open validates the footer and magic of the SST at path and loads its
// index and Bloom filter. id is the SST's manifest id (its file number),
// which grows with each new SST and so orders files by age.
func Open(path string, id uint64) (*Reader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, "sstable: read "+path, err)
	}
	if len(raw) < headerSize+footerSize {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: file too small: "+path, nil)
	}

	footer := raw[len(raw)-footerSize:]
	dataOriginalSize := encoding.DecodeFixed64(footer[0:8])
	bloomOffset := encoding.DecodeFixed64(footer[8:16])
	bloomLength := encoding.DecodeFixed64(footer[16:24])
	indexOffset := encoding.DecodeFixed64(footer[24:32])
	indexLength := encoding.DecodeFixed64(footer[32:40])
	contentHash := encoding.DecodeFixed64(footer[40:48])
	magic := encoding.DecodeFixed64(footer[48:56])

	if magic != magicNumber {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: bad magic: "+path, nil)
	}
	body := raw[:len(raw)-footerSize]
	if checksum.FooterHash64(body) != contentHash {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: footer checksum mismatch: "+path, nil)
	}
	if len(raw) < int(headerSize) || raw[8] != formatVersion {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: unsupported format version: "+path, nil)
	}
	ctype := compression.Type(raw[9])

	if bloomOffset+bloomLength > uint64(len(body)) || indexOffset+indexLength > uint64(len(body)) {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: region out of range: "+path, nil)
	}

	bloom := decodeBloom(raw[bloomOffset : bloomOffset+bloomLength])

	index, err := decodeIndex(raw[indexOffset : indexOffset+indexLength])
	if err != nil {
		return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: corrupt index: "+path, err)
	}

	return &Reader{
		path:               path,
		id:                 id,
		compression:        ctype,
		index:              index,
		bloom:              bloom,
		compressedDataSpan: [2]int{headerSize, int(bloomOffset)},
		dataOriginalSize:   int(dataOriginalSize),
	}, nil
}

func decodeIndex(data []byte) ([]indexEntry, error) {
	var entries []indexEntry
	for len(data) > 0 {
		pathBytes, rest, err := encoding.GetLengthPrefixed(data)
		if err != nil {
			return nil, err
		}
		if len(rest) < 8 {
			return nil, record.ErrMalformed
		}
		offset := encoding.DecodeFixed64(rest[:8])
		entries = append(entries, indexEntry{path: string(pathBytes), offset: offset})
		data = rest[8:]
	}
	return entries, nil
}

func (r *Reader) loadData() ([]byte, error) {
	r.dataLoad.Do(func() {
		raw, err := os.ReadFile(r.path)
		if err != nil {
			r.dataErr = apperrors.New(apperrors.KindIO, "sstable: reload "+r.path, err)
			return
		}
		compressed := raw[r.compressedDataSpan[0]:r.compressedDataSpan[1]]
		data, err := compression.Decompress(r.compression, compressed, r.dataOriginalSize)
		if err != nil {
			r.dataErr = apperrors.New(apperrors.KindCorruptSST, "sstable: decompress "+r.path, err)
			return
		}
		r.data = data
	})
	return r.data, r.dataErr
}

// ID returns the file's identity, used to order SSTs newest-first.
func (r *Reader) ID() uint64 { return r.id }

// Path returns the file's path on disk.
func (r *Reader) Path() string { return r.path }

// Get returns the record for path stored in this SST, if present. Absence
// here means "not in this file", not "deleted" — a tombstone is a valid
// hit (spec.md §4.3 "Newest-wins across SSTs").
func (r *Reader) Get(path string) (record.Record, bool, error) {
	if !r.bloom.mayContain(path) {
		return record.Record{}, false, nil
	}
	i := sort.Search(len(r.index), func(i int) bool { return r.index[i].path >= path })
	if i >= len(r.index) || r.index[i].path != path {
		return record.Record{}, false, nil
	}
	data, err := r.loadData()
	if err != nil {
		return record.Record{}, false, err
	}
	rec, _, err := record.Decode(data[r.index[i].offset:])
	if err != nil {
		return record.Record{}, false, apperrors.New(apperrors.KindCorruptSST, "sstable: decode record: "+r.path, err)
	}
	return rec, true, nil
}

// Iter returns every record in this SST in ascending path order.
func (r *Reader) Iter() ([]record.Record, error) {
	data, err := r.loadData()
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(r.index))
	for _, e := range r.index {
		rec, _, err := record.Decode(data[e.offset:])
		if err != nil {
			return nil, apperrors.New(apperrors.KindCorruptSST, "sstable: decode record: "+r.path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases any in-memory state held by the reader. It is not safe to
// call concurrently with an in-flight Get/Iter on the same Reader.
func (r *Reader) Close() error {
	r.data = nil
	r.dataErr = nil
	r.dataLoad = sync.Once{}
	return nil
}
