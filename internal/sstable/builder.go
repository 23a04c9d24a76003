package sstable

import (
	"os"
	"sort"

	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/checksum"
	"github.com/embeddb/firelocal/internal/compression"
	"github.com/embeddb/firelocal/internal/encoding"
	"github.com/embeddb/firelocal/internal/record"
)

// Write builds an SST at path from records, which must already be sorted
// by Path ascending (the engine sorts the sealed memtable before calling
// Write). The file is constructed under a temporary name and published via
// flush+rename so a reader never observes a partial file (spec.md §4.3
// "write(sorted_records) → file ... calls flush+rename to publish
// atomically").
func Write(path string, records []record.Record, ctype compression.Type) error {
	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].Path < records[j].Path }) {
		return apperrors.New(apperrors.KindIO, "sstable: records not sorted by path", nil)
	}

	var rawData []byte
	index := newBloomFilter(len(records))
	offsets := make([]byte, 0, len(records)*16)
	for _, r := range records {
		offset := uint64(len(rawData))
		rawData = record.Encode(rawData, r)
		index.add(r.Path)
		offsets = encoding.AppendLengthPrefixed(offsets, []byte(r.Path))
		offsets = encoding.AppendFixed64(offsets, offset)
	}
	bloomBytes := encodeBloom(index.finish())

	compressedData, err := compression.Compress(ctype, rawData)
	if err != nil {
		return apperrors.New(apperrors.KindIO, "sstable: compress data region", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return apperrors.New(apperrors.KindIO, "sstable: create "+tmpPath, err)
	}
	defer os.Remove(tmpPath) // no-op once renamed

	var header []byte
	header = encoding.AppendFixed64(header, magicNumber)
	header = append(header, formatVersion, byte(ctype))
	header = append(header, make([]byte, headerSize-len(header))...)

	body := make([]byte, 0, len(header)+len(compressedData)+len(bloomBytes)+len(offsets))
	body = append(body, header...)
	body = append(body, compressedData...)
	bloomOffset := len(body)
	body = append(body, bloomBytes...)
	indexOffset := len(body)
	body = append(body, offsets...)

	contentHash := checksum.FooterHash64(body)

	var footer []byte
	footer = encoding.AppendFixed64(footer, uint64(len(rawData)))
	footer = encoding.AppendFixed64(footer, uint64(bloomOffset))
	footer = encoding.AppendFixed64(footer, uint64(len(bloomBytes)))
	footer = encoding.AppendFixed64(footer, uint64(indexOffset))
	footer = encoding.AppendFixed64(footer, uint64(len(offsets)))
	footer = encoding.AppendFixed64(footer, contentHash)
	footer = encoding.AppendFixed64(footer, magicNumber)

	body = append(body, footer...)

	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return apperrors.New(apperrors.KindIO, "sstable: write "+tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return apperrors.New(apperrors.KindIO, "sstable: fsync "+tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.New(apperrors.KindIO, "sstable: close "+tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.New(apperrors.KindIO, "sstable: publish "+path, err)
	}
	return nil
}
