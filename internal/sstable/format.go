// Package sstable implements the immutable, sorted, on-disk SST file
// format: header, compressed data region, index region, and footer
// (spec.md §4.3).
//
// Adapted from the teacher's internal/block + internal/table packages:
// the header/footer/magic-number idea and the validate-footer-first open
// path are kept (Open reads the index and Bloom filter eagerly; only the
// data region is loaded lazily), but RocksDB's per-4KB-block chunking,
// restart-point prefix compression, and metaindex/properties blocks are
// dropped — spec.md asks only for "sub-linear point lookups", which a
// single compressed data blob plus a dense in-memory offset index already
// gives without that machinery (see DESIGN.md).
package sstable

import "github.com/embeddb/firelocal/internal/compression"

// magicNumber identifies this file as a firelocal SST. It has no relation
// to any RocksDB/LevelDB magic number.
const magicNumber uint64 = 0x66697265_6c6f6361 // "firelo" + "ca" ascii-ish

// formatVersion allows the on-disk layout to evolve.
const formatVersion uint8 = 1

// headerSize is the fixed-size file header: magic(8) + version(1) +
// compression(1) + reserved(6).
const headerSize = 16

// footerSize is the fixed-size file trailer: dataOriginalSize(8) +
// bloomOffset(8) + bloomLength(8) + indexOffset(8) + indexLength(8) +
// contentHash(8) + magic(8).
const footerSize = 56

// defaultCompression names the codec store.DefaultOptions selects. Write
// takes its codec from the caller and does not read this constant.
const defaultCompression = compression.Zstd
