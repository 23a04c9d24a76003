package sstable

import (
	"math"

	"github.com/zeebo/xxh3"
)

// bloomFilter is a standard double-hashing Bloom filter over document
// paths, letting Get short-circuit a miss without decompressing the data
// region. This is a plain from-scratch implementation, not RocksDB's
// cache-line-local FastLocalBloom (that format exists for bit-compatibility
// with RocksDB readers, which this store has no reason to track).
type bloomFilter struct {
	bits      []byte
	numProbes int
}

const bitsPerKey = 10

func newBloomFilter(numKeys int) *bloomFilterBuilder {
	if numKeys < 1 {
		numKeys = 1
	}
	numBits := numKeys * bitsPerKey
	numProbes := int(math.Round(float64(bitsPerKey) * math.Ln2))
	if numProbes < 1 {
		numProbes = 1
	}
	if numProbes > 30 {
		numProbes = 30
	}
	numBits = (numBits + 7) / 8 * 8
	if numBits < 64 {
		numBits = 64
	}
	return &bloomFilterBuilder{
		bits:      make([]byte, numBits/8),
		numProbes: numProbes,
	}
}

type bloomFilterBuilder struct {
	bits      []byte
	numProbes int
}

func (b *bloomFilterBuilder) add(key string) {
	h := xxh3.HashString(key)
	h1 := uint32(h)
	h2 := uint32(h >> 32)
	nbits := uint32(len(b.bits) * 8)
	for i := 0; i < b.numProbes; i++ {
		bitPos := (h1 + uint32(i)*h2) % nbits
		b.bits[bitPos/8] |= 1 << (bitPos % 8)
	}
}

func (b *bloomFilterBuilder) finish() bloomFilter {
	return bloomFilter{bits: b.bits, numProbes: b.numProbes}
}

// mayContain reports whether key might be present. False means definitely
// absent; true means maybe present (the caller must still consult the
// index/data region).
func (f bloomFilter) mayContain(key string) bool {
	if len(f.bits) == 0 {
		return true
	}
	h := xxh3.HashString(key)
	h1 := uint32(h)
	h2 := uint32(h >> 32)
	nbits := uint32(len(f.bits) * 8)
	for i := 0; i < f.numProbes; i++ {
		bitPos := (h1 + uint32(i)*h2) % nbits
		if f.bits[bitPos/8]&(1<<(bitPos%8)) == 0 {
			return false
		}
	}
	return true
}

func encodeBloom(f bloomFilter) []byte {
	out := make([]byte, 0, len(f.bits)+1)
	out = append(out, byte(f.numProbes))
	out = append(out, f.bits...)
	return out
}

func decodeBloom(data []byte) bloomFilter {
	if len(data) == 0 {
		return bloomFilter{}
	}
	return bloomFilter{numProbes: int(data[0]), bits: data[1:]}
}
