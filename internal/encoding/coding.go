// Package encoding provides the little-endian fixed-width and varint
// primitives shared by the WAL and SST on-disk formats (spec.md §4.1, §4.3:
// "All multi-byte integers are little-endian").
//
// Adapted from the teacher's internal/encoding package, trimmed to the
// subset this store's simpler (non-block-recycled) framing needs.
package encoding

import (
	"encoding/binary"
	"errors"
)

// MaxVarintLen64 is the maximum number of bytes a varint-encoded uint64 can
// occupy.
const MaxVarintLen64 = 10

// ErrVarintTermination is returned when a varint does not terminate within
// the provided buffer.
var ErrVarintTermination = errors.New("encoding: varint not terminated")

// AppendFixed32 appends a little-endian uint32 to dst.
func AppendFixed32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendFixed64 appends a little-endian uint64 to dst.
func AppendFixed64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// DecodeFixed32 decodes a little-endian uint32 from the front of src.
func DecodeFixed32(src []byte) uint32 { return binary.LittleEndian.Uint32(src) }

// DecodeFixed64 decodes a little-endian uint64 from the front of src.
func DecodeFixed64(src []byte) uint64 { return binary.LittleEndian.Uint64(src) }

// AppendVarint64 appends a uint64 as a 7-bit varint to dst.
func AppendVarint64(dst []byte, v uint64) []byte {
	var buf [MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return append(dst, buf[:n]...)
}

// GetVarint64 reads a varint-encoded uint64 from the front of src, returning
// the value and the remaining slice.
func GetVarint64(src []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, nil, ErrVarintTermination
	}
	return v, src[n:], nil
}

// AppendLengthPrefixed appends a varint length followed by the raw bytes.
func AppendLengthPrefixed(dst []byte, b []byte) []byte {
	dst = AppendVarint64(dst, uint64(len(b)))
	return append(dst, b...)
}

// GetLengthPrefixed reads a varint length followed by that many raw bytes
// from the front of src, returning the slice and the remainder.
func GetLengthPrefixed(src []byte) ([]byte, []byte, error) {
	n, rest, err := GetVarint64(src)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, ErrVarintTermination
	}
	return rest[:n], rest[n:], nil
}
