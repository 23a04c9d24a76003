// Package compression implements the codecs available for SST data
// regions (spec.md does not mandate compression, but an embedded document
// store that never compresses its on-disk tables would be an outlier next
// to every real engine in this domain).
//
// Adapted from the teacher's internal/compression package: the same
// Type-byte-prefixed-block convention and codec selection, trimmed to the
// three codecs this store actually ships (the teacher's zlib/bzip2/xpress
// entries existed only for RocksDB wire compatibility this store does not
// need).
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the compression codec applied to an SST's data region.
type Type uint8

const (
	// None stores the data region uncompressed.
	None Type = 0
	// Snappy uses Google Snappy, favoring speed over ratio.
	Snappy Type = 1
	// LZ4 uses LZ4 block compression.
	LZ4 Type = 2
	// Zstd uses Zstandard, the default: the best ratio/speed tradeoff for
	// document-shaped JSON payloads.
	Zstd Type = 3
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Snappy:
		return "Snappy"
	case LZ4:
		return "LZ4"
	case Zstd:
		return "Zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

var zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
var zstdDecoder, _ = zstd.NewReader(nil)

// Compress encodes data with the codec t.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case None:
		return data, nil
	case Snappy:
		return snappy.Encode(nil, data), nil
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		var c lz4.Compressor
		n, err := c.CompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("compression: lz4 compress: %w", err)
		}
		if n == 0 && len(data) > 0 {
			// Incompressible block: lz4 signals this by writing 0 bytes.
			// Fall back to storing it raw, prefixed so Decompress can tell.
			return append([]byte{0}, data...), nil
		}
		return append([]byte{1}, dst[:n]...), nil
	case Zstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("compression: unsupported type %s", t)
	}
}

// Decompress decodes data that was produced by Compress with codec t.
// originalSize is required for LZ4 block decompression.
func Decompress(t Type, data []byte, originalSize int) ([]byte, error) {
	switch t {
	case None:
		return data, nil
	case Snappy:
		return snappy.Decode(nil, data)
	case LZ4:
		if len(data) == 0 {
			return nil, nil
		}
		if data[0] == 0 {
			return data[1:], nil
		}
		dst := make([]byte, originalSize)
		n, err := lz4.UncompressBlock(data[1:], dst)
		if err != nil {
			return nil, fmt.Errorf("compression: lz4 decompress: %w", err)
		}
		return dst[:n], nil
	case Zstd:
		return zstdDecoder.DecodeAll(data, make([]byte, 0, originalSize))
	default:
		return nil, fmt.Errorf("compression: unsupported type %s", t)
	}
}

// ReadAll reads every byte from r and decodes them with Decompress, for
// callers that hold the compressed bytes as an io.Reader. The SST reader
// does not use it; it calls Decompress on bytes it has already read.
func ReadAll(t Type, r io.Reader, originalSize int) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return Decompress(t, buf.Bytes(), originalSize)
}
