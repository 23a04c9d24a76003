// Package wal implements the write-ahead log: a durable, append-only
// journal of mutations framed so a torn tail is detectable and truncatable
// (spec.md §4.1).
//
// Unlike the teacher's RocksDB-compatible 32KB block-recycling format, this
// store's WAL framing follows spec.md directly: each physical frame is a
// length prefix, a masked CRC32C of the frame's payload, and the payload
// itself (a single record or a batch marker). The writer/reader split, the
// CRC32C pipeline, and the "stop at first bad frame, discard the tail"
// recovery idiom are kept from the teacher.
package wal

// frameType tags what a WAL payload carries.
type frameType uint8

const (
	// frameRecord carries a single record.Record (used for bare puts and
	// deletes outside of an explicit batch).
	frameRecord frameType = 1
	// frameBatchBegin opens an atomic group of n contiguous-sequence
	// records starting at startSeq.
	frameBatchBegin frameType = 2
	// frameBatchCommit closes the most recently opened batch; its Sequence
	// equals the last entry's sequence and is what listener/visibility
	// ordering keys off of (spec.md §4.1).
	frameBatchCommit frameType = 3
)

// lengthPrefixSize is the size, in bytes, of the physical frame's length
// field.
const lengthPrefixSize = 4

// crcSize is the size, in bytes, of the physical frame's checksum field.
const crcSize = 4

// frameHeaderSize is the total fixed overhead of a physical frame, before
// its variable-length payload.
const frameHeaderSize = lengthPrefixSize + crcSize

// maxFramePayload bounds a single frame to protect against a corrupt length
// field causing an unbounded allocation during replay.
const maxFramePayload = 256 << 20 // 256 MiB, well above the document size ceiling

// batchBeginPayload is the decoded form of a frameBatchBegin payload.
type batchBeginPayload struct {
	Count    uint32
	StartSeq uint64
}

// batchCommitPayload is the decoded form of a frameBatchCommit payload.
type batchCommitPayload struct {
	CommitSeq uint64
}
