package wal

import (
	"fmt"
	"os"

	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/checksum"
	"github.com/embeddb/firelocal/internal/encoding"
	"github.com/embeddb/firelocal/internal/record"
)

// Writer appends framed records to a single WAL segment file and fsyncs on
// demand. A Writer is not safe for concurrent use; the engine serializes all
// writes through its single writer mutex (spec.md §5).
type Writer struct {
	f    *os.File
	path string
}

// Create opens path for exclusive append, creating it (and truncating any
// existing content) for a brand new segment.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, "create wal segment "+path, err)
	}
	return &Writer{f: f, path: path}, nil
}

// OpenForAppend opens an existing segment positioned at its end, used
// after recovery has already replayed and truncated it so further writes
// continue the same file rather than overwriting it.
func OpenForAppend(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, "open wal segment "+path, err)
	}
	return &Writer{f: f, path: path}, nil
}

// Path returns the segment's file path.
func (w *Writer) Path() string { return w.path }

func (w *Writer) writeFrame(t frameType, payload []byte) error {
	buf := make([]byte, 0, frameHeaderSize+1+len(payload))
	body := append([]byte{byte(t)}, payload...)

	crc := checksum.MaskedValue(body)
	buf = encoding.AppendFixed32(buf, uint32(len(body)))
	buf = encoding.AppendFixed32(buf, crc)
	buf = append(buf, body...)

	if _, err := w.f.Write(buf); err != nil {
		return apperrors.New(apperrors.KindIO, "wal append", err)
	}
	return nil
}

// AppendRecord journals a single record outside of any batch grouping. The
// engine always routes live writes, including single Put/Delete calls,
// through AppendBatch (spec.md §4.4 step 4); AppendRecord exists as the
// lower-level framing primitive AppendBatch is built on.
func (w *Writer) AppendRecord(r record.Record) error {
	return w.writeFrame(frameRecord, record.Encode(nil, r))
}

// AppendBatch journals entries as one atomic BatchBegin/.../BatchCommit
// unit with contiguous sequence numbers starting at startSeq (spec.md
// §4.1, §4.5). The commit marker's sequence is startSeq+len(entries)-1.
func (w *Writer) AppendBatch(startSeq uint64, entries []record.Record) (commitSeq uint64, err error) {
	if len(entries) == 0 {
		return 0, apperrors.New(apperrors.KindInvalidBatch, "empty batch", nil)
	}

	beginPayload := encoding.AppendVarint64(nil, uint64(len(entries)))
	beginPayload = encoding.AppendVarint64(beginPayload, startSeq)
	if err := w.writeFrame(frameBatchBegin, beginPayload); err != nil {
		return 0, err
	}

	for i, e := range entries {
		wantSeq := startSeq + uint64(i)
		if e.Sequence != wantSeq {
			return 0, apperrors.New(apperrors.KindInvalidBatch,
				fmt.Sprintf("non-contiguous sequence at entry %d", i), nil)
		}
		if err := w.writeFrame(frameRecord, record.Encode(nil, e)); err != nil {
			return 0, err
		}
	}

	commitSeq = startSeq + uint64(len(entries)) - 1
	commitPayload := encoding.AppendVarint64(nil, commitSeq)
	if err := w.writeFrame(frameBatchCommit, commitPayload); err != nil {
		return 0, err
	}
	return commitSeq, nil
}

// Sync flushes the segment to durable storage. A successful Append is only
// durable once Sync has also returned successfully (spec.md §4.1
// "Guarantees").
func (w *Writer) Sync() error {
	if err := w.f.Sync(); err != nil {
		return apperrors.New(apperrors.KindIO, "wal fsync", err)
	}
	return nil
}

// Close closes the underlying file without removing it.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Size reports the current size of the segment.
func (w *Writer) Size() (int64, error) {
	info, err := w.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
