package wal

import (
	"errors"
	"io"
	"os"

	"github.com/embeddb/firelocal/internal/apperrors"
	"github.com/embeddb/firelocal/internal/checksum"
	"github.com/embeddb/firelocal/internal/encoding"
	"github.com/embeddb/firelocal/internal/record"
)

// Visitor receives records recovered from a WAL segment during replay.
// Group is called once per atomic unit: a single-entry group for a bare
// record, or an n-entry group for a committed batch. A torn batch (begin
// without a matching commit) is never delivered (spec.md §4.1
// "Guarantees").
type Visitor interface {
	Group(entries []record.Record) error
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(entries []record.Record) error

// Group implements Visitor.
func (f VisitorFunc) Group(entries []record.Record) error { return f(entries) }

// Replay streams every committed group from the segment at path into
// visitor, in file order. It stops at the first frame whose checksum or
// length is invalid and reports the byte offset after the last good frame
// so the caller can truncate the tail (spec.md §4.1 "Failure semantics":
// "Torn tail on replay: truncate").
func Replay(path string, visitor Visitor) (goodLength int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, apperrors.New(apperrors.KindIO, "open wal segment "+path, err)
	}
	defer f.Close()

	var (
		offset  int64
		pending []record.Record
		inBatch bool
		wantN   int
		wantSeq uint64
	)

	header := make([]byte, frameHeaderSize)
	for {
		n, rerr := io.ReadFull(f, header)
		if rerr != nil || n < frameHeaderSize {
			break // short/absent header: treat remainder as never-committed
		}

		length := encoding.DecodeFixed32(header[:lengthPrefixSize])
		wantCRC := encoding.DecodeFixed32(header[lengthPrefixSize:frameHeaderSize])
		if length == 0 || length > maxFramePayload {
			break
		}

		body := make([]byte, length)
		if n, rerr := io.ReadFull(f, body); rerr != nil || uint32(n) != length {
			break
		}

		if checksum.MaskedValue(body) != wantCRC {
			break // corrupt frame: stop, do not advance goodLength past here
		}

		t := frameType(body[0])
		payload := body[1:]

		switch t {
		case frameRecord:
			r, _, derr := record.Decode(payload)
			if derr != nil {
				goto done
			}
			if inBatch {
				pending = append(pending, r)
			} else {
				if err := visitor.Group([]record.Record{r}); err != nil {
					return 0, err
				}
			}

		case frameBatchBegin:
			count, rest, gerr := encoding.GetVarint64(payload)
			if gerr != nil {
				goto done
			}
			start, _, gerr := encoding.GetVarint64(rest)
			if gerr != nil {
				goto done
			}
			inBatch = true
			wantN = int(count)
			wantSeq = start
			pending = pending[:0]

		case frameBatchCommit:
			commitSeq, _, gerr := encoding.GetVarint64(payload)
			if gerr != nil {
				goto done
			}
			if !inBatch || len(pending) != wantN || commitSeq != wantSeq+uint64(wantN)-1 {
				// Malformed or mismatched commit: treat as corruption, stop.
				goto done
			}
			if err := visitor.Group(pending); err != nil {
				return 0, err
			}
			inBatch = false
			pending = nil

		default:
			goto done
		}

		offset += frameHeaderSize + int64(length)
	}

done:
	// If a batch was opened but never committed, its entries were already
	// excluded from delivery above; offset still marks the last fully
	// valid frame boundary, which is what we report as recoverable length.
	return offset, nil
}

// AppendOffset reports the size of the file at path, or 0 if it doesn't
// exist.
func AppendOffset(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

// Truncate shrinks the segment at path to length bytes, discarding any torn
// tail left by a previous crash.
func Truncate(path string, length int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return apperrors.New(apperrors.KindIO, "truncate wal segment "+path, err)
	}
	defer f.Close()
	if err := f.Truncate(length); err != nil {
		return apperrors.New(apperrors.KindIO, "truncate wal segment "+path, err)
	}
	return nil
}
