package store

import (
	"strconv"

	"github.com/embeddb/firelocal/internal/apperrors"
)

type batchOpKind int

const (
	opSet batchOpKind = iota
	opUpdate
	opDelete
)

type batchOp struct {
	kind    batchOpKind
	path    string
	payload []byte
}

// Batch is an ordered list of document mutations committed atomically
// (spec.md §4.5). Duplicate paths are allowed — the later operation wins,
// but every entry is still journaled. A Batch is built with Set/Update/
// Delete and submitted with Engine.CommitBatch; it is not safe for
// concurrent use while being built.
type Batch struct {
	ops []batchOp
}

// NewBatch returns an empty Batch ready for Set/Update/Delete calls
// (spec.md §6 "batch() → Batch").
func (e *Engine) NewBatch() *Batch {
	return &Batch{}
}

// Set stages a full document replace at path (spec.md §4.5 "Set(path,
// value)"). value may itself carry field-value sentinels, resolved
// against the document's pre-batch state at commit time (spec.md §4.6).
func (b *Batch) Set(path string, value []byte) *Batch {
	b.ops = append(b.ops, batchOp{kind: opSet, path: path, payload: value})
	return b
}

// Update stages a partial merge at path: every top-level field named in
// partial is resolved (sentinels included) and overlaid onto the
// document's existing fields; fields not mentioned in partial are left
// untouched (spec.md §4.5 "Update(path, partial)", §9 Open Question
// resolution).
func (b *Batch) Update(path string, partial []byte) *Batch {
	b.ops = append(b.ops, batchOp{kind: opUpdate, path: path, payload: partial})
	return b
}

// Delete stages a tombstone at path (spec.md §4.5 "Delete(path)").
func (b *Batch) Delete(path string) *Batch {
	b.ops = append(b.ops, batchOp{kind: opDelete, path: path})
	return b
}

// Len reports the number of staged operations.
func (b *Batch) Len() int { return len(b.ops) }

func (b *Batch) validate(opts Options) error {
	if len(b.ops) == 0 {
		return apperrors.New(apperrors.KindInvalidBatch, "empty batch", nil)
	}
	for i, op := range b.ops {
		if err := validatePath(op.path, opts); err != nil {
			return err
		}
		if op.kind != opDelete {
			if err := validatePayloadSize(op.payload, opts); err != nil {
				return apperrors.New(apperrors.KindPayloadTooLarge,
					"batch entry "+strconv.Itoa(i)+" for "+op.path, err)
			}
		}
	}
	return nil
}
