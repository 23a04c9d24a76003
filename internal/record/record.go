// Package record defines the Record type and its on-disk serialization,
// shared verbatim by the WAL and by SST data blocks (spec.md §4.3: "Records
// use the same serialization discipline as WAL entries").
package record

import (
	"errors"

	"github.com/embeddb/firelocal/internal/encoding"
)

// Kind distinguishes a live value from a deletion tombstone.
type Kind uint8

const (
	// KindPut marks a record carrying a payload.
	KindPut Kind = 1
	// KindTombstone marks a deletion; it carries no payload.
	KindTombstone Kind = 2
)

func (k Kind) String() string {
	if k == KindTombstone {
		return "Tombstone"
	}
	return "Put"
}

// Record is the unit of durable state: spec.md §3 "{ path, sequence, kind,
// payload? }".
type Record struct {
	Path     string
	Sequence uint64
	Kind     Kind
	Payload  []byte
}

// ErrMalformed is returned when a byte slice cannot be decoded as a Record.
var ErrMalformed = errors.New("record: malformed encoding")

// Encode appends the serialized form of r to dst: varint sequence, one kind
// byte, length-prefixed path, and (Put only) a length-prefixed payload.
func Encode(dst []byte, r Record) []byte {
	dst = encoding.AppendVarint64(dst, r.Sequence)
	dst = append(dst, byte(r.Kind))
	dst = encoding.AppendLengthPrefixed(dst, []byte(r.Path))
	if r.Kind == KindPut {
		dst = encoding.AppendLengthPrefixed(dst, r.Payload)
	}
	return dst
}

// Decode parses a Record from the front of src, returning it and any
// trailing bytes. It returns ErrMalformed (never panics) on truncated or
// out-of-range input so callers can treat a torn tail as corruption rather
// than crash (spec.md §4.1 "Failure semantics").
func Decode(src []byte) (Record, []byte, error) {
	seq, rest, err := encoding.GetVarint64(src)
	if err != nil {
		return Record{}, nil, ErrMalformed
	}
	if len(rest) < 1 {
		return Record{}, nil, ErrMalformed
	}
	kind := Kind(rest[0])
	rest = rest[1:]
	if kind != KindPut && kind != KindTombstone {
		return Record{}, nil, ErrMalformed
	}

	pathBytes, rest, err := encoding.GetLengthPrefixed(rest)
	if err != nil {
		return Record{}, nil, ErrMalformed
	}

	r := Record{Path: string(pathBytes), Sequence: seq, Kind: kind}
	if kind == KindPut {
		payload, remainder, err := encoding.GetLengthPrefixed(rest)
		if err != nil {
			return Record{}, nil, ErrMalformed
		}
		r.Payload = payload
		rest = remainder
	}
	return r, rest, nil
}

// Newest returns whichever of a, b has the higher sequence number. Ties
// cannot occur for distinct durable records (spec.md §3 invariants), but if
// forced to choose, b (the later insert) wins.
func Newest(a, b Record) Record {
	if a.Sequence > b.Sequence {
		return a
	}
	return b
}
