// Package fieldvalue implements the structural field-value operators that
// rewrite a put's payload at write time: serverTimestamp, increment,
// arrayUnion, arrayRemove, and fieldDelete (spec.md §4.6).
//
// There is no teacher file for this concern — RocksDB's value is opaque to
// the store, whereas this spec's documents are structured JSON. The JSON
// layer is grounded on other_examples/dxcluster's use of
// github.com/json-iterator/go, a drop-in encoding/json-compatible decoder
// that is noticeably cheaper on the many small per-document parses this
// rewriter does on every write.
package fieldvalue

import (
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sentinelKey is the JSON field name marking a structural operator,
// spec.md §4.6: `{ "_firelocal_field_value": <op>, "value"?: <arg> }`.
const sentinelKey = "_firelocal_field_value"

// Op names a structural operator.
type Op string

const (
	OpServerTimestamp Op = "serverTimestamp"
	OpIncrement       Op = "increment"
	OpArrayUnion      Op = "arrayUnion"
	OpArrayRemove     Op = "arrayRemove"
	OpFieldDelete     Op = "fieldDelete"
)

// sentinel is the decoded shape of a `{_firelocal_field_value: ..., value:
// ...}` object.
type sentinel struct {
	Op    Op                 `json:"_firelocal_field_value"`
	Value jsoniter.RawMessage `json:"value,omitempty"`
}

func marshalSentinel(op Op, value interface{}) jsoniter.RawMessage {
	s := sentinel{Op: op}
	if value != nil {
		s.Value, _ = json.Marshal(value)
	}
	raw, _ := json.Marshal(s)
	return raw
}

// ServerTimestamp returns the field value to embed at a document's
// top-level field to request the current commit-time wall clock (spec.md
// §4.6). Callers build put payloads with encoding/json by setting a field
// to this value, e.g. map[string]any{"updatedAt": fieldvalue.ServerTimestamp()}.
func ServerTimestamp() jsoniter.RawMessage {
	return marshalSentinel(OpServerTimestamp, nil)
}

// Increment returns the field value requesting the existing numeric field
// (default 0) be incremented by n at commit time.
func Increment(n float64) jsoniter.RawMessage {
	return marshalSentinel(OpIncrement, n)
}

// ArrayUnion returns the field value requesting xs be appended to the
// existing array, skipping elements already present.
func ArrayUnion(xs ...interface{}) jsoniter.RawMessage {
	return marshalSentinel(OpArrayUnion, xs)
}

// ArrayRemove returns the field value requesting every element equal to
// any of xs be removed from the existing array.
func ArrayRemove(xs ...interface{}) jsoniter.RawMessage {
	return marshalSentinel(OpArrayRemove, xs)
}

// FieldDelete returns the field value requesting the field be dropped from
// the stored document entirely.
func FieldDelete() jsoniter.RawMessage {
	return marshalSentinel(OpFieldDelete, nil)
}

// parseSentinel reports whether raw decodes as a sentinel object, and if
// so returns it.
func parseSentinel(raw jsoniter.RawMessage) (sentinel, bool) {
	var probe map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return sentinel{}, false
	}
	if _, ok := probe[sentinelKey]; !ok {
		return sentinel{}, false
	}
	var s sentinel
	if err := json.Unmarshal(raw, &s); err != nil {
		return sentinel{}, false
	}
	return s, true
}

// Needed reports whether payload is a JSON object with at least one
// top-level sentinel field, the trigger condition spec.md §4.6 describes:
// "Triggered only when the payload parses as a JSON object and at least
// one top-level field's value is a sentinel object".
func Needed(payload []byte) bool {
	var obj map[string]jsoniter.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return false
	}
	for _, v := range obj {
		if _, ok := parseSentinel(v); ok {
			return true
		}
	}
	return false
}

// resolveField computes the stored value for one top-level field given its
// incoming raw JSON (sentinel or plain) and the field's current value, if
// any. deleted reports a fieldDelete sentinel, in which case value is nil
// and the caller must remove the field rather than set it.
func resolveField(existingRaw jsoniter.RawMessage, hasExisting bool, incomingRaw jsoniter.RawMessage, now int64) (value jsoniter.RawMessage, deleted bool, err error) {
	s, isSentinel := parseSentinel(incomingRaw)
	if !isSentinel {
		return incomingRaw, false, nil
	}

	switch s.Op {
	case OpFieldDelete:
		return nil, true, nil

	case OpServerTimestamp:
		encoded, err := json.Marshal(now)
		return encoded, false, err

	case OpIncrement:
		var delta float64
		if err := json.Unmarshal(s.Value, &delta); err != nil {
			return nil, false, fmt.Errorf("fieldvalue: increment: %w", err)
		}
		base := 0.0
		if hasExisting {
			var num float64
			if err := json.Unmarshal(existingRaw, &num); err == nil {
				base = num
			}
		}
		encoded, err := json.Marshal(base + delta)
		return encoded, false, err

	case OpArrayUnion:
		var additions []jsoniter.RawMessage
		if err := json.Unmarshal(s.Value, &additions); err != nil {
			return nil, false, fmt.Errorf("fieldvalue: arrayUnion: %w", err)
		}
		base := asArray(existingRaw, hasExisting)
		for _, a := range additions {
			if !containsElement(base, a) {
				base = append(base, a)
			}
		}
		encoded, err := json.Marshal(base)
		return encoded, false, err

	case OpArrayRemove:
		var removals []jsoniter.RawMessage
		if err := json.Unmarshal(s.Value, &removals); err != nil {
			return nil, false, fmt.Errorf("fieldvalue: arrayRemove: %w", err)
		}
		base := asArray(existingRaw, hasExisting)
		kept := make([]jsoniter.RawMessage, 0, len(base))
		for _, elem := range base {
			if !containsElement(removals, elem) {
				kept = append(kept, elem)
			}
		}
		encoded, err := json.Marshal(kept)
		return encoded, false, err

	default:
		return nil, false, fmt.Errorf("fieldvalue: unknown operator %q", s.Op)
	}
}

// Rewrite materializes every top-level structural operator in payload
// against existing (the pre-image the engine's own Get returned; a missing
// document is passed as nil and treated as an empty object, per spec.md
// §4.6 "treating a missing document as an empty object"), returning the
// resulting JSON object. This is the Set path: the output is payload's own
// field set with sentinels resolved, every other field of payload passed
// through unchanged. now is the wall-clock epoch milliseconds captured for
// any serverTimestamp sentinel encountered.
func Rewrite(existing []byte, payload []byte, now int64) ([]byte, error) {
	var incoming map[string]jsoniter.RawMessage
	if err := json.Unmarshal(payload, &incoming); err != nil {
		return nil, fmt.Errorf("fieldvalue: payload is not a JSON object: %w", err)
	}

	pre, _ := asObject(existing)

	out := make(map[string]jsoniter.RawMessage, len(incoming))
	for field, raw := range incoming {
		existingRaw, hasExisting := pre[field]
		value, deleted, err := resolveField(existingRaw, hasExisting, raw, now)
		if err != nil {
			return nil, err
		}
		if deleted {
			continue
		}
		out[field] = value
	}

	return json.Marshal(out)
}

// MergePartial implements the Update batch entry's "top-level field union
// with new values overwriting existing" semantics (spec.md §9 Open
// Question resolution): every field named in partial is resolved against
// existing (sentinels included) and overlaid onto existing; fields partial
// does not name are left untouched; a fieldDelete sentinel removes the
// field from the merged result rather than leaving it at its old value.
func MergePartial(existing []byte, partial []byte, now int64) ([]byte, error) {
	var incoming map[string]jsoniter.RawMessage
	if err := json.Unmarshal(partial, &incoming); err != nil {
		return nil, fmt.Errorf("fieldvalue: update payload is not a JSON object: %w", err)
	}

	merged, _ := asObject(existing)
	if merged == nil {
		merged = make(map[string]jsoniter.RawMessage)
	}

	for field, raw := range incoming {
		existingRaw, hasExisting := merged[field]
		value, deleted, err := resolveField(existingRaw, hasExisting, raw, now)
		if err != nil {
			return nil, err
		}
		if deleted {
			delete(merged, field)
			continue
		}
		merged[field] = value
	}

	return json.Marshal(merged)
}

// asObject decodes data as a JSON object, treating nil/empty/non-object
// input as an absent document (spec.md §4.6 "treating a missing document
// as an empty object").
func asObject(data []byte) (map[string]jsoniter.RawMessage, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var obj map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// asArray returns raw's value as a JSON array, or an empty array if absent
// or not itself an array (spec.md §4.6: "Non-array existing value is
// replaced with xs" / "becomes empty array").
func asArray(raw jsoniter.RawMessage, has bool) []jsoniter.RawMessage {
	if !has {
		return nil
	}
	var arr []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil
	}
	return arr
}

// containsElement reports whether any element of set is structurally equal
// (by canonical JSON form) to target.
func containsElement(set []jsoniter.RawMessage, target jsoniter.RawMessage) bool {
	var targetVal interface{}
	if err := json.Unmarshal(target, &targetVal); err != nil {
		return false
	}
	for _, raw := range set {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if reflect.DeepEqual(v, targetVal) {
			return true
		}
	}
	return false
}
