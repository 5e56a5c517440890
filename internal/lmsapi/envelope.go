package lmsapi

import (
	"bytes"
	"encoding/json"
)

// EnvelopeKind classifies the outer JSON shape of a list-returning response.
// The API serializes collections inconsistently: sometimes a bare array,
// sometimes an object with the actual array under "$values" (the
// reference-preserving serializer convention), and sometimes a lone object
// standing in for a one-element list.
type EnvelopeKind int

const (
	EnvelopeUnknown EnvelopeKind = iota
	EnvelopeArray
	EnvelopeWrapped
	EnvelopeSingle
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeArray:
		return "array"
	case EnvelopeWrapped:
		return "wrapped"
	case EnvelopeSingle:
		return "single"
	default:
		return "unknown"
	}
}

type wrappedList struct {
	Values json.RawMessage `json:"$values"`
}

// decodeList normalizes any of the envelope shapes to a slice, possibly
// empty. Shapes that fit none of them decode to an empty slice rather than
// an error; a branch with a malformed body contributes nothing.
func decodeList[T any](data []byte) ([]T, EnvelopeKind) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, EnvelopeUnknown
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, EnvelopeUnknown
		}
		return items, EnvelopeArray
	case '{':
		var wrapped wrappedList
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, EnvelopeUnknown
		}
		if len(wrapped.Values) > 0 {
			var items []T
			if err := json.Unmarshal(wrapped.Values, &items); err != nil {
				return nil, EnvelopeUnknown
			}
			return items, EnvelopeWrapped
		}
		var single T
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, EnvelopeUnknown
		}
		return []T{single}, EnvelopeSingle
	default:
		return nil, EnvelopeUnknown
	}
}
