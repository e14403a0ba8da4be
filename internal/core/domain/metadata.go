package domain

import (
	"bytes"
	"encoding/json"
)

// Metadata is a model's free-form key/value bag. Values are plain JSON values
// (string, json.Number, bool, nil, []any, map[string]any). Key order carries
// no meaning.
type Metadata map[string]any

// NormalizeMetadata validates raw input and converts every value to its
// canonical JSON form. It fails with ErrInvalidMetadata on empty keys or
// values that cannot be encoded as JSON.
func NormalizeMetadata(raw map[string]any) (Metadata, error) {
	out := make(Metadata, len(raw))
	for k, v := range raw {
		if k == "" {
			return nil, ErrInvalidMetadata
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, ErrInvalidMetadata
		}
		var canonical any
		if err := decodeJSON(b, &canonical); err != nil {
			return nil, ErrInvalidMetadata
		}
		out[k] = canonical
	}
	return out, nil
}

// DecodeMetadata parses a stored JSON object.
func DecodeMetadata(b []byte) (Metadata, error) {
	m := Metadata{}
	if len(b) == 0 {
		return m, nil
	}
	if err := decodeJSON(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = Metadata{}
	}
	return m, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// Merge returns m with every key of patch set to the patch value. Keys that
// are not in patch keep their value. Neither input is modified.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m.Clone()
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Without returns m minus the listed keys. Absent keys are ignored.
func (m Metadata) Without(keys []string) Metadata {
	out := m.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Patch removes keys first and then merges add, so a key named in both ends
// up with the value from add.
func (m Metadata) Patch(add Metadata, remove []string) Metadata {
	return m.Without(remove).Merge(add)
}

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = cloneValue(e)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	default:
		return v
	}
}
