package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serialize encodes fields as YAML without delimiters. Map keys come out sorted
// at every level, so equal maps always serialize to identical bytes. An empty
// map serializes to an empty slice.
func Serialize(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NormalizeValue(fields)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeValue converts every map[any]any found in decoded YAML to
// map[string]any, formatting keys with fmt.Sprint. The result can be encoded
// as JSON and serialized with sorted keys.
func NormalizeValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = NormalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[fmt.Sprint(k)] = NormalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = NormalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = NormalizeValue(item)
		}
		return out
	default:
		return v
	}
}
