package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the structured session record. It lives as an in-memory
// aggregate owned by exactly one ValidationSession and is serialized to disk
// only at checkpoints, which removes the read-modify-write window a shared
// on-disk record would have.
type Document map[string]any

// MergeAt deep-merges a partial record into the document at a dotted path,
// creating intermediate objects as needed. Scalar fields overwrite, nested
// objects merge recursively, so applying the same partial twice yields the
// same document as applying it once.
func (d Document) MergeAt(path string, partial map[string]any) {
	target := map[string]any(d)
	if path != "" {
		for _, key := range strings.Split(path, ".") {
			child, ok := target[key].(map[string]any)
			if !ok {
				child = make(map[string]any)
				target[key] = child
			}
			target = child
		}
	}
	deepMerge(target, partial)
}

// Clone returns a deep copy so readers never alias the live aggregate.
func (d Document) Clone() Document {
	cp := make(map[string]any, len(d))
	deepMerge(cp, d)
	return cp
}

// Section returns the object at a dotted path, or nil if absent.
func (d Document) Section(path string) map[string]any {
	target := map[string]any(d)
	for _, key := range strings.Split(path, ".") {
		child, ok := target[key].(map[string]any)
		if !ok {
			return nil
		}
		target = child
	}
	return target
}

// Partial converts a typed record into the map form MergeAt consumes.
func Partial(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding partial record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding partial record: %w", err)
	}
	return m, nil
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			dv, ok := dst[k].(map[string]any)
			if !ok {
				dv = make(map[string]any, len(sv))
				dst[k] = dv
			}
			deepMerge(dv, sv)
			continue
		}
		if sv, ok := v.([]any); ok {
			out := make([]any, len(sv))
			for i, item := range sv {
				if m, ok := item.(map[string]any); ok {
					cp := make(map[string]any, len(m))
					deepMerge(cp, m)
					out[i] = cp
					continue
				}
				out[i] = item
			}
			dst[k] = out
			continue
		}
		dst[k] = v
	}
}
