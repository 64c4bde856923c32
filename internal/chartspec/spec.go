// Package chartspec models the opaque chart-specification documents
// produced by the chart job.
//
// A document is loosely typed: the service emits Vega-Lite style JSON and
// the client never interprets it beyond two concerns, extracting a display
// title and deciding whether the document looks renderable at all. Both are
// pure functions so they can be exercised against malformed inputs without
// a rendering surface.
package chartspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySchema indicates the chart job produced no specification document.
var ErrEmptySchema = errors.New("empty chart schema")

// Document is an opaque chart-specification document. Structure is only
// validated at render time, never on persistence.
type Document map[string]any

// Decode parses a raw chart schema into a Document.
func Decode(raw json.RawMessage) (Document, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrEmptySchema
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding chart schema: %w", err)
	}
	if len(doc) == 0 {
		return nil, ErrEmptySchema
	}
	return doc, nil
}

// Clone returns a deep copy of the document. Copies are fully independent;
// mutating one never shows through the other.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// Title derives a display title from the document's title field.
//
// Accepted shapes: a plain string, or an object whose "text" field is a
// string or a list of strings (joined with single spaces). Anything else
// falls back to the given fallback.
func Title(doc Document, fallback string) string {
	if doc == nil {
		return fallback
	}

	switch title := doc["title"].(type) {
	case string:
		if t := strings.TrimSpace(title); t != "" {
			return t
		}
	case map[string]any:
		switch text := title["text"].(type) {
		case string:
			if t := strings.TrimSpace(text); t != "" {
				return t
			}
		case []any:
			parts := make([]string, 0, len(text))
			for _, item := range text {
				s, ok := item.(string)
				if !ok {
					return fallback
				}
				parts = append(parts, s)
			}
			if t := strings.TrimSpace(strings.Join(parts, " ")); t != "" {
				return t
			}
		}
	}

	return fallback
}

// compositionKeys are the Vega-Lite composition operators that can replace
// a top-level mark.
var compositionKeys = []string{"layer", "hconcat", "vconcat", "concat", "facet", "repeat", "spec"}

// IsRenderable reports whether the document plausibly describes a chart.
//
// The check is a schema-tag test plus structural heuristics: a $schema tag,
// when present, must reference Vega/Vega-Lite, and the document must carry
// either a mark or one of the composition operators. A mark with a
// non-object encoding is rejected.
func IsRenderable(doc Document) bool {
	if len(doc) == 0 {
		return false
	}

	if schema, ok := doc["$schema"]; ok {
		tag, isString := schema.(string)
		if !isString || !strings.Contains(strings.ToLower(tag), "vega") {
			return false
		}
	}

	if encoding, ok := doc["encoding"]; ok {
		if _, isMap := encoding.(map[string]any); !isMap {
			return false
		}
	}

	switch doc["mark"].(type) {
	case string, map[string]any:
		return true
	}

	for _, key := range compositionKeys {
		if _, ok := doc[key]; ok {
			return true
		}
	}
	return false
}
