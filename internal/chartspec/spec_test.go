package chartspec

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	doc, err := Decode(json.RawMessage(`{"mark":"bar","title":"Sales"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc["mark"] != "bar" {
		t.Errorf("doc = %v", doc)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null"), json.RawMessage("{}")} {
		if _, err := Decode(raw); !errors.Is(err, ErrEmptySchema) {
			t.Errorf("Decode(%q) = %v, want ErrEmptySchema", raw, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode(json.RawMessage(`{"mark":`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"plain string", Document{"title": "Sales by Region"}, "Sales by Region"},
		{"object text string", Document{"title": map[string]any{"text": "Monthly Revenue"}}, "Monthly Revenue"},
		{"object text list", Document{"title": map[string]any{"text": []any{"Sales", "by", "Region"}}}, "Sales by Region"},
		{"empty string falls back", Document{"title": "   "}, "fallback"},
		{"missing title", Document{"mark": "bar"}, "fallback"},
		{"nil document", nil, "fallback"},
		{"number title falls back", Document{"title": 42.0}, "fallback"},
		{"list with non-string falls back", Document{"title": map[string]any{"text": []any{"Sales", 3.0}}}, "fallback"},
		{"object without text", Document{"title": map[string]any{"fontSize": 14.0}}, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.doc, "fallback"); got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloneIndependence(t *testing.T) {
	original := Document{
		"mark": "bar",
		"encoding": map[string]any{
			"x": map[string]any{"field": "region"},
		},
		"data": map[string]any{"values": []any{map[string]any{"region": "east"}}},
	}

	clone := original.Clone()
	clone["mark"] = "line"
	clone["encoding"].(map[string]any)["x"].(map[string]any)["field"] = "month"

	if original["mark"] != "bar" {
		t.Error("top-level mutation leaked into original")
	}
	if original["encoding"].(map[string]any)["x"].(map[string]any)["field"] != "region" {
		t.Error("nested mutation leaked into original")
	}
}

func TestCloneNil(t *testing.T) {
	var d Document
	if d.Clone() != nil {
		t.Error("nil document must clone to nil")
	}
}

func TestIsRenderable(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{"bar mark", Document{"mark": "bar", "encoding": map[string]any{}}, true},
		{"mark object", Document{"mark": map[string]any{"type": "line"}}, true},
		{"layered", Document{"layer": []any{}}, true},
		{"vega schema tag", Document{"$schema": "https://vega.github.io/schema/vega-lite/v5.json", "mark": "area"}, true},
		{"foreign schema tag", Document{"$schema": "https://example.com/other.json", "mark": "bar"}, false},
		{"non-string schema tag", Document{"$schema": 5.0, "mark": "bar"}, false},
		{"no mark no composition", Document{"title": "x"}, false},
		{"mark wrong type", Document{"mark": 7.0}, false},
		{"encoding wrong type", Document{"mark": "bar", "encoding": "nope"}, false},
		{"empty", Document{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRenderable(tt.doc); got != tt.want {
				t.Errorf("IsRenderable = %v, want %v", got, tt.want)
			}
		})
	}
}
