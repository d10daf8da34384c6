package textrepair

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractJSONDirectParse(t *testing.T) {
	input := `{"title":"Solar Panel ROI","sections":3}`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("valid JSON should pass through unchanged, got %s", got)
	}
}

func TestExtractJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "fenced with prose",
			input: "Sure! Here is the outline you asked for:\n```json\n{\"sections\": [\"intro\", \"costs\"]}\n```\nLet me know if you need changes.",
			want:  map[string]any{"sections": []any{"intro", "costs"}},
		},
		{
			name:  "bare fence",
			input: "```\n[1, 2, 3]\n```",
			want:  []any{1.0, 2.0, 3.0},
		},
		{
			name:  "leading prose no fence",
			input: "Here you go: {\"keyword\": \"solar panel ROI\"}",
			want:  map[string]any{"keyword": "solar panel ROI"},
		},
		{
			name:  "trailing comma",
			input: `{"a": 1, "b": [2, 3,],}`,
			want:  map[string]any{"a": 1.0, "b": []any{2.0, 3.0}},
		},
		{
			name:  "trailing junk after value",
			input: `{"done": true} Hope that helps!`,
			want:  map[string]any{"done": true},
		},
		{
			name:  "braces inside strings",
			input: `Note: {"html": "<div class=\"x\">{not json}</div>"}`,
			want:  map[string]any{"html": `<div class="x">{not json}</div>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("ExtractJSON failed: %v", err)
			}
			var parsed any
			if err := json.Unmarshal([]byte(got), &parsed); err != nil {
				t.Fatalf("result does not parse: %v", err)
			}
			if !reflect.DeepEqual(parsed, tt.want) {
				t.Errorf("got %v, want %v", parsed, tt.want)
			}
		})
	}
}

func TestExtractJSONTruncationRecovery(t *testing.T) {
	got, err := ExtractJSON(`{"a":1,"b":[1,2`)
	if err != nil {
		t.Fatalf("truncated object should be recoverable: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("repaired output does not parse: %v (%s)", err, got)
	}
	if parsed["a"] != 1.0 {
		t.Errorf("expected a=1, got %v", parsed["a"])
	}
	b, ok := parsed["b"].([]any)
	if !ok || len(b) != 2 {
		t.Errorf("expected b=[1,2], got %v", parsed["b"])
	}
}

func TestExtractJSONTruncatedString(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"title\": \"Solar panel")
	if err != nil {
		t.Fatalf("truncated string should be recoverable: %v", err)
	}
	if !json.Valid([]byte(got)) {
		t.Fatalf("repaired output does not parse: %s", got)
	}
}

func TestExtractJSONFailures(t *testing.T) {
	for _, input := range []string{"", "   ", "no json here at all"} {
		if _, err := ExtractJSON(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestSanitizeHTMLResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced html",
			input: "```html\n<h2>Costs</h2><p>Panels pay back in eight years.</p>\n```",
			want:  "<h2>Costs</h2><p>Panels pay back in eight years.</p>",
		},
		{
			name:  "short preamble",
			input: "Here is the section you requested: <p>Solar output varies by region.</p>",
			want:  "<p>Solar output varies by region.</p>",
		},
		{
			name:  "clean html untouched",
			input: "<h2>Intro</h2>",
			want:  "<h2>Intro</h2>",
		},
		{
			name:  "long leading prose kept",
			input: "This opening paragraph runs well past the boilerplate threshold because it is genuine article prose that happens to precede the first tag, and stripping it would lose real content. <p>Body</p>",
			want:  "This opening paragraph runs well past the boilerplate threshold because it is genuine article prose that happens to precede the first tag, and stripping it would lose real content. <p>Body</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeHTMLResponse(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
