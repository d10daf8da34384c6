// Package textrepair recovers structured data from noisy model output.
// Completion models frequently wrap JSON in code fences, prepend
// conversational prose, leave trailing commas, or truncate mid-structure;
// these helpers are the last line of defense before a parse error is
// surfaced to the pipeline.
package textrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceRegex         = regexp.MustCompile("(?s)```(?:json|html)?\\s*(.*?)\\s*```")
	openFenceRegex     = regexp.MustCompile("```(?:json|html)?\\s*")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON recovers a valid JSON value from text that is "almost JSON".
// It tries a direct parse first, then strips fences and surrounding prose,
// repairs trailing commas, and balances truncated brackets. It returns a
// string guaranteed to parse, or an error once every strategy fails.
func ExtractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("empty response, no JSON to extract")
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	candidate := stripFences(trimmed)
	candidate = trailingCommaRegex.ReplaceAllString(candidate, "$1")

	start := strings.IndexAny(candidate, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON object or array found in response")
	}
	candidate = balanceBrackets(candidate[start:])

	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	// One more repair pass: balancing can expose trailing commas that the
	// first pass could not see (e.g. a comma right before a synthesized
	// closing bracket).
	candidate = trailingCommaRegex.ReplaceAllString(candidate, "$1")
	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	return "", fmt.Errorf("response could not be repaired into valid JSON")
}

// stripFences removes Markdown code fences and any conversational prose
// before the fenced block.
func stripFences(text string) string {
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// An unterminated fence (truncated response) still marks where the
	// payload starts.
	if loc := openFenceRegex.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}
	return text
}

// balanceBrackets scans from the first bracket tracking string-literal
// state and nesting depth. It returns the balanced prefix, synthesizing
// missing closing brackets when the input was truncated.
func balanceBrackets(text string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return text[:i+1]
			}
		}
	}

	// Truncated: close an unterminated string first, then unwind the
	// bracket stack in reverse.
	repaired := strings.TrimRight(text, " \t\n\r,")
	if inString {
		repaired += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		repaired += string(stack[i])
	}
	return repaired
}
