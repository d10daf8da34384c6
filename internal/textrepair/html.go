package textrepair

import "strings"

// preambleLimit is the longest run of text before the first tag that is
// still treated as conversational boilerplate rather than genuine leading
// prose.
const preambleLimit = 100

// SanitizeHTMLResponse strips code fences and short conversational
// preambles ("Here is your article:") from HTML returned by a completion
// model, leaving the markup itself untouched.
func SanitizeHTMLResponse(text string) string {
	out := strings.TrimSpace(text)

	if m := fenceRegex.FindStringSubmatch(out); m != nil {
		out = strings.TrimSpace(m[1])
	} else if loc := openFenceRegex.FindStringIndex(out); loc != nil && loc[0] == 0 {
		out = strings.TrimSpace(out[loc[1]:])
		out = strings.TrimSuffix(out, "```")
		out = strings.TrimSpace(out)
	}

	if idx := strings.Index(out, "<"); idx > 0 && idx < preambleLimit {
		out = strings.TrimSpace(out[idx:])
	}
	return out
}
