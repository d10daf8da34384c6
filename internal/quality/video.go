package quality

import (
	"regexp"
	"strings"

	"seoforge/internal/core"
)

// DefaultMaxVideos is how many unique videos an article embeds.
const DefaultMaxVideos = 2

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtube\.com/watch\?(?:[^"&\s]*&)*v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
}

var embedSrcRegex = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{6,})`)

// ExtractVideoID pulls the canonical video identifier out of any of the
// URL shapes a search result may carry (embed, watch, short-link).
func ExtractVideoID(url string) string {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// SelectUniqueVideos discards same-identifier candidates before
// embedding, keeping only the first max unique ones. Candidates whose ID
// cannot be extracted are skipped.
func SelectUniqueVideos(candidates []core.VideoResult, max int) []core.VideoResult {
	if max <= 0 {
		max = DefaultMaxVideos
	}
	seen := make(map[string]bool)
	var out []core.VideoResult
	for _, candidate := range candidates {
		id := candidate.ID
		if id == "" {
			id = ExtractVideoID(candidate.URL)
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		candidate.ID = id
		out = append(out, candidate)
		if len(out) == max {
			break
		}
	}
	return out
}

// RepairDuplicateVideos detects the failure mode where every embedded
// iframe references the same video and swaps the second occurrence for a
// distinct alternate chosen earlier in the run. With fewer than two
// embeds, or already-distinct embeds, the content passes through
// unchanged.
func RepairDuplicateVideos(html string, alternates []core.VideoResult) string {
	matches := embedSrcRegex.FindAllStringSubmatchIndex(html, -1)
	if len(matches) < 2 {
		return html
	}

	firstID := html[matches[0][2]:matches[0][3]]
	for _, m := range matches[1:] {
		if html[m[2]:m[3]] != firstID {
			return html
		}
	}

	var replacement string
	for _, alt := range alternates {
		if alt.ID != "" && alt.ID != firstID {
			replacement = alt.ID
			break
		}
	}
	if replacement == "" {
		return html
	}

	// Replace only the second occurrence's identifier.
	second := matches[1]
	return html[:second[2]] + replacement + html[second[3]:]
}

// VideoEmbed builds the iframe markup for one selected video.
func VideoEmbed(id, title string) string {
	safeTitle := strings.ReplaceAll(title, `"`, "&quot;")
	return `<iframe src="https://www.youtube.com/embed/` + id + `" title="` + safeTitle +
		`" frameborder="0" allowfullscreen></iframe>`
}
