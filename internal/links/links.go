// Package links validates, repairs, and tops-up internal-link
// placeholders embedded in generated HTML. Placeholders have the form
//
//	[INTERNAL_LINK slug="target-page" text="anchor text"]
//
// and are resolved to real anchor tags during finalization. The passes
// must run in a fixed order (sanitize, repair, quota, resolve, sanitize);
// after the trailing sanitize no placeholder token remains in the output.
package links

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"seoforge/internal/core"
	"seoforge/internal/logger"
)

// DefaultMinLinks is the internal-link quota a finished article must meet.
const DefaultMinLinks = 8

// repairThreshold is the minimum match score before an invalid slug is
// rewritten to point at a known page.
const repairThreshold = 50

// utmQuery is appended to every resolved internal link for attribution.
const utmQuery = "utm_source=seoforge&utm_medium=internal_link"

var (
	placeholderRegex = regexp.MustCompile(`\[INTERNAL_LINK\s+slug="([^"]*)"\s+text="([^"]*)"\s*\]`)
	// malformedRegex matches any leftover token, including ones with
	// missing attributes or a truncated closing bracket. The match stops
	// at markup or a line break so a truncated token cannot swallow the
	// content that follows it.
	malformedRegex = regexp.MustCompile(`\[INTERNAL_LINK[^\]<\n]*\]?`)
)

// Placeholder is one parsed link token.
type Placeholder struct {
	Raw  string
	Slug string
	Text string
}

// Parse returns every well-formed placeholder in content.
func Parse(content string) []Placeholder {
	matches := placeholderRegex.FindAllStringSubmatch(content, -1)
	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		out = append(out, Placeholder{Raw: m[0], Slug: m[1], Text: m[2]})
	}
	return out
}

// CountValid reports how many placeholders reference a known page slug.
func CountValid(content string, pages []core.SitemapPage) int {
	known := slugSet(pages)
	count := 0
	for _, p := range Parse(content) {
		if known[p.Slug] {
			count++
		}
	}
	return count
}

// ValidateAndRepairInternalLinks fixes placeholders whose slug does not
// match any known page. The best-scoring page above the repair threshold
// takes over the slug; with no good match the placeholder is dropped and
// only its anchor text kept. Running it a second time is a no-op.
func ValidateAndRepairInternalLinks(content string, pages []core.SitemapPage) string {
	known := slugSet(pages)

	return placeholderRegex.ReplaceAllStringFunc(content, func(raw string) string {
		m := placeholderRegex.FindStringSubmatch(raw)
		slug, text := m[1], m[2]
		if known[slug] {
			return raw
		}

		best, score := bestMatch(text, pages)
		if score >= repairThreshold {
			return fmt.Sprintf(`[INTERNAL_LINK slug="%s" text="%s"]`, best.Slug, text)
		}
		return text
	})
}

// bestMatch scores every page against the anchor text and returns the
// highest scorer.
func bestMatch(anchor string, pages []core.SitemapPage) (core.SitemapPage, int) {
	var best core.SitemapPage
	bestScore := -1
	for _, page := range pages {
		score := matchScore(anchor, page.Title)
		if score > bestScore {
			best, bestScore = page, score
		}
	}
	return best, bestScore
}

// matchScore rates how well a page title fits an anchor text: exact match
// 100, anchor contained in title 60, title contained in anchor 50, plus
// an averaged word-overlap percentage.
func matchScore(anchor, title string) int {
	a := strings.ToLower(strings.TrimSpace(anchor))
	t := strings.ToLower(strings.TrimSpace(title))
	if a == "" || t == "" {
		return 0
	}

	score := 0
	switch {
	case a == t:
		score += 100
	case strings.Contains(t, a):
		score += 60
	case strings.Contains(a, t):
		score += 50
	}

	aWords := strings.Fields(a)
	tWords := strings.Fields(t)
	overlap := 0
	tSet := make(map[string]bool, len(tWords))
	for _, w := range tWords {
		tSet[w] = true
	}
	for _, w := range aWords {
		if tSet[w] {
			overlap++
		}
	}
	if overlap > 0 {
		pctAnchor := float64(overlap) / float64(len(aWords)) * 100
		pctTitle := float64(overlap) / float64(len(tWords)) * 100
		score += int((pctAnchor + pctTitle) / 2)
	}
	return score
}

// EnforceInternalLinkQuota injects new placeholders until the article
// carries at least minLinks valid internal links or candidates run out.
// Candidate pages are ranked by title quality, their title (and trimmed
// variants) searched for a literal untagged occurrence in the body text,
// and the first hit per page wrapped into a placeholder. Staying under
// quota is logged, not fatal.
func EnforceInternalLinkQuota(content string, pages []core.SitemapPage, minLinks int) string {
	if minLinks <= 0 {
		minLinks = DefaultMinLinks
	}

	valid := CountValid(content, pages)
	if valid >= minLinks {
		return content
	}

	linked := make(map[string]bool)
	for _, p := range Parse(content) {
		linked[p.Slug] = true
	}

	candidates := make([]core.SitemapPage, 0, len(pages))
	for _, page := range pages {
		if !linked[page.Slug] && strings.TrimSpace(page.Title) != "" {
			candidates = append(candidates, page)
		}
	}
	// Multi-word titles make better anchors; prefer them, longest first.
	sort.SliceStable(candidates, func(i, j int) bool {
		wi, wj := len(strings.Fields(candidates[i].Title)), len(strings.Fields(candidates[j].Title))
		qi, qj := wi > 2, wj > 2
		if qi != qj {
			return qi
		}
		return wi > wj
	})

	for _, page := range candidates {
		if valid >= minLinks {
			break
		}
		for _, phrase := range searchPhrases(page.Title) {
			// A quote in the anchor text would terminate the text
			// attribute early and leave an unparseable token.
			if strings.Contains(phrase, `"`) {
				continue
			}
			replaced, ok := wrapFirstUntagged(content, phrase, page.Slug)
			if ok {
				content = replaced
				valid++
				break
			}
		}
	}

	if valid < minLinks {
		logger.Warn("internal link quota not met", map[string]any{
			"have": valid,
			"want": minLinks,
		})
	}
	return content
}

// searchPhrases builds prioritized anchor candidates for a page: the full
// title first, then progressively trimmed variants that stay at least 10
// characters long.
func searchPhrases(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	phrases := []string{title}
	words := strings.Fields(title)
	for n := len(words) - 1; n >= 2; n-- {
		variant := strings.Join(words[:n], " ")
		if len(variant) < 10 {
			break
		}
		phrases = append(phrases, variant)
	}
	return phrases
}

// wrapFirstUntagged replaces the first occurrence of phrase that sits in
// plain body text (not inside a tag, an existing placeholder, or an
// anchor element) with a link placeholder.
func wrapFirstUntagged(content, phrase, slug string) (string, bool) {
	lower := strings.ToLower(content)
	needle := strings.ToLower(phrase)

	from := 0
	for {
		idx := strings.Index(lower[from:], needle)
		if idx < 0 {
			return content, false
		}
		idx += from
		end := idx + len(phrase)
		if !insideTag(content, idx) && !insideProtectedElement(content, idx) {
			original := content[idx:end]
			token := fmt.Sprintf(`[INTERNAL_LINK slug="%s" text="%s"]`, slug, original)
			return content[:idx] + token + content[end:], true
		}
		from = end
	}
}

// insideTag reports whether pos falls between an unclosed '<' and its '>',
// i.e. inside tag markup or an attribute value.
func insideTag(content string, pos int) bool {
	open := strings.LastIndexByte(content[:pos], '<')
	if open < 0 {
		return false
	}
	closing := strings.LastIndexByte(content[:pos], '>')
	return closing < open
}

// insideProtectedElement reports whether pos is inside an existing
// placeholder token or the text of an anchor element.
func insideProtectedElement(content string, pos int) bool {
	before := content[:pos]

	if start := strings.LastIndex(before, "[INTERNAL_LINK"); start >= 0 {
		if strings.IndexByte(content[start:pos], ']') < 0 {
			return true
		}
	}

	openAnchor := strings.LastIndex(strings.ToLower(before), "<a ")
	if openAnchor >= 0 {
		closeAnchor := strings.LastIndex(strings.ToLower(before), "</a>")
		if closeAnchor < openAnchor {
			return true
		}
	}
	return false
}

// ProcessInternalLinks replaces every placeholder whose slug resolves to
// a known page with an anchor tag carrying UTM attribution parameters.
// Unresolvable placeholders degrade to their plain anchor text.
func ProcessInternalLinks(content string, pages []core.SitemapPage) string {
	bySlug := make(map[string]core.SitemapPage, len(pages))
	for _, page := range pages {
		bySlug[page.Slug] = page
	}

	return placeholderRegex.ReplaceAllStringFunc(content, func(raw string) string {
		m := placeholderRegex.FindStringSubmatch(raw)
		slug, text := m[1], m[2]
		page, ok := bySlug[slug]
		if !ok || page.URL == "" {
			return text
		}
		sep := "?"
		if strings.Contains(page.URL, "?") {
			sep = "&"
		}
		return fmt.Sprintf(`<a href="%s%s%s">%s</a>`, page.URL, sep, utmQuery, text)
	})
}

// SanitizeBrokenPlaceholders removes placeholders missing a non-empty
// slug or text attribute, preserving the anchor text where present, and
// strips malformed tokens entirely.
func SanitizeBrokenPlaceholders(content string) string {
	content = placeholderRegex.ReplaceAllStringFunc(content, func(raw string) string {
		m := placeholderRegex.FindStringSubmatch(raw)
		slug, text := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if slug != "" && text != "" {
			return raw
		}
		return text
	})
	return malformedRegex.ReplaceAllStringFunc(content, func(raw string) string {
		if placeholderRegex.MatchString(raw) {
			return raw
		}
		return ""
	})
}

func slugSet(pages []core.SitemapPage) map[string]bool {
	set := make(map[string]bool, len(pages))
	for _, page := range pages {
		set[page.Slug] = true
	}
	return set
}
