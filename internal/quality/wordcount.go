// Package quality implements the content-quality gates the pipeline runs
// during finalization: word-count enforcement, readability scoring, an
// AI-phrase heuristic, and duplicate-video repair.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"seoforge/internal/core"
	"seoforge/internal/logger"
)

// Word-count floors per content kind; articles above MaxWords only log a
// warning.
const (
	MinWordsStandard = 2200
	MinWordsPillar   = 3500
	MaxWords         = 6000
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// ShortContentError is the recoverable condition raised when generated
// content lands under the word-count floor. It carries the deficient
// content so the caller can preserve it for manual review instead of
// discarding the work.
type ShortContentError struct {
	Content   string
	WordCount int
	Minimum   int
}

func (e *ShortContentError) Error() string {
	return fmt.Sprintf("content is %d words, below the %d-word minimum", e.WordCount, e.Minimum)
}

// MinWordsFor returns the word-count floor for a content kind. The
// link-optimizer kind rewrites existing pages and has no floor of its own.
func MinWordsFor(kind core.ContentKind) int {
	switch kind {
	case core.KindPillar:
		return MinWordsPillar
	case core.KindLinkOptimizer:
		return 0
	default:
		return MinWordsStandard
	}
}

// StripTags removes HTML markup, leaving whitespace-separated text.
func StripTags(html string) string {
	return strings.TrimSpace(tagRegex.ReplaceAllString(html, " "))
}

// CountWords counts whitespace-delimited tokens in the tag-stripped body.
func CountWords(html string) int {
	return len(strings.Fields(StripTags(html)))
}

// EnforceWordCount fails with a ShortContentError when the body is under
// minimum. Exceeding MaxWords is logged, never fatal.
func EnforceWordCount(html string, minimum int) error {
	count := CountWords(html)
	if minimum > 0 && count < minimum {
		return &ShortContentError{Content: html, WordCount: count, Minimum: minimum}
	}
	if count > MaxWords {
		logger.Warn("content exceeds word-count ceiling", map[string]any{
			"words": count,
			"max":   MaxWords,
		})
	}
	return nil
}
