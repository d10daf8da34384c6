package quality

import (
	"regexp"
	"strings"
)

// ReadabilityReport is the Flesch reading-ease result mapped to a verdict
// band. It is advisory only; the pipeline reports it but never blocks on
// it.
type ReadabilityReport struct {
	Score     float64 `json:"score"`
	Verdict   string  `json:"verdict"`
	Words     int     `json:"words"`
	Sentences int     `json:"sentences"`
	Syllables int     `json:"syllables"`
}

var (
	sentenceEndRegex = regexp.MustCompile(`[.!?]+`)
	nonLetterRegex   = regexp.MustCompile(`[^a-z]`)
)

// AnalyzeReadability computes the Flesch reading-ease score for the
// tag-stripped body text.
func AnalyzeReadability(html string) ReadabilityReport {
	text := StripTags(html)
	words := strings.Fields(text)
	if len(words) == 0 {
		return ReadabilityReport{Verdict: "Very Confusing"}
	}

	sentences := len(sentenceEndRegex.FindAllString(text, -1))
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += estimateSyllables(w)
	}

	score := 206.835 - 1.015*(float64(len(words))/float64(sentences)) - 84.6*(float64(syllables)/float64(len(words)))

	return ReadabilityReport{
		Score:     score,
		Verdict:   readabilityVerdict(score),
		Words:     len(words),
		Sentences: sentences,
		Syllables: syllables,
	}
}

func readabilityVerdict(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Confusing"
	}
}

// estimateSyllables counts vowel groups after stripping common silent
// suffixes. A heuristic, but consistent enough for banding.
func estimateSyllables(word string) int {
	w := nonLetterRegex.ReplaceAllString(strings.ToLower(word), "")
	if len(w) <= 3 {
		return 1
	}

	w = strings.TrimSuffix(w, "es")
	w = strings.TrimSuffix(w, "ed")
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		w = strings.TrimSuffix(w, "e")
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if count == 0 {
		count = 1
	}
	return count
}
